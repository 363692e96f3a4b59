// Package notify alerts an operator chat about HIGH_RISK assessments.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alias1177/HeartGuard/internal/voting"
	"github.com/Alias1177/HeartGuard/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier is told about every HIGH_RISK assessment
type Notifier interface {
	NotifyHighRisk(ctx context.Context, a *models.RiskAssessment) error
}

// Nop discards every notification
type Nop struct{}

func (Nop) NotifyHighRisk(context.Context, *models.RiskAssessment) error { return nil }

var ErrInvalidChatID = errors.New("invalid telegram chat id")

// sender is the part of *tgbotapi.BotAPI the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts one message per assessment to a fixed chat
type TelegramNotifier struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram connects to the bot API with token and targets chatID
func NewTelegram(token, chatID string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChatID, chatID)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	n := newTelegram(bot, id)
	n.logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram notifications enabled")
	return n, nil
}

func newTelegram(bot sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notify").Logger(),
	}
}

func (t *TelegramNotifier) NotifyHighRisk(ctx context.Context, a *models.RiskAssessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatMessage(a))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.Debug().Int64("chat_id", t.chatID).Msg("High risk notification sent")
	return nil
}

// FormatMessage renders the alert text. Votes are listed in canonical model
// order so the message is stable.
func FormatMessage(a *models.RiskAssessment) string {
	var b strings.Builder
	b.WriteString("⚠️ High heart disease risk assessment\n")
	b.WriteString(voting.Message(a.RiskPercentage))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Level: %s\n", a.RiskLevel)
	fmt.Fprintf(&b, "Diagnosis: %s\n", a.Diagnosis)

	if len(a.Votes) > 0 {
		b.WriteString("Votes:")
		for _, id := range models.AllModels {
			if v, ok := a.Votes[id]; ok {
				fmt.Fprintf(&b, " %s=%d", id, v)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Time: %s", models.FormatTimestamp(a.Timestamp))
	return b.String()
}
