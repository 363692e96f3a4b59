package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/HeartGuard/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func highRisk() *models.RiskAssessment {
	return &models.RiskAssessment{
		RiskPercentage: 83.3,
		RiskLevel:      models.HighRisk,
		Diagnosis:      "Heart Disease Risk Detected",
		Votes: models.ModelVote{
			models.ModelSVM: 1,
			models.ModelKNN: 0,
		},
		Timestamp: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(highRisk())

	assert.Contains(t, msg, "Risk of Heart Disease: 83.3%")
	assert.Contains(t, msg, "Level: HIGH_RISK")
	assert.Contains(t, msg, "Diagnosis: Heart Disease Risk Detected")
	assert.Contains(t, msg, "Votes: knn=0 svm=1")
	assert.Contains(t, msg, "Time: 2026-05-01T10:00:00Z")
}

func TestTelegramSendsToChat(t *testing.T) {
	bot := &fakeBot{}
	n := newTelegram(bot, 42)

	require.NoError(t, n.NotifyHighRisk(context.Background(), highRisk()))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, FormatMessage(highRisk()), bot.sent[0].Text)
}

func TestTelegramSendError(t *testing.T) {
	n := newTelegram(&fakeBot{err: errors.New("network down")}, 42)
	assert.Error(t, n.NotifyHighRisk(context.Background(), highRisk()))
}

func TestTelegramCancelledContext(t *testing.T) {
	bot := &fakeBot{}
	n := newTelegram(bot, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.NotifyHighRisk(ctx, highRisk()), context.Canceled)
	assert.Empty(t, bot.sent)
}

func TestNewTelegramRejectsBadChatID(t *testing.T) {
	_, err := NewTelegram("token", "not-a-number")
	assert.ErrorIs(t, err, ErrInvalidChatID)
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.NotifyHighRisk(context.Background(), highRisk()))
}
