package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/HeartGuard/internal/api"
	"github.com/Alias1177/HeartGuard/internal/assess"
	"github.com/Alias1177/HeartGuard/internal/classifier"
	"github.com/Alias1177/HeartGuard/internal/config"
	"github.com/Alias1177/HeartGuard/internal/database"
	"github.com/Alias1177/HeartGuard/internal/logger"
	"github.com/Alias1177/HeartGuard/internal/notify"
	phttp "github.com/Alias1177/HeartGuard/internal/platform/http"
	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	log.Info().
		Str("port", cfg.Port).
		Str("models_dir", cfg.ModelsDir).
		Str("db_driver", cfg.DBDriver).
		Msg("Configuration loaded successfully")

	remote := phttp.NewClient(phttp.ClientOptions{
		Timeout:        cfg.RequestTimeout,
		RequestsPerSec: cfg.RemoteRPS,
	})
	reg, err := registry.Load(cfg.ModelsDir, registry.Options{
		Classifier: classifier.Options{HTTP: remote},
	})
	if err != nil {
		// an unreadable models directory leaves the service up with no models
		log.Error().Err(err).Msg("Failed to load models")
		reg, _ = registry.New(nil, nil, nil)
	}

	db, err := database.Open(database.Options{
		Driver:     database.Dialect(cfg.DBDriver),
		SQLitePath: cfg.DatabasePath,
		Postgres: database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()
	log.Info().Str("driver", string(db.Dialect())).Msg("Database ready")

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram notifications disabled")
		} else {
			notifier = tg
		}
	}

	service := assess.New(reg, db, notifier)
	sessions := session.NewMemoryStore(cfg.SessionTTL)

	router := api.NewRouter(api.Deps{
		Assessor: service,
		Models:   reg,
		Sessions: sessions,
		Database: db,
	}, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CookieSecure:   cfg.CookieSecure,
		SessionTTL:     sessions.TTL(),
		PredictRate:    cfg.PredictRate,
		PredictBurst:   cfg.PredictBurst,
		RequestTimeout: cfg.RequestTimeout,
		StaticDir:      cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, sessions.TTL())

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// let pending record writes and notifications finish before closing the database
	service.Wait()
	log.Info().Msg("Server gracefully stopped")
}

func sweepSessions(ctx context.Context, store *session.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug().Int("count", n).Msg("Expired sessions removed")
			}
		}
	}
}
