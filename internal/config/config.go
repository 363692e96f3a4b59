package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"5000"`
	ModelsDir string `env:"MODELS_DIR" envDefault:"models"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`
	GinMode   string `env:"GIN_MODE" envDefault:"release"`

	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"database/heart_disease.db"`
	DBHost       string `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string `env:"DB_PORT" envDefault:"5432"`
	DBUser       string `env:"DB_USER" envDefault:"postgres"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME" envDefault:"heartguard"`
	DBSSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	PredictRate    float64       `env:"PREDICT_RATE" envDefault:"10"`
	PredictBurst   int           `env:"PREDICT_BURST" envDefault:"20"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RemoteRPS      int           `env:"REMOTE_RPS" envDefault:"5"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.Port = getEnvWithDefault("PORT", "5000")
	cfg.ModelsDir = getEnvWithDefault("MODELS_DIR", "models")
	cfg.StaticDir = getEnvWithDefault("STATIC_DIR", "static")
	cfg.GinMode = getEnvWithDefault("GIN_MODE", "release")

	cfg.DBDriver = strings.ToLower(getEnvWithDefault("DB_DRIVER", "sqlite"))
	cfg.DatabasePath = getEnvWithDefault("DATABASE_PATH", "database/heart_disease.db")
	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "heartguard")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.SessionTTL = getEnvDurationWithDefault("SESSION_TTL", time.Hour)
	cfg.CookieSecure = getEnvBoolWithDefault("COOKIE_SECURE", false)
	cfg.AllowedOrigins = splitList(getEnvWithDefault("ALLOWED_ORIGINS", "*"))

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvWithDefault("LOG_FORMAT", "console")

	cfg.PredictRate = getEnvFloatWithDefault("PREDICT_RATE", 10)
	cfg.PredictBurst = getEnvIntWithDefault("PREDICT_BURST", 20)
	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second)
	cfg.RemoteRPS = getEnvIntWithDefault("REMOTE_RPS", 5)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalid = errors.New("invalid configuration")

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var problems []string
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.DBDriver == "sqlite" && c.DatabasePath == "" {
		problems = append(problems, "DATABASE_PATH is required for sqlite")
	}
	if c.Port == "" {
		problems = append(problems, "PORT is required")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.PredictRate <= 0 {
		problems = append(problems, "PREDICT_RATE must be positive")
	}
	if c.PredictBurst <= 0 {
		problems = append(problems, "PREDICT_BURST must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}
	if c.RemoteRPS <= 0 {
		problems = append(problems, "REMOTE_RPS must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// TelegramEnabled reports whether both bot token and chat id are set
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("90s") or plain seconds ("90")
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
