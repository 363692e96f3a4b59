package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// run from a temp dir so no .env is picked up
	chdir(t, t.TempDir())
	for _, k := range []string{"PORT", "DB_DRIVER", "SESSION_TTL", "PREDICT_RATE", "ALLOWED_ORIGINS", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "database/heart_disease.db", cfg.DatabasePath)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10.0, cfg.PredictRate)
	assert.Equal(t, 20, cfg.PredictBurst)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("COOKIE_SECURE", "yes")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "123")
	t.Setenv("PREDICT_BURST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, 20, cfg.PredictBurst, "invalid value falls back to default")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:           "5000",
			DBDriver:       "sqlite",
			DatabasePath:   "x.db",
			SessionTTL:     time.Hour,
			PredictRate:    1,
			PredictBurst:   1,
			RequestTimeout: time.Second,
			RemoteRPS:      1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"postgres needs no path", func(c *Config) { c.DBDriver = "postgres"; c.DatabasePath = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, false},
		{"sqlite without path", func(c *Config) { c.DatabasePath = "" }, false},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, false},
		{"negative rate", func(c *Config) { c.PredictRate = -1 }, false},
		{"zero burst", func(c *Config) { c.PredictBurst = 0 }, false},
		{"zero remote rps", func(c *Config) { c.RemoteRPS = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
