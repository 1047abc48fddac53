package config

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{
		"HOST":              "0.0.0.0",
		"PORT":              "9000",
		"LOG_LEVEL":         "warn",
		"HIGHSCORE_BACKEND": "SQLite",
		"HIGHSCORE_DB":      "/tmp/scores.db",
		"MAX_HIGH_SCORES":   "5",
		"SESSION_TTL":       "30m",
		"MAX_SESSIONS":      "100",
		"COOKIE_SECURE":     "true",
		"NGROK_ENABLED":     "1",
		"NGROK_AUTHTOKEN":   "tok",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
	assert.Equal(t, BackendSQLite, cfg.HighScoreBackend)
	assert.Equal(t, "/tmp/scores.db", cfg.HighScoreDB)
	assert.Equal(t, 5, cfg.MaxHighScores)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 100, cfg.MaxSessions)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.NgrokEnabled)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"PORT": "http"}, "PORT"},
		{"port out of range", map[string]string{"PORT": "70000"}, "port must be between"},
		{"bad duration", map[string]string{"SESSION_TTL": "forever"}, "SESSION_TTL"},
		{"bad bool", map[string]string{"COOKIE_SECURE": "maybe"}, "COOKIE_SECURE"},
		{"unknown backend", map[string]string{"HIGHSCORE_BACKEND": "redis"}, "unknown high score backend"},
		{"unknown level", map[string]string{"LOG_LEVEL": "loud"}, "unknown log level"},
		{"ngrok without token", map[string]string{"NGROK_ENABLED": "true"}, "NGROK_AUTHTOKEN"},
		{"negative cap", map[string]string{"MAX_SESSIONS": "-1"}, "max sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envOf(tt.env))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDebugForcesDebugLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "error"
	cfg.Debug = true
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestNoneBackendNeedsNoPaths(t *testing.T) {
	cfg := Default()
	cfg.HighScoreBackend = BackendNone
	cfg.HighScoreFile = ""
	cfg.HighScoreDB = ""
	assert.NoError(t, cfg.Validate())
}
