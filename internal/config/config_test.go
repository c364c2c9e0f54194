package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "SESSION_TTL", "SESSION_SWEEP_INTERVAL", "JWT_SECRET", "CORS_ORIGIN"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.True(t, cfg.GeneratedJWTSecret)
	assert.Len(t, cfg.JWTSecret, 64)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "10s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGIN", "https://tab.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.GeneratedJWTSecret)
	assert.Equal(t, "https://tab.example", cfg.CORSOrigin)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]struct {
		key   string
		value string
	}{
		"non-numeric port":  {"PORT", "http"},
		"port out of range": {"PORT", "70000"},
		"bad ttl":           {"SESSION_TTL", "forever"},
		"negative interval": {"SESSION_SWEEP_INTERVAL", "-1m"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
