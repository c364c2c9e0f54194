// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the server settings.
type Config struct {
	Port               int
	SessionTTL         time.Duration
	SweepInterval      time.Duration
	JWTSecret          string
	GeneratedJWTSecret bool
	CORSOrigin         string
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads PORT, SESSION_TTL, SESSION_SWEEP_INTERVAL, JWT_SECRET and CORS_ORIGIN.
// A missing JWT_SECRET is replaced by a random one; tokens then do not survive a restart.
func Load() (Config, error) {
	cfg := Config{
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	if cfg.SessionTTL, err = duration("SESSION_TTL", "24h"); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = duration("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		cfg.GeneratedJWTSecret = true
	}

	return cfg, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func duration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}
