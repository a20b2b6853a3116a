// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the trade board server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Cooldown is how long an actor must wait between write actions.
	// Set COOLDOWN_SECONDS to override; defaults to 45 seconds.
	Cooldown time.Duration

	// SweepInterval is how often the background expiry sweep runs.
	// Set SWEEP_INTERVAL to a Go duration string (e.g. "5m") to override.
	SweepInterval time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first malformed optional value.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	cooldownSecs, err := strconv.Atoi(getEnv("COOLDOWN_SECONDS", "45"))
	if err != nil || cooldownSecs < 0 {
		return Config{}, fmt.Errorf("COOLDOWN_SECONDS must be a non-negative integer")
	}
	cfg.Cooldown = time.Duration(cooldownSecs) * time.Second

	cfg.SweepInterval, err = time.ParseDuration(getEnv("SWEEP_INTERVAL", "5m"))
	if err != nil || cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL must be a positive duration")
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
