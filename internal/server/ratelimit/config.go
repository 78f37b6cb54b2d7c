package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Config holds limiter configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	ExemptPaths     []string
	Rules           []Rule
}

// DefaultConfig returns the built-in limits: generation and model-backed
// endpoints are expensive, everything else rides the default.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		ExemptPaths:     []string{"/health", "/metrics"},
		Rules: []Rule{
			{Prefix: "/render/batch", Method: "POST", Limit: 10, Window: time.Minute},
			{Prefix: "/render", Method: "POST", Limit: 30, Window: time.Minute},
			{Prefix: "/scan/passport", Method: "POST", Limit: 20, Window: time.Minute},
			{Prefix: "/images/remove-background", Method: "POST", Limit: 20, Window: time.Minute},
			{Prefix: "/templates", Method: "POST", Limit: 60, Window: time.Minute},
		},
	}
}

// LoadConfig builds a Config from environment variables, falling back to the
// defaults for anything unset.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.DefaultLimit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	return cfg
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
