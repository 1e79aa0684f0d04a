package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the clipmarket client.
type Config struct {
	APIBaseURL          string
	HTTPTimeout         time.Duration
	RequestsPerSecond   int
	PageSize            int
	VisibilityThreshold float64
	CredentialFile      string
	LogLevel            string
	StubPort            int
	StubTokenSecret     string
	StubTokenTTL        time.Duration
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides per variable.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:          getString("CLIPMARKET_API_URL", "http://localhost:1111"),
		HTTPTimeout:         getDuration("CLIPMARKET_HTTP_TIMEOUT", 10*time.Second),
		RequestsPerSecond:   getInt("CLIPMARKET_REQUEST_RATE", 10),
		PageSize:            getInt("CLIPMARKET_PAGE_SIZE", 3),
		VisibilityThreshold: getFloat("CLIPMARKET_VISIBILITY_THRESHOLD", 0.7),
		CredentialFile:      getString("CLIPMARKET_CREDENTIAL_FILE", defaultCredentialFile()),
		LogLevel:            getString("CLIPMARKET_LOG_LEVEL", "info"),
		StubPort:            getInt("CLIPMARKET_STUB_PORT", 1111),
		StubTokenSecret:     getString("CLIPMARKET_STUB_SECRET", "clipmarket-dev-secret"),
		StubTokenTTL:        getDuration("CLIPMARKET_STUB_TOKEN_TTL", 24*time.Hour),
	}

	return cfg, nil
}

func defaultCredentialFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clipmarket-session.json"
	}
	return filepath.Join(home, ".clipmarket-session.json")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
