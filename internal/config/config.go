package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Settings persistence
	SettingsBackend string
	SettingsPath    string

	// Request limits
	MaxDocumentBytes int64

	// Scan statistics
	StatsWindow    time.Duration
	MetricsEnabled bool

	// Batch scanning
	ScanWorkers int

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("SECTIONCOUNT_API_KEY"),

		SettingsBackend: envOr("SETTINGS_BACKEND", BackendYAML),
		SettingsPath:    envOr("SETTINGS_PATH", "sectioncount.yaml"),

		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 10<<20), // 10MB

		StatsWindow:    envDuration("STATS_WINDOW", 1*time.Hour),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		ScanWorkers: envInt("SCAN_WORKERS", 4),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),
		LogFile:   os.Getenv("LOG_FILE"),
	}

	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 10 << 20
	}
	if cfg.ScanWorkers <= 0 {
		cfg.ScanWorkers = 4
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.SettingsBackend {
	case BackendYAML, BackendSQLite:
		if c.SettingsPath == "" {
			return fmt.Errorf("SETTINGS_PATH is required for the %s backend", c.SettingsBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("SETTINGS_BACKEND must be one of yaml, sqlite, memory (got %q)", c.SettingsBackend)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
