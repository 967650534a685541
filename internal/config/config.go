// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DB drivers accepted by PAYGATE_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats accepted by PAYGATE_LOG_FORMAT.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// secretKeyBytes is the decoded length of PAYGATE_SECRET_KEY (AES-256).
const secretKeyBytes = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	// SecretKey is nil when PAYGATE_SECRET_KEY is unset; account storage is
	// then disabled.
	SecretKey []byte
	LogLevel  slog.Level
	LogFormat string
}

// HasSecretKey reports whether credential payload encryption is configured.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: PAYGATE_LISTEN_ADDR (127.0.0.1:8080),
// PAYGATE_DB_DRIVER (sqlite), PAYGATE_DB_PATH (paygate.db), PAYGATE_LOG_LEVEL
// (info), PAYGATE_LOG_FORMAT (text). PAYGATE_DATABASE_URL is required for the
// postgres driver. PAYGATE_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: "127.0.0.1:8080",
		DBDriver:   DriverSQLite,
		DBPath:     "paygate.db",
		LogLevel:   slog.LevelInfo,
		LogFormat:  LogFormatText,
	}

	if v, ok := os.LookupEnv("PAYGATE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("PAYGATE_DB_DRIVER"); ok && v != "" {
		switch driver := strings.ToLower(strings.TrimSpace(v)); driver {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = driver
		default:
			return nil, fmt.Errorf("PAYGATE_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, v)
		}
	}

	if v, ok := os.LookupEnv("PAYGATE_DB_PATH"); ok {
		cfg.DBPath = v
	}

	cfg.DatabaseURL = os.Getenv("PAYGATE_DATABASE_URL")
	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PAYGATE_DATABASE_URL is required when PAYGATE_DB_DRIVER=%s", DriverPostgres)
	}

	if v := strings.TrimSpace(os.Getenv("PAYGATE_SECRET_KEY")); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("PAYGATE_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != secretKeyBytes {
			return nil, fmt.Errorf("PAYGATE_SECRET_KEY must decode to %d bytes, got %d", secretKeyBytes, len(key))
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("PAYGATE_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PAYGATE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("PAYGATE_LOG_FORMAT"); ok && v != "" {
		switch format := strings.ToLower(strings.TrimSpace(v)); format {
		case LogFormatText, LogFormatJSON:
			cfg.LogFormat = format
		default:
			return nil, fmt.Errorf("PAYGATE_LOG_FORMAT must be %q or %q, got %q", LogFormatText, LogFormatJSON, v)
		}
	}

	return cfg, nil
}

// NewLogger builds a logger writing to w in the configured format and level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
