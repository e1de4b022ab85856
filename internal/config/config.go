// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	API    APIConfig
	Cache  CacheConfig
	Watch  WatchConfig
	Digest DigestConfig
	Log    LogConfig
}

type APIConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

type CacheConfig struct {
	DBPath      string `validate:"required"`
	KeyPath     string `validate:"required"`
	SlowQueryMs int    `validate:"gte=0"`
}

type WatchConfig struct {
	Interval     time.Duration `validate:"gte=1s"`
	WakeDebounce time.Duration `validate:"gt=0"`
}

type DigestConfig struct {
	ResendAPIKey string
	From         string `validate:"omitempty,email|contains=<"`
	To           string `validate:"omitempty,email"`
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// NewConfig builds a Config from the environment with sensible defaults.
// The cache files default to ~/.sproom/.
func NewConfig() *Config {
	stateDir := getEnv("SPROOM_STATE_DIR", defaultStateDir())
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("SPROOM_API_URL", "http://localhost:8080/api"),
			Timeout: getEnvDuration("SPROOM_API_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			DBPath:      getEnv("SPROOM_DB_PATH", filepath.Join(stateDir, "cache.db")),
			KeyPath:     getEnv("SPROOM_KEY_PATH", filepath.Join(stateDir, "session.key")),
			SlowQueryMs: getEnvInt("SPROOM_SLOW_QUERY_MS", 50),
		},
		Watch: WatchConfig{
			Interval:     getEnvDuration("SPROOM_WATCH_INTERVAL", 5*time.Minute),
			WakeDebounce: getEnvDuration("SPROOM_WAKE_DEBOUNCE", time.Second),
		},
		Digest: DigestConfig{
			ResendAPIKey: getEnv("SPROOM_RESEND_API_KEY", ""),
			From:         getEnv("SPROOM_DIGEST_FROM", ""),
			To:           getEnv("SPROOM_DIGEST_TO", ""),
		},
		Log: LogConfig{
			Level: getEnv("SPROOM_LOG_LEVEL", "info"),
		},
	}
}

// Validate checks the loaded configuration.
// POST: Returns nil when every field satisfies its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sproom"
	}
	return filepath.Join(home, ".sproom")
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
