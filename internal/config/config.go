package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendAuto   = "auto"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all configuration for the engine.
type Config struct {
	Env string

	// Storage
	StorageBackend  string // auto, sqlite, or memory
	SQLitePath      string
	MaxHistoryItems int

	// Tax tables
	DefaultTaxYear int
	TaxTablePath   string // optional external snapshot; empty = embedded
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	maxItems, err := getEnvInt("MAX_HISTORY_ITEMS", 200)
	if err != nil {
		return nil, err
	}
	taxYear, err := getEnvInt("DEFAULT_TAX_YEAR", 2024)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		StorageBackend:  getEnv("STORAGE_BACKEND", BackendAuto),
		SQLitePath:      getEnv("SQLITE_PATH", "locumpay.db"),
		MaxHistoryItems: maxItems,
		DefaultTaxYear:  taxYear,
		TaxTablePath:    getEnv("TAX_TABLE_PATH", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendAuto, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be auto, sqlite, or memory, got %q", c.StorageBackend)
	}
	if c.MaxHistoryItems < 1 {
		return fmt.Errorf("MAX_HISTORY_ITEMS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
