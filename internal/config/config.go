package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/asimoes/retrosim/internal/timeseries"
)

// Config holds application configuration
type Config struct {
	Port            int
	DevMode         bool
	LogLevel        string
	SnapshotDBPath  string
	HistoryCacheDir string
	DefaultCashUSD  float64
	DefaultBuyDate  timeseries.Date
	SnapshotRefresh bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	buyDate, err := timeseries.ParseDate(getEnv("DEFAULT_PURCHASE_DATE", "2025-07-15"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_PURCHASE_DATE: %w", err)
	}

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SnapshotDBPath:  getEnv("SNAPSHOT_DB_PATH", "./data/snapshots.db"),
		HistoryCacheDir: getEnv("HISTORY_CACHE_DIR", "./data/history"),
		DefaultCashUSD:  getEnvAsFloat("DEFAULT_CASH_USD", 10000),
		DefaultBuyDate:  buyDate,
		SnapshotRefresh: getEnvAsBool("SNAPSHOT_REFRESH", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.SnapshotDBPath == "" {
		return fmt.Errorf("SNAPSHOT_DB_PATH is required")
	}
	if c.DefaultCashUSD <= 0 {
		return fmt.Errorf("DEFAULT_CASH_USD must be positive")
	}
	if !c.DefaultBuyDate.Before(timeseries.Today()) {
		return fmt.Errorf("DEFAULT_PURCHASE_DATE must be in the past")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
