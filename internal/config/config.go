// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir             string // Base directory for the database (always absolute)
	ScoringConfigPath   string // Optional YAML file with scoring overrides
	LogLevel            string
	SweepSchedule       string // Cron expression for detection sweeps
	ScoreSchedule       string // Cron expression for score refreshes
	MaintenanceSchedule string // Cron expression for database maintenance
	SweepLimit          int    // Max accounts per sweep
	DevMode             bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("BEACON_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		ScoringConfigPath:   getEnv("BEACON_SCORING_CONFIG", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SweepSchedule:       getEnv("BEACON_SWEEP_SCHEDULE", "@hourly"),
		ScoreSchedule:       getEnv("BEACON_SCORE_SCHEDULE", "@every 6h"),
		MaintenanceSchedule: getEnv("BEACON_MAINTENANCE_SCHEDULE", "@daily"),
		SweepLimit:          getEnvAsInt("BEACON_SWEEP_LIMIT", 100),
		DevMode:             getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabasePath returns the path of the engine database inside the data
// directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "beacon.db")
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.SweepLimit <= 0 {
		return fmt.Errorf("sweep limit must be positive, got %d", c.SweepLimit)
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
