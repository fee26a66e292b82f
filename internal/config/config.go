package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Media / export roots on the local filesystem
	MediaRoot  string
	ExportRoot string

	// Anomaly detection service
	DetectorBaseURL        string
	DetectorTimeoutSeconds int

	// Server
	Port        string
	Environment string
	LogLevel    string
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),

		MediaRoot:  getEnv("MEDIA_ROOT", "media"),
		ExportRoot: getEnv("EXPORT_ROOT", "dataset"),

		DetectorBaseURL:        getEnv("DETECTOR_BASE_URL", "http://localhost:5000"),
		DetectorTimeoutSeconds: getEnvInt("DETECTOR_TIMEOUT_SECONDS", 60),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MediaRoot == "" {
		return fmt.Errorf("MEDIA_ROOT is required")
	}
	if c.ExportRoot == "" {
		return fmt.Errorf("EXPORT_ROOT is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
