package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 8 << 20

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Conversion defaults, overridable per request
	DefaultExport  string
	DefaultSpeed   float64
	MaxUploadBytes int64
}

// Load reads .env (if present) and the process environment
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() *Config {
	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		DefaultExport:  getEnv("DEFAULT_EXPORT", "single"),
		DefaultSpeed:   getEnvFloat("DEFAULT_SPEED", 1.0),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
	}
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
