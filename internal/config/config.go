package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultBackendURL     = "http://localhost:5000"
	defaultBackendTimeout = 15 * time.Second
	defaultSessionTTL     = 2 * time.Hour
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port           string
	Env            string
	DBPath         string
	SessionSecret  string
	SessionTTL     time.Duration
	BackendURL     string
	BackendTimeout time.Duration
	LogLevel       string
	LogFormat      string
	LogoPath       string
	PaymentQRPath  string

	// Warnings lists settings that were missing or ignored.
	Warnings []string
}

// Load reads .env when present and then the environment. Variables already
// set in the environment take precedence over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	cfg.Port = getEnv("PORT", defaultPort)
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.DBPath = getEnv("DB_PATH", defaultDBPath)
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	cfg.SessionTTL = cfg.getEnvAsDuration("SESSION_TTL", defaultSessionTTL)
	cfg.BackendURL = getEnv("BACKEND_URL", defaultBackendURL)
	cfg.BackendTimeout = cfg.getEnvAsDuration("BACKEND_TIMEOUT", defaultBackendTimeout)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.LogFormat = os.Getenv("LOG_FORMAT")
	cfg.LogoPath = os.Getenv("LOGO_PATH")
	cfg.PaymentQRPath = os.Getenv("PAYMENT_QR_PATH")

	if cfg.SessionSecret == "" {
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET is not set")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.BackendURL == "" {
		return errors.New("BACKEND_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or whole seconds ("90").
func (c *Config) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}

	c.Warnings = append(c.Warnings, fmt.Sprintf("invalid duration for %s, using default: %s", key, defaultValue))
	return defaultValue
}
