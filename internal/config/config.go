// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string
	DatabaseSeed   bool

	RabbitMQURL string

	GeminiAPIKey string
	GeminiModel  string

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	RequestTimeout    time.Duration
	LowStockThreshold int
}

// Load reads configuration through viper. Environment variables win over
// values from the .env file, which in turn win over defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "petstore.sqlite")
	v.SetDefault("DATABASE_SEED", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "app.log")
	v.SetDefault("LOG_MAX_SIZE_MB", 1)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("LOW_STOCK_THRESHOLD", 3)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		DatabaseSeed:      v.GetBool("DATABASE_SEED"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
		LogMaxSizeMB:      v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups:     v.GetInt("LOG_MAX_BACKUPS"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver != DriverMemory && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative, got %d", c.LowStockThreshold)
	}
	return nil
}

// EventsEnabled reports whether product events should be published.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// RecommendationsEnabled reports whether a Gemini key is configured.
func (c *Config) RecommendationsEnabled() bool {
	return c.GeminiAPIKey != ""
}
