// Package config loads process configuration from the environment.
//
// Values come from the OS environment, then an optional .env file in the
// working directory (which never overrides variables already set).
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// History backend names accepted by HISTORY_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is populated once at startup and never modified.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	OpenWeather OpenWeatherConfig
	History     HistoryConfig
	HTTP        HTTPConfig
}

// OpenWeatherConfig configures the weather provider client.
type OpenWeatherConfig struct {
	APIKey  string  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	BaseURL string  `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"required,url"`
	RPS     float64 `envconfig:"OPENWEATHER_RPS" default:"1" validate:"gte=0"`
	Burst   int     `envconfig:"OPENWEATHER_BURST" default:"5" validate:"gte=1"`
}

// HistoryConfig selects and configures the history backend.
type HistoryConfig struct {
	Backend       string        `envconfig:"HISTORY_BACKEND" default:"memory" validate:"oneof=memory redis postgres"`
	RedisURL      string        `envconfig:"REDIS_URL" validate:"required_if=Backend redis"`
	DatabaseURL   string        `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`
	TTL           time.Duration `envconfig:"HISTORY_TTL" default:"0s" validate:"gte=0"`
	MigrationsDir string        `envconfig:"MIGRATIONS_DIR"`
}

// HTTPConfig holds the inbound HTTP surface settings.
type HTTPConfig struct {
	// APIToken guards /api/v1 (except health) when set.
	APIToken           string `envconfig:"API_TOKEN"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60" validate:"gte=1"`
	CookieSecure       bool   `envconfig:"COOKIE_SECURE" default:"false"`
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// Level maps LogLevel to a slog.Level.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
