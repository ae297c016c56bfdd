// Package config defines the service configuration and its defaults.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultThreshold is applied when a request carries no threshold.
	DefaultThreshold float64 `koanf:"default_threshold"`
	// WorkerCount is the number of jobs evaluated concurrently per request.
	WorkerCount int `koanf:"worker_count"`
	// SubtypeFallback derives a candidate's subtypes from barrier records
	// when none were declared.
	SubtypeFallback bool `koanf:"subtype_fallback"`
	// RequestTimeoutMS bounds one matching call, loaders included.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
}

// Database selects and tunes the SQL store.
type Database struct {
	// Driver is "pgx" for PostgreSQL or "sqlite".
	Driver       string `koanf:"driver"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	// Migrate creates the schema at startup.
	Migrate bool `koanf:"migrate"`
}

// Redis configures the optional mapping cache. An empty URL disables it.
type Redis struct {
	URL         string `koanf:"url"`
	TTLSeconds  int    `koanf:"ttl_seconds"`
	RefreshSpec string `koanf:"refresh_spec"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		DefaultThreshold: 0.5,
		WorkerCount:      1,
		SubtypeFallback:  true,
		RequestTimeoutMS: 5000,
		Database: Database{
			Driver:       "sqlite",
			DSN:          "file:pcdmatch.db?_pragma=foreign_keys(1)",
			MaxOpenConns: 10,
		},
		Redis: Redis{
			TTLSeconds:  600,
			RefreshSpec: "@every 10m",
		},
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Enabled reports whether the cache is configured.
func (r Redis) Enabled() bool { return strings.TrimSpace(r.URL) != "" }

// TTL returns TTLSeconds as a duration.
func (r Redis) TTL() time.Duration { return time.Duration(r.TTLSeconds) * time.Second }

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case math.IsNaN(c.DefaultThreshold) || c.DefaultThreshold < 0 || c.DefaultThreshold > 1:
		return fmt.Errorf("%w: default_threshold must be within [0, 1], got %v", ErrInvalidConfig, c.DefaultThreshold)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.Database.Driver != "pgx" && c.Database.Driver != "sqlite":
		return fmt.Errorf("%w: database.driver must be pgx or sqlite, got %q", ErrInvalidConfig, c.Database.Driver)
	case strings.TrimSpace(c.Database.DSN) == "":
		return fmt.Errorf("%w: database.dsn must not be empty", ErrInvalidConfig)
	}
	if c.Redis.Enabled() {
		if c.Redis.TTLSeconds < 0 {
			return fmt.Errorf("%w: redis.ttl_seconds must not be negative", ErrInvalidConfig)
		}
		if _, err := cron.ParseStandard(c.Redis.RefreshSpec); err != nil {
			return fmt.Errorf("%w: redis.refresh_spec: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
