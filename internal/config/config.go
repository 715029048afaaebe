package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vaughan-dsouza/userposts/internal/db"
)

// Config holds application configuration.
type Config struct {
	Port string `env:"PORT" envDefault:"4000"`

	DBDriver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"./app.db"`
	DBMaxOpen     int    `env:"DB_MAX_OPEN" envDefault:"25"`
	DBMaxIdle     int    `env:"DB_MAX_IDLE" envDefault:"25"`
	DBMaxLifetime int    `env:"DB_MAX_LIFETIME" envDefault:"300"` // seconds

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// Load reads an optional .env file, then the environment. It reports whether
// a .env file was found so the caller can log it.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg, err := Parse()
	return cfg, loaded, err
}

// Parse reads configuration from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Pool returns the connection pool settings.
func (c *Config) Pool() db.Pool {
	return db.Pool{
		MaxOpen:     c.DBMaxOpen,
		MaxIdle:     c.DBMaxIdle,
		MaxLifetime: time.Duration(c.DBMaxLifetime) * time.Second,
	}
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
