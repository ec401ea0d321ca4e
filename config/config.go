// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port            string        `env:"PORT,default=3001"`
	Store           string        `env:"STORE,default=postgres"`
	DBURL           string        `env:"DB_URL"`
	DBDriver        string        `env:"DB_DRIVER,default=postgres"`
	RedisURL        string        `env:"REDIS_URL"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFormat       string        `env:"LOG_FORMAT,default=text"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=30"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads an optional .env file and decodes the environment into a Config.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBURL == "" {
			return errors.New("database URL (DB_URL) environment variable is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want %q or %q)", c.Store, StorePostgres, StoreMemory)
	}

	if c.DBDriver != "postgres" && c.DBDriver != "pgx" {
		return fmt.Errorf("unknown DB_DRIVER %q (want \"postgres\" or \"pgx\")", c.DBDriver)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown LOG_FORMAT %q (want \"text\" or \"json\")", c.LogFormat)
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
