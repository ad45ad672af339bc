// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all server settings, populated from environment variables.
type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`

	// DBDriver selects the storage backend: "sqlite" or "postgres".
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH" default:"data/tabshare.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-only-change-me"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	StreamBuffer int           `envconfig:"STREAM_BUFFER" default:"16"`
	StreamTTL    time.Duration `envconfig:"STREAM_TTL" default:"10m"`

	// SplitPolicy: "headcount" or "capacity".
	SplitPolicy string `envconfig:"SPLIT_POLICY" default:"headcount"`
	// DeclinePolicy: "wait" or "cancel".
	DeclinePolicy string `envconfig:"DECLINE_POLICY" default:"wait"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required with DB_DRIVER=postgres")
	}
	return &cfg, nil
}
