package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration values.
type Config struct {
	Secret        string        `env:"SECRET" envDefault:"dev_secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	TokenIssuer   string        `env:"TOKEN_ISSUER" envDefault:"pharmadesk"`
	TokenAudience string        `env:"TOKEN_AUDIENCE" envDefault:"pharmadesk-dashboard"`

	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	APIPrefix   string   `env:"API_PREFIX" envDefault:"/api"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"pharmadesk.db"`

	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"pharmadesk"`
	SeedMedicinesCSV string `env:"SEED_MEDICINES_CSV"`

	Logger LoggerConfig `envPrefix:"LOG_"`
}

// LoggerConfig controls the zap logger. Output is "stdout" or "file"; MaxSize is in
// megabytes and MaxAge in days.
type LoggerConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"json"`
	Output     string `env:"OUTPUT" envDefault:"stdout"`
	FilePath   string `env:"FILE_PATH" envDefault:"logs/pharmadesk.log"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"7"`
	Compress   bool   `env:"COMPRESS" envDefault:"false"`
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	cfg.APIPrefix = "/" + strings.Trim(strings.TrimSpace(cfg.APIPrefix), "/")
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = ""
	}

	return cfg, nil
}
