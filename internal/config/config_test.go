package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 100, cfg.Logger.MaxSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "postgres://pharma@localhost/pharma")
	t.Setenv("API_PREFIX", "v1/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://dash.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_OUTPUT", "file")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.Secret)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, []string{"http://localhost:3000", "https://dash.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "file", cfg.Logger.Output)
}

func TestLoadInvalidPortFallsBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEmptyPrefix(t *testing.T) {
	t.Setenv("API_PREFIX", "/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.APIPrefix)
}
