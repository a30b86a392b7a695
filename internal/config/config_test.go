package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
log_level: debug
rules_dir: /etc/cart-pricing/conditions
pack_version: v1.2
redis_addr: redis:6379
redis_ttl: 1h
metrics: false
`), 0o644))

	t.Setenv("CART_PRICING_PORT", "7070")
	t.Setenv("CART_PRICING_METRICS", "true")
	t.Setenv("CART_PRICING_CURRENCY", "EUR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "/etc/cart-pricing/conditions", cfg.RulesDir)
	assert.Equal(t, "v1.2", cfg.PackVersion)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.True(t, cfg.Metrics)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv("CART_PRICING_METRICS", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = "http"
	cfg.LogLevel = "loud"
	cfg.RulesDir = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid port "http"`)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
	assert.Contains(t, err.Error(), "rules dir must be set")
}
