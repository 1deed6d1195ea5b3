package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exectime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.Order.Delay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "exectime", cfg.Tracing.ServiceName)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10000, cfg.RateLimit.MaxClients)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9000"
order:
  delay: 1500ms
log:
  format: json
ratelimit:
  enabled: true
  rps: 2
  burst: 4
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Order.Delay)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.0, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "order:\n  delay: 2s\n")
	t.Setenv("EXECTIME_ORDER_DELAY", "250ms")
	t.Setenv("EXECTIME_SERVER_PORT", "7070")
	t.Setenv("EXECTIME_TRACING_ENABLED", "true")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Order.Delay)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load(viper.New(), "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative delay", func(c *Config) { c.Order.Delay = -time.Second }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"empty port", func(c *Config) { c.Server.Port = " " }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"rate limit without burst", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Burst = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	zeroDelay := *base
	zeroDelay.Order.Delay = 0
	assert.NoError(t, zeroDelay.Validate())
}
