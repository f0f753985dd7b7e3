package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "REDIS_URL", "WS_SEND_BUFFER", "RATE_LIMIT", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Equal(t, int64(512*1024), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, float64(20), cfg.Security.RateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("WS_PONG_WAIT", "15s")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, 2.5, cfg.Security.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("WS_SEND_BUFFER", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Observability.TracingEnabled)
}

func TestLoadVaultAndSafeMode(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "")
	t.Setenv("VAULT_MOUNT_PATH", "")
	t.Setenv("SAFE_MODE", "")

	cfg := Load()
	assert.False(t, cfg.Vault.Enabled)
	assert.Equal(t, "secret", cfg.Vault.MountPath)
	assert.Equal(t, "neurobridge", cfg.Vault.SecretsPath)
	assert.False(t, cfg.Server.SafeMode)

	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("VAULT_CACHE_TTL", "30s")
	t.Setenv("SAFE_MODE", "true")

	cfg = Load()
	assert.True(t, cfg.Vault.Enabled)
	assert.Equal(t, "http://vault:8200", cfg.Vault.Address)
	assert.Equal(t, 30*time.Second, cfg.Vault.CacheTTL)
	assert.True(t, cfg.Server.SafeMode)
}
