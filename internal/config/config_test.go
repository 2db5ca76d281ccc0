package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: file-secret
redis:
  enabled: true
  addr: cache:6379
  cache_ttl: 30s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "@every 5m", cfg.Scheduler.RentalSweepSpec)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 42, cfg.Database.MaxOpenConns)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"8080\"\n")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\n  access_token_expiration: soon\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token expiration")
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	cfg := &Config{}
	lookup := func(key string) (string, bool) {
		if key == "DB_MAX_IDLE_CONNS" {
			return "many", true
		}
		return "", false
	}

	err := applyEnv(cfg, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_IDLE_CONNS")
}

func TestGetAllowedOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.Server.AllowedOrigins = " http://a.test , ,http://b.test"

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())
}

func TestGetPublicBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	assert.Equal(t, "http://localhost:8080", cfg.GetPublicBaseURL())

	cfg.Server.PublicBaseURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com", cfg.GetPublicBaseURL())
}
