package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Dify.Timeout())
	assert.Equal(t, 3, cfg.Dify.MaxRetries)
	assert.Equal(t, time.Second, cfg.Dify.RetryDelay())
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL())
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripscale.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
dify:
  base_url: https://dify.example.com
  api_key: file-key
  retry_delay_ms: 500
session:
  backend: bolt
  data_dir: /var/lib/tripscale
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://dify.example.com", cfg.Dify.BaseURL)
	assert.Equal(t, "file-key", cfg.Dify.APIKey)
	assert.Equal(t, 500*time.Millisecond, cfg.Dify.RetryDelay())
	assert.Equal(t, BackendBolt, cfg.Session.Backend)
	assert.Equal(t, "/var/lib/tripscale", cfg.Session.DataDir)
	// Unset values keep their defaults.
	assert.Equal(t, 3, cfg.Dify.MaxRetries)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRIPSCALE_SERVER_PORT", "7070")
	t.Setenv("TRIPSCALE_DIFY_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Dify.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TRIPSCALE_SERVER_PORT":         "0",
		"TRIPSCALE_SESSION_BACKEND":     "redis",
		"TRIPSCALE_DIFY_MAX_RETRIES":    "0",
		"TRIPSCALE_DIFY_RETRY_DELAY_MS": "-5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("TRIPSCALE_SESSION_BACKEND", "postgres")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("TRIPSCALE_SESSION_POSTGRES_DSN", "postgres://localhost/tripscale")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Session.Backend)
}
