package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost:8000/api
  request_timeout: 3s
database:
  host: db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("FLORERIA_API_URL", "http://api.test/api")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("OTEL_EXPORTER_URL", "localhost:4318")

	cfg, err := Load(writeConfig(t, "api:\n  request_timeout: 5s\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://api.test/api", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  request_timeout: 0s\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tracing:\n  sample_rate: 2\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "database:\n  max_conns: 0\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
