package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "/api/v1", cfg.HTTP.BasePath)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.Equal(t, 20, cfg.OrderNumber.MaxAttempts)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("HTTP_BASE_PATH", "api/v2/")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_WRITER_DSN", "file::memory:?cache=shared")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")
	t.Setenv("HTTP_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("ORDER_NUMBER_MAX_ATTEMPTS", "-3")
	t.Setenv("WORKER_CONCURRENCY", "0")
	t.Setenv("CACHE_DEFAULT_TTL", "30s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/api/v2", cfg.HTTP.BasePath)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 1, cfg.OrderNumber.MaxAttempts)
	assert.Equal(t, 1, cfg.Messaging.Workers.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Cache.DefaultTTL)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "http port", env: map[string]string{"HTTP_PORT": "0"}},
		{name: "cache driver", env: map[string]string{"CACHE_DRIVER": "memcached"}},
		{name: "messaging driver", env: map[string]string{"MESSAGING_DRIVER": "nats"}},
		{name: "database driver", env: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "empty kafka topic", env: map[string]string{"KAFKA_TOPIC": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}
