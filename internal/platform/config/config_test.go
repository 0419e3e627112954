package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	err := cfg.applyEnv(envMap(map[string]string{
		"PORT":                "3000",
		"STORE_BACKEND":       "redis",
		"REDIS_URL":           "redis://localhost:6379/0",
		"RATE_LIMIT_MAX":      "5",
		"RATE_LIMIT_WINDOW":   "1m",
		"KAFKA_BROKERS":       "a:9092, b:9092,",
		"SEED_DEV":            "true",
		"TRUST_PROXY_HEADERS": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.SeedDev)
	assert.True(t, cfg.Server.TrustProxyHeaders)
	assert.NoError(t, cfg.Validate())
}

func TestProxyHeadersUntrustedByDefault(t *testing.T) {
	assert.False(t, Defaults().Server.TrustProxyHeaders)
}

func TestApplyEnvAddrBeatsPort(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{"PORT": "3000", "EVENTGATE_ADDR": "127.0.0.1:9000"})))
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	cfg := Defaults()
	err := cfg.applyEnv(envMap(map[string]string{"RATE_LIMIT_MAX": "lots", "TOKEN_TTL": "forever"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_MAX")
	assert.Contains(t, err.Error(), "TOKEN_TTL")
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
store:
  backend: postgres
  postgres_dsn: postgres://eg:eg@localhost:5432/eg
rate_limit:
  max: 20
  window: 30s
log:
  level: debug
`), 0o600))

	cfg := Defaults()
	require.NoError(t, cfg.loadFile(path))

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 20, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep defaults
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"redis without url", func(c *Config) { c.Store.Backend = BackendRedis }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"redis limiter without url", func(c *Config) { c.RateLimit.Backend = BackendRedis }},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"default key in production", func(c *Config) { c.Environment = "production" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
