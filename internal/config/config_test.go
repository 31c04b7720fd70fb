package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Env(t *testing.T) {
	t.Setenv("SENTIMENT_PORT", "9090")
	t.Setenv("SENTIMENT_LOG_LEVEL", "debug")
	t.Setenv("SENTIMENT_MOCK_ML", "true")
	t.Setenv("SENTIMENT_INFERENCE_TIMEOUT", "5s")
	t.Setenv("SENTIMENT_TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Inference.Mock)
	assert.Equal(t, 5*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxyList())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
host: "127.0.0.1"
port: 8888
model: MultiBert
log:
  level: warn
  format: json
inference:
  url: "http://localhost:9000/models"
  timeout: 15s
  max_length: 256
cache:
  size: 1000
security:
  trusted_proxies: "10.0.0.1, 192.168.0.0/16"
benchmark:
  redis_url: "redis://localhost:6379/0"
  history_ttl: 720h
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8888, cfg.Port)
	assert.Equal(t, "MultiBert", cfg.Model)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "http://localhost:9000/models", cfg.Inference.URL)
	assert.Equal(t, 15*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 256, cfg.Inference.MaxLength)
	assert.Equal(t, 1000, cfg.Cache.Size)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxyList())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Benchmark.RedisURL)
	assert.Equal(t, 720*time.Hour, cfg.Benchmark.HistoryTTL)

	// Untouched sections keep their defaults.
	assert.True(t, cfg.Inference.WaitForModel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("port: 7000\n"), 0644))
	t.Setenv("SENTIMENT_PORT", "7001")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "DistilBert", cfg.Model)
	assert.Equal(t, 512, cfg.Inference.MaxLength)
	assert.Zero(t, cfg.Cache.Size)
	assert.Zero(t, cfg.Security.RateLimit)
	assert.Empty(t, cfg.TrustedProxyList())
	assert.NoError(t, cfg.Validate())
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid port", func(c *Config) { c.Port = 0 }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"model with path separator", func(c *Config) { c.Model = "../DistilBert" }, true},
		{"missing url without mock", func(c *Config) { c.Inference.URL = "" }, true},
		{"missing url with mock", func(c *Config) {
			c.Inference.URL = ""
			c.Inference.Mock = true
		}, false},
		{"non-http url", func(c *Config) { c.Inference.URL = "ftp://models" }, true},
		{"zero timeout", func(c *Config) { c.Inference.Timeout = 0 }, true},
		{"negative cache size", func(c *Config) { c.Cache.Size = -1 }, true},
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, true},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"valid trusted proxies", func(c *Config) { c.Security.TrustedProxies = "10.0.0.1,fd00::/8" }, false},
		{"hostname as trusted proxy", func(c *Config) { c.Security.TrustedProxies = "lb.internal" }, true},
		{"metrics path without slash", func(c *Config) { c.Observability.MetricsPath = "metrics" }, true},
		{"bad redis url", func(c *Config) { c.Benchmark.RedisURL = "localhost:6379" }, true},
		{"negative history ttl", func(c *Config) { c.Benchmark.HistoryTTL = -time.Hour }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidation_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "log level")
}

func TestAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 8080}
	assert.Equal(t, "localhost:8080", cfg.Address())
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{}
	cfg.Security.CORSOrigins = " https://a.example.com, ,https://b.example.com "

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOriginList())
}
