// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sentimentlab/sentiment-service/internal/pkg/middleware"
	"github.com/sentimentlab/sentiment-service/internal/pkg/security"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"SENTIMENT_HOST" yaml:"host"`
	Port int    `envconfig:"SENTIMENT_PORT" yaml:"port"`

	// Model is the evaluator preloaded by the HTTP predictor.
	Model string `envconfig:"SENTIMENT_MODEL" yaml:"model"`

	// Inference pipeline configuration
	Inference InferenceConfig `yaml:"inference"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`

	// Benchmark configuration
	Benchmark BenchmarkConfig `yaml:"benchmark"`
}

// InferenceConfig holds text-classification pipeline settings.
type InferenceConfig struct {
	URL               string        `envconfig:"SENTIMENT_INFERENCE_URL" yaml:"url"`
	Token             string        `envconfig:"SENTIMENT_HF_TOKEN" yaml:"token"`
	Timeout           time.Duration `envconfig:"SENTIMENT_INFERENCE_TIMEOUT" yaml:"timeout"`
	MaxLength         int           `envconfig:"SENTIMENT_MAX_LENGTH" yaml:"max_length"`
	RequestsPerSecond float64       `envconfig:"SENTIMENT_INFERENCE_RPS" yaml:"requests_per_second"` // 0 = unlimited
	WaitForModel      bool          `envconfig:"SENTIMENT_WAIT_FOR_MODEL" yaml:"wait_for_model"`
	Warmup            bool          `envconfig:"SENTIMENT_WARMUP" yaml:"warmup"`
	Mock              bool          `envconfig:"SENTIMENT_MOCK_ML" yaml:"mock"`
}

// CacheConfig holds raw-label cache settings.
type CacheConfig struct {
	Size int `envconfig:"SENTIMENT_CACHE_SIZE" yaml:"size"` // 0 = disabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"SENTIMENT_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"SENTIMENT_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit      int    `envconfig:"SENTIMENT_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
	TrustedProxies string `envconfig:"SENTIMENT_TRUSTED_PROXIES" yaml:"trusted_proxies"` // comma-separated IPs or CIDRs
	CORSOrigins    string `envconfig:"SENTIMENT_CORS_ORIGINS" yaml:"cors_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	MetricsEnabled bool   `envconfig:"SENTIMENT_METRICS_ENABLED" yaml:"metrics_enabled"`
	MetricsPath    string `envconfig:"SENTIMENT_METRICS_PATH" yaml:"metrics_path"`
}

// BenchmarkConfig holds benchmark runner settings.
type BenchmarkConfig struct {
	RedisURL   string        `envconfig:"SENTIMENT_BENCHMARK_REDIS_URL" yaml:"redis_url"` // empty = no history
	HistoryTTL time.Duration `envconfig:"SENTIMENT_BENCHMARK_HISTORY_TTL" yaml:"history_ttl"` // 0 = keep forever
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080
	cfg.Model = "DistilBert"

	cfg.Inference = InferenceConfig{
		URL:          "https://api-inference.huggingface.co/models",
		Timeout:      60 * time.Second,
		MaxLength:    512,
		WaitForModel: true,
		Warmup:       true,
	}

	cfg.Cache = CacheConfig{
		Size: 0,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "*",
	}

	cfg.Observability = ObservabilityConfig{
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if err := security.ValidateModelName(c.Model); err != nil {
		errs = append(errs, err.Error())
	}

	// Inference validation
	if !c.Inference.Mock {
		if c.Inference.URL == "" {
			errs = append(errs, "inference url is required unless mock is enabled")
		} else if !strings.HasPrefix(c.Inference.URL, "http://") && !strings.HasPrefix(c.Inference.URL, "https://") {
			errs = append(errs, fmt.Sprintf("invalid inference url: %s (must start with http:// or https://)", c.Inference.URL))
		}
	}

	if c.Inference.Timeout <= 0 {
		errs = append(errs, "inference timeout must be positive")
	}

	if c.Inference.MaxLength < 1 {
		errs = append(errs, "max_length must be positive")
	}

	if c.Inference.RequestsPerSecond < 0 {
		errs = append(errs, "requests_per_second must not be negative")
	}

	// Cache validation
	if c.Cache.Size < 0 {
		errs = append(errs, "cache size must not be negative")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	// Security validation
	if c.Security.RateLimit < 0 {
		errs = append(errs, "rate_limit must not be negative")
	}
	if _, err := middleware.ParseTrustedProxies(c.TrustedProxyList()); err != nil {
		errs = append(errs, err.Error())
	}

	// Observability validation
	if c.Observability.MetricsEnabled && !strings.HasPrefix(c.Observability.MetricsPath, "/") {
		errs = append(errs, "metrics_path must start with /")
	}

	// Benchmark validation
	if c.Benchmark.RedisURL != "" &&
		!strings.HasPrefix(c.Benchmark.RedisURL, "redis://") && !strings.HasPrefix(c.Benchmark.RedisURL, "rediss://") {
		errs = append(errs, fmt.Sprintf("invalid benchmark redis_url: %s", c.Benchmark.RedisURL))
	}
	if c.Benchmark.HistoryTTL < 0 {
		errs = append(errs, "history_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CORSOriginList splits the comma-separated CORS origins.
func (c *Config) CORSOriginList() []string {
	return splitList(c.Security.CORSOrigins)
}

// TrustedProxyList splits the comma-separated trusted proxies.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.Security.TrustedProxies)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
