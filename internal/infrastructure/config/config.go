package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration.
type Config struct {
	Host      HostConfig
	Backend   BackendConfig
	Stream    StreamConfig
	HTTPTools HTTPToolsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// HostConfig holds the presentation-facing API settings.
type HostConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	// AppsDir holds prebuilt spec files offered by the catalog
	AppsDir string `envconfig:"APPS_DIR" default:"apps"`
}

// BackendConfig holds the service gateway and orchestrator settings.
type BackendConfig struct {
	URL        string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	Timeout    time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"BACKEND_MAX_RETRIES" default:"3"`
}

// StreamConfig holds the generation stream settings.
type StreamConfig struct {
	URL              string        `envconfig:"STREAM_URL" default:"ws://localhost:8000/stream"`
	HandshakeTimeout time.Duration `envconfig:"STREAM_HANDSHAKE_TIMEOUT" default:"10s"`
	PingInterval     time.Duration `envconfig:"STREAM_PING_INTERVAL" default:"30s"`
}

// HTTPToolsConfig bounds the http.get / http.post passthrough tools.
type HTTPToolsConfig struct {
	RequestsPerSecond float64       `envconfig:"HTTP_TOOL_RPS" default:"10"`
	Timeout           time.Duration `envconfig:"HTTP_TOOL_TIMEOUT" default:"15s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds host API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Host: HostConfig{
			Port:    "8080",
			Host:    "127.0.0.1",
			AppsDir: "apps",
		},
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Stream: StreamConfig{
			URL:              "ws://localhost:8000/stream",
			HandshakeTimeout: 10 * time.Second,
			PingInterval:     30 * time.Second,
		},
		HTTPTools: HTTPToolsConfig{
			RequestsPerSecond: 10,
			Timeout:           15 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
