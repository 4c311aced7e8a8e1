package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Host.Port)
	assert.Equal(t, "apps", cfg.Host.AppsDir)
	assert.Equal(t, "127.0.0.1", cfg.Host.Host)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Backend.MaxRetries)

	assert.Equal(t, "ws://localhost:8000/stream", cfg.Stream.URL)

	assert.Equal(t, 10.0, cfg.HTTPTools.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "0.0.0.0",
		"BACKEND_URL":         "http://gateway:8000",
		"BACKEND_TIMEOUT":     "5s",
		"BACKEND_MAX_RETRIES": "1",
		"STREAM_URL":          "ws://gateway:8000/stream",
		"HTTP_TOOL_RPS":       "2.5",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_ENABLED":  "false",
		"METRICS_ENABLED":     "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Host.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host.Host)
	assert.Equal(t, "http://gateway:8000", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 1, cfg.Backend.MaxRetries)
	assert.Equal(t, "ws://gateway:8000/stream", cfg.Stream.URL)
	assert.Equal(t, 2.5, cfg.HTTPTools.RequestsPerSecond)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
}
