// Package config provides 12-factor configuration for the runtime host.
//
// Configuration is loaded from environment variables with defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Host: presentation-facing HTTP API (port, host)
//   - Backend: service gateway / orchestrator base URL, timeout, retries
//   - Stream: generation stream WebSocket URL
//   - HTTPTools: rate and timeout for http.get / http.post tools
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting on the host API
//   - Metrics: Prometheus endpoint toggle
//
// Environment Variables:
//   - PORT, HOST, BACKEND_URL, BACKEND_TIMEOUT, BACKEND_MAX_RETRIES
//   - STREAM_URL, STREAM_HANDSHAKE_TIMEOUT, STREAM_PING_INTERVAL
//   - HTTP_TOOL_RPS, HTTP_TOOL_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - METRICS_ENABLED
package config
