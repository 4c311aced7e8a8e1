// Package remote holds the outbound HTTP clients of the runtime.
//
// Gateway delegates remote-category tools (storage, auth, ai, sync, media)
// to the service gateway. Orchestrator spawns and lists apps. Passthrough
// backs the http.get and http.post tools.
//
// All three share Client: resty over a pooled transport, a token bucket
// limiter, a circuit breaker per target and Prometheus call metrics.
package remote
