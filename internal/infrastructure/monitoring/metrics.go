package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for one runtime host.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Host API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Tool dispatch metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ToolErrors   *prometheus.CounterVec

	// Remote boundary metrics (gateway, orchestrator, http tools)
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Protocol and lifecycle metrics
	Generations *prometheus.CounterVec
	Installs    prometheus.Counter
	HookRuns    *prometheus.CounterVec

	// Session resources
	SessionsActive prometheus.Gauge
	TimersActive   prometheus.Gauge
	StateKeys      *prometheus.GaugeVec
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_http_requests_total",
				Help: "Total number of host API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runtime_http_request_duration_seconds",
				Help:    "Host API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_tool_calls_total",
				Help: "Total number of tool executions",
			},
			[]string{"category", "route", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runtime_tool_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"category", "route"},
		),
		ToolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_tool_errors_total",
				Help: "Total number of isolated tool failures",
			},
			[]string{"category", "error_type"},
		),

		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_remote_calls_total",
				Help: "Total number of calls to external services",
			},
			[]string{"target", "status"},
		),
		RemoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runtime_remote_duration_seconds",
				Help:    "External service call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"target"},
		),

		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_generations_total",
				Help: "Generation requests by outcome",
			},
			[]string{"outcome"},
		),
		Installs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "runtime_spec_installs_total",
				Help: "Total number of app specs installed",
			},
		),
		HookRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runtime_lifecycle_hooks_total",
				Help: "Lifecycle hook executions by phase and status",
			},
			[]string{"phase", "status"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "runtime_sessions_active",
				Help: "Number of live sessions",
			},
		),
		TimersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "runtime_timers_active",
				Help: "Number of scheduled timers and intervals",
			},
		),
		StateKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "runtime_state_keys",
				Help: "Number of keys in a session state store",
			},
			[]string{"session"},
		),
	}
}

// Registry exposes the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records a host API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordToolCall records a tool execution; route is "local" or "remote"
func (m *Metrics) RecordToolCall(category, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(category, route, status).Inc()
	m.ToolDuration.WithLabelValues(category, route).Observe(duration.Seconds())
}

// RecordToolError records an isolated tool failure
func (m *Metrics) RecordToolError(category, errorType string) {
	if m == nil {
		return
	}
	m.ToolErrors.WithLabelValues(category, errorType).Inc()
}

// RecordRemoteCall records a call to the gateway, orchestrator or an http tool target
func (m *Metrics) RecordRemoteCall(target, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(target, status).Inc()
	m.RemoteDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// RecordGeneration records a generation outcome (started, complete, error, stale)
func (m *Metrics) RecordGeneration(outcome string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(outcome).Inc()
}

// RecordInstall records an installed spec
func (m *Metrics) RecordInstall() {
	if m == nil {
		return
	}
	m.Installs.Inc()
}

// RecordHook records a lifecycle hook run
func (m *Metrics) RecordHook(phase, status string) {
	if m == nil {
		return
	}
	m.HookRuns.WithLabelValues(phase, status).Inc()
}

// AddSessions adjusts the live session gauge
func (m *Metrics) AddSessions(delta float64) {
	if m == nil {
		return
	}
	m.SessionsActive.Add(delta)
}

// AddTimers adjusts the scheduled timer gauge
func (m *Metrics) AddTimers(delta float64) {
	if m == nil {
		return
	}
	m.TimersActive.Add(delta)
}

// SetStateKeys records the key count of a session store
func (m *Metrics) SetStateKeys(session string, n int) {
	if m == nil {
		return
	}
	m.StateKeys.WithLabelValues(session).Set(float64(n))
}

// ForgetSession drops per-session series
func (m *Metrics) ForgetSession(session string) {
	if m == nil {
		return
	}
	m.StateKeys.DeleteLabelValues(session)
}
