/*
Package monitoring provides Prometheus metrics for the runtime host.

Each Metrics value owns its registry, so several hosts (or tests) can coexist
in one process. All Record methods are safe on a nil *Metrics.

Tracked:

  - tool executions by category, route (local/remote) and status

  - isolated tool failures by error type

  - calls to the service gateway, orchestrator and http tool targets

  - generation outcomes, installs, lifecycle hook runs

  - live sessions, scheduled timers, state keys per session

  - host API requests

    metrics := monitoring.NewMetrics()
    router.Use(monitoring.Middleware(metrics))
    router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
