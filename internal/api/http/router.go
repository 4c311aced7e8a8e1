package http

import (
	"github.com/GriffinCanCode/AgentOS/runtime/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes
func NewRouter(cfg *config.Config, h *Handlers, metrics *monitoring.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	router.GET("/health", h.Health)
	if cfg.Metrics.Enabled && metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.GET("/spec", h.GetSpec)
	router.GET("/state", h.GetState)
	router.PUT("/state/:key", h.SetState)
	router.POST("/events", h.DispatchEvent)
	router.POST("/execute", h.Execute)
	router.POST("/generate", h.Generate)
	router.GET("/snapshot", h.Snapshot)
	router.GET(streamPath, h.Notifications)

	router.GET("/catalog", h.ListCatalog)
	router.POST("/catalog/:id/launch", h.LaunchApp)

	router.GET("/sessions", h.ListSessions)
	router.DELETE("/sessions/:id", h.CloseSession)

	return router
}
