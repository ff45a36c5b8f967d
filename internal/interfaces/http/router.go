package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/auth/idam"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware behind the API.
type RouterConfig struct {
	FeeHandler      *handlers.FeeHandler
	DecisionHandler *handlers.DecisionHandler
	HwfHandler      *handlers.HwfHandler
	DeadlineHandler *handlers.DeadlineHandler
	HealthHandler   *handlers.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	// Enforcer gates each route by permission. Nil leaves routes open to any
	// authenticated caller.
	Enforcer  *idam.Enforcer
	RateLimit *middleware.RateLimitConfig

	Logger         logging.Logger
	Metrics        *prometheus.EngineMetrics
	MetricsHandler http.Handler
}

// NewRouter builds the route tree: public probes and /metrics, then the
// authenticated /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, middleware.DefaultLoggingConfig()))
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Handler())
	}
	guard := func(p idam.Permission) gin.HandlerFunc {
		if cfg.Enforcer == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequirePermission(cfg.Enforcer, p)
	}

	if h := cfg.FeeHandler; h != nil {
		api.POST("/fees", guard(idam.PermFeeCompute), h.Compute)
	}
	if h := cfg.DecisionHandler; h != nil {
		api.POST("/decisions", guard(idam.PermDecisionRecord), h.Decide)
		api.POST("/decisions/evaluate", guard(idam.PermDecisionRecord), h.Evaluate)
	}
	if h := cfg.HwfHandler; h != nil {
		api.POST("/hwf/events", guard(idam.PermHwfProcess), h.ApplyEvent)
	}
	if h := cfg.DeadlineHandler; h != nil {
		api.POST("/deadlines", guard(idam.PermDeadlineRead), h.Calculate)
	}
	return r
}

//Personal.AI order the ending
