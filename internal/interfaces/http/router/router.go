package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a set of routes on a versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router assembles the HTTP engine: global middleware, health endpoints
// and the versioned API groups contributed by registrars.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	tracing    *middleware.TracingConfig
}

// Option configures the Router
type Option func(*Router)

// WithAPIVersion overrides the API version prefix (default "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithTracing inserts request tracing into the middleware chain
func WithTracing(cfg middleware.TracingConfig) Option {
	return func(r *Router) {
		r.tracing = &cfg
	}
}

// New builds a Router with the standard middleware chain applied
func New(log *zap.Logger, db *gorm.DB, opts ...Option) *Router {
	r := &Router{apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(log),
	)
	if r.tracing != nil {
		engine.Use(
			middleware.Tracing(*r.tracing),
			middleware.TracingEnrichment(),
		)
	}
	engine.Use(
		middleware.Logging(log),
		middleware.Tenant(),
	)

	system := handler.NewSystemHandler(db)
	engine.GET("/health", system.Health)
	engine.GET("/healthz", system.Health)

	r.engine = engine
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts all registered routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
