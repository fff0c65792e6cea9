package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig selects the middleware stack of the API engine
type EngineConfig struct {
	ServiceName    string
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	RequestTimeout time.Duration
	// RateLimiter is optional. Budgets are per property and client IP.
	RateLimiter *middleware.RateLimiter
	Swagger     middleware.SwaggerConfig

	TracingEnabled   bool
	TracerProvider   trace.TracerProvider
	MeterProvider    *telemetry.MeterProvider
	ProfilingEnabled bool
}

// NewEngine builds the gin engine with the full middleware stack, the
// ledger API under /api/v1 and the system routes.
func NewEngine(cfg EngineConfig, log *zap.Logger, handlers Handlers, system *handler.SystemHandler) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Request id first so recovery and access logs carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log, "/health", "/api/v1/ping"))
	engine.Use(middleware.RequestContext(log))
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	if cfg.TracingEnabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        true,
			TracerProvider: cfg.TracerProvider,
		}))
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(cfg.MeterProvider, log))
	if cfg.ProfilingEnabled {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
	})

	if system != nil {
		engine.GET("/health", system.Health)
	}
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := NewAPI(engine, "v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	for _, group := range LedgerGroups(handlers) {
		api.Add(group)
	}
	v1 := api.Mount()
	if system != nil {
		v1.GET("/ping", system.Ping)
	}
	return engine
}
