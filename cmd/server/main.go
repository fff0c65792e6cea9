package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/rentledger/backend/internal/application/billing"
	eventapp "github.com/rentledger/backend/internal/application/event"
	expenseapp "github.com/rentledger/backend/internal/application/expense"
	invoicingapp "github.com/rentledger/backend/internal/application/invoicing"
	meteringapp "github.com/rentledger/backend/internal/application/metering"
	occupancyapp "github.com/rentledger/backend/internal/application/occupancy"
	paymentapp "github.com/rentledger/backend/internal/application/payment"
	propertyapp "github.com/rentledger/backend/internal/application/property"
	reportapp "github.com/rentledger/backend/internal/application/report"
	"github.com/rentledger/backend/internal/infrastructure/cache"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/event"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/notification"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/internal/infrastructure/printing"
	"github.com/rentledger/backend/internal/infrastructure/scheduler"
	"github.com/rentledger/backend/internal/infrastructure/storage"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
	"github.com/rentledger/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	_ "github.com/rentledger/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Rent Ledger API
//	@version		1.0
//	@description	Per-period rental billing, invoicing, payment allocation and reporting.

//	@contact.name	API Support
//	@contact.url	https://github.com/rentledger/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Fields: map[string]string{"service": cfg.App.Name, "version": version},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	logsCfg := telCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logsProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without it", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting rent ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.Open(ctx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Postgres schemas come from cmd/migrate. SQLite is for local runs.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		Tracing:            tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		System:             dbSystem,
	}, meterProvider, log); err != nil {
		log.Warn("Failed to instrument database", zap.Error(err))
	}

	// Payments are de-duplicated through the idempotency store. Production
	// refuses to start without the configured backend.
	idemStore, err := cache.NewIdempotencyStore(ctx, cfg, log, cfg.App.Env == "production")
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus: ledger events fan out to metrics after commit
	eventBus := event.NewInMemoryEventBus(log)
	if meterProvider.IsEnabled() {
		ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:    meterProvider.Meter("rentledger.ledger"),
			Logger:   log,
			Provider: telemetry.NewGormLedgerSnapshotProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize ledger metrics", zap.Error(err))
		} else {
			metricsHandler := eventapp.NewLedgerMetricsHandler(ledgerMetrics, log)
			eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)
			ledgerMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
			defer ledgerMetrics.Stop()
			log.Info("Ledger metrics registered", zap.Strings("events", metricsHandler.EventTypes()))
		}
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	scope := persistence.NewGormTransactionScope(db.DB)
	repos := persistence.NewGormRepositories(db.DB)

	propertyService := propertyapp.NewPropertyService(scope, repos, eventBus, log)
	tenantService := occupancyapp.NewTenantService(scope, repos, eventBus, log)
	readingService := meteringapp.NewReadingService(scope, repos, eventBus, log)
	invoiceService := invoicingapp.NewInvoiceService(scope, repos, eventBus, log, invoicingapp.Config{
		Prefix:       cfg.Billing.InvoicePrefix,
		PresignTTL:   cfg.Storage.PresignExpiration,
		OverdueBatch: cfg.Scheduler.BatchSize,
	})
	billingService := billingapp.NewBillingService(scope, repos, eventBus, log, invoiceService, cfg.Billing.AutoIssueInvoices)
	paymentService := paymentapp.NewPaymentService(scope, repos, eventBus, log, idemStore, cfg.Idempotency.TTL)
	expenseService := expenseapp.NewExpenseService(repos, log)
	reportService := reportapp.NewReportService(repos, log)

	invoiceService.SetNotifier(notification.NewLogNotifier(log))

	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			ExecPath:       cfg.Printing.ChromePath,
			NoSandbox:      true,
			Currency:       cfg.Billing.Currency,
			Locale:         cfg.Billing.Locale,
			Logger:         log,
		})
		if err != nil {
			log.Warn("Invoice PDF rendering disabled", zap.Error(err))
		} else {
			invoiceService.SetRenderer(renderer)
			defer func() {
				if err := renderer.Close(); err != nil {
					log.Error("Error closing PDF renderer", zap.Error(err))
				}
			}()
		}
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewS3DocumentStore(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := store.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Document bucket is not ready, PDF links may fail", zap.Error(err))
		}
		cancel()
		invoiceService.SetDocumentStore(store)
		log.Info("Document storage enabled", zap.String("bucket", store.Bucket()))
	}

	overdueScheduler, err := scheduler.NewOverdueScheduler(invoiceService, log, scheduler.OverdueSchedulerConfig{
		Enabled:    cfg.Scheduler.Enabled,
		Interval:   cfg.Scheduler.OverdueInterval,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	if err != nil {
		log.Fatal("Failed to create overdue scheduler", zap.Error(err))
	}
	if err := overdueScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start overdue scheduler", zap.Error(err))
	}
	defer func() {
		if err := overdueScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping overdue scheduler", zap.Error(err))
		}
	}()

	handlers := router.Handlers{
		Property: handler.NewPropertyHandler(propertyService, tenantService),
		Tenant:   handler.NewTenantHandler(tenantService),
		Reading:  handler.NewReadingHandler(readingService),
		Billing:  handler.NewBillingHandler(billingService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Expense:  handler.NewExpenseHandler(expenseService),
		Report:   handler.NewReportHandler(reportService),
	}

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if pinger, ok := idemStore.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}
	system := handler.NewSystemHandler(cfg.App.Name, version, checks)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    serviceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           corsCfg,
		Security:       securityCfg,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RateLimiter:    limiter,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		TracingEnabled:   tracerProvider.IsEnabled(),
		TracerProvider:   otel.GetTracerProvider(),
		MeterProvider:    meterProvider,
		ProfilingEnabled: profiler != nil && profiler.IsEnabled(),
	}, log, handlers, system)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logs provider", zap.Error(err))
	}

	log.Info("Server exited")
}
