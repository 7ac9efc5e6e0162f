package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/costing"
	dispatchapp "github.com/wms/backend/internal/application/dispatch"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/application/ports"
	receiptapp "github.com/wms/backend/internal/application/receipt"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/notify"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/queue"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:     cfg.Database.DBName,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL && !cfg.App.IsProduction(),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	// Infrastructure-backed providers
	currencyProvider := cache.NewCachedCurrencyProvider(db.DB, redisClient, cfg.Redis.CacheTTL, log)
	settingsProvider := cache.NewCachedSettingsProvider(db.DB, redisClient, cfg.Redis.CacheTTL, log)
	periodProvider := persistence.NewGormAccountingPeriodProvider(db.DB)
	accountService := persistence.NewGormAccountService(db.DB)
	orderStatusProvider := persistence.NewGormOrderStatusProvider(db.DB)

	var objectStorage ports.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, using stub")
	}

	// Durable job queue shared by the receipt service (producer) and the
	// recalculation worker (consumer)
	jobQueue := queue.NewGormQueue(db.DB, cfg.Queue.MaxAttempts)

	// Transaction scopes
	receiptScope := persistence.NewGormReceiptTransactionScope(db.DB, jobQueue)
	dispatchScope := persistence.NewGormDispatchTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	costingScope := persistence.NewGormCostingTransactionScope(db.DB)

	// Application services
	receiptService := receiptapp.NewReceiptService(
		receiptScope, currencyProvider, periodProvider, accountService, objectStorage, log,
	)
	dispatchService := dispatchapp.NewDispatchService(
		dispatchScope, periodProvider, orderStatusProvider, log,
	)
	inventoryService := inventoryapp.NewInventoryService(
		inventoryScope, currencyProvider, periodProvider, log,
	)

	// Cost recalculation worker
	if cfg.Queue.WorkerEnabled {
		worker := queue.NewWorker(db.DB, queue.WorkerConfig{
			PollInterval:      cfg.Queue.PollInterval,
			BatchSize:         cfg.Queue.BatchSize,
			VisibilityTimeout: cfg.Queue.VisibilityTimeout,
		}, log)
		worker.Register(costing.NewRecalculationHandler(costingScope, currencyProvider, log))
		if err := worker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start queue worker", zap.Error(err))
		}
		defer func() {
			if err := worker.Stop(context.Background()); err != nil {
				log.Error("Error stopping queue worker", zap.Error(err))
			}
		}()
	}

	// Outbox processor delivers stored notification events to tenant channels
	if cfg.Event.ProcessorEnabled {
		notifier := notify.NewRedisNotifier(redisClient, settingsProvider, log)
		outboxRepo := event.NewGormOutboxRepository(db.DB)
		processor := event.NewOutboxProcessor(outboxRepo, notifier, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  time.Hour,
		}, log)
		if err := processor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := processor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("Failed to register request validations", zap.Error(err))
	}

	r := router.New(log, db.DB, router.WithTracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	r.Register(router.NewReceiptRoutes(handler.NewReceiptHandler(receiptService)))
	r.Register(router.NewDispatchRoutes(handler.NewDispatchHandler(dispatchService)))
	r.Register(router.NewInventoryRoutes(handler.NewInventoryHandler(inventoryService)))
	engine := r.Setup()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
