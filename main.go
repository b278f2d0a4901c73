package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SaicharanT-tech/eventra/internal/di"
	"github.com/SaicharanT-tech/eventra/internal/handler"
	"github.com/SaicharanT-tech/eventra/internal/metrics"
	"github.com/SaicharanT-tech/eventra/internal/worker"
	"github.com/SaicharanT-tech/eventra/pkg/config"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/kafka"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
	pkgredis "github.com/SaicharanT-tech/eventra/pkg/redis"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

const serviceName = "eventra-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(di.LoggerConfig(cfg, serviceName)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Eventra API...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, di.TelemetryConfig(cfg, serviceName)); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()
	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to initialize metrics", zap.Error(err))
	}

	// Initialize database connection
	dbCfg := di.PostgresConfig(cfg)
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected", zap.Int32("min_conns", dbCfg.MinConns), zap.Int32("max_conns", dbCfg.MaxConns))

	// Redis only backs idempotency; the API runs without it
	redisClient, err := pkgredis.NewClient(ctx, di.RedisConfig(cfg))
	if err != nil {
		appLog.Warn("Redis connection failed, idempotency disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:            db,
		Redis:         redisClient,
		Logger:        appLog,
		ServiceConfig: di.EventServiceConfig(cfg),
	})

	// Relay the outbox in-process when Kafka is reachable;
	// cmd/outbox-worker covers deployments without it
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	var relay *worker.OutboxWorker
	producer, err := kafka.NewProducer(ctx, di.ProducerConfig(cfg))
	if err != nil {
		appLog.Warn("Kafka unavailable, outbox relay not started", zap.Error(err))
	} else {
		defer producer.Close()
		relay = worker.NewOutboxWorker(container.OutboxRepo, producer, di.OutboxWorkerConfig(cfg))
		if err := relay.Start(workerCtx); err != nil {
			appLog.Fatal("Failed to start outbox relay", zap.Error(err))
		}
	}

	// Setup Gin
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(middleware.Logger(appLog))
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Pool stats are scraped from /metrics; lifecycle metrics go out over OTLP
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		metrics.NewPoolCollector(func() metrics.PoolStats { return metrics.PoolStatsFrom(db.Stats()) }),
	)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	routeCfg := &handler.RouteConfig{Auth: middleware.JWTAuth(di.AuthConfig(cfg))}
	if redisClient != nil {
		idem := middleware.DefaultIdempotencyConfig(redisClient.Client())
		if cfg.Redis.IdempotencyTTL > 0 {
			idem.TTL = cfg.Redis.IdempotencyTTL
		}
		routeCfg.Idempotency = middleware.Idempotency(idem)
	}

	// API routes
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1, container.EventHandler, container.InventoryHandler, routeCfg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		appLog.Info("Eventra API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on signal or listener failure
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("Shutting down server...")

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("Server forced to shutdown", zap.Error(err))
		}
		if relay != nil {
			relay.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLog.Error("Server failed", zap.Error(err))
		return
	}
	appLog.Info("Server exited gracefully")
}
