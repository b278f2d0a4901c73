package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/di"
	"github.com/SaicharanT-tech/eventra/internal/metrics"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/internal/worker"
	"github.com/SaicharanT-tech/eventra/pkg/config"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/kafka"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

const serviceName = "outbox-worker"

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
	appLog.Info("Starting Outbox Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	db, err := database.NewPostgres(ctx, di.PostgresConfig(cfg))
	if err != nil {
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(ctx, di.ProducerConfig(cfg))
	if err != nil {
		appLog.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer producer.Close()
	appLog.Info("Kafka producer connected", zap.Strings("brokers", cfg.Kafka.Brokers))

	relay := worker.NewOutboxWorker(
		repository.NewPostgresOutboxRepository(db.Pool()),
		producer,
		di.OutboxWorkerConfig(cfg),
	)
	if err := relay.Start(ctx); err != nil {
		appLog.Fatal("Failed to start outbox worker", zap.Error(err))
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down outbox worker...")
	relay.Stop()

	stats := relay.GetStats()
	appLog.Info("Outbox worker stopped",
		zap.Int64("published", stats.Published),
		zap.Int64("failed", stats.Failed),
		zap.Int64("purged", stats.Purged),
	)
}
