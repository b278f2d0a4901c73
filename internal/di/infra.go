package di

import (
	"time"

	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/internal/worker"
	"github.com/SaicharanT-tech/eventra/pkg/config"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/kafka"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
	"github.com/SaicharanT-tech/eventra/pkg/redis"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// LoggerConfig maps application settings onto the logger
func LoggerConfig(cfg *config.Config, serviceName string) *logger.Config {
	level := "info"
	if cfg.App.Debug {
		level = "debug"
	}
	return &logger.Config{
		Level:       level,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
}

// TelemetryConfig maps OTel settings
func TelemetryConfig(cfg *config.Config, serviceName string) *telemetry.Config {
	return &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
}

// PostgresConfig maps database settings onto the pool config
func PostgresConfig(cfg *config.Config) *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		MaxRetries:      cfg.Database.MaxRetries,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
}

// RedisConfig maps Redis settings
func RedisConfig(cfg *config.Config) *redis.Config {
	return &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// ProducerConfig maps Kafka settings
func ProducerConfig(cfg *config.Config) *kafka.ProducerConfig {
	return &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID,
		MaxRetries:    3,
		RetryInterval: time.Second,
		LingerMs:      5,
	}
}

// AuthConfig maps JWT settings
func AuthConfig(cfg *config.Config) *middleware.AuthConfig {
	return &middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}
}

// EventServiceConfig maps lifecycle and outbox settings
func EventServiceConfig(cfg *config.Config) *service.EventServiceConfig {
	return &service.EventServiceConfig{
		Topic:            cfg.Kafka.Topic,
		EnforceOwnership: cfg.Lifecycle.EnforceOwnership,
		OutboxMaxRetries: cfg.Outbox.MaxRetries,
	}
}

// OutboxWorkerConfig maps outbox relay settings
func OutboxWorkerConfig(cfg *config.Config) *worker.OutboxWorkerConfig {
	wc := worker.DefaultOutboxWorkerConfig()
	if cfg.Outbox.PollInterval > 0 {
		wc.PollInterval = cfg.Outbox.PollInterval
	}
	if cfg.Outbox.BatchSize > 0 {
		wc.BatchSize = cfg.Outbox.BatchSize
	}
	if cfg.Outbox.CleanupInterval > 0 {
		wc.CleanupInterval = cfg.Outbox.CleanupInterval
	}
	if cfg.Outbox.RetentionPeriod > 0 {
		wc.RetentionPeriod = cfg.Outbox.RetentionPeriod
	}
	return wc
}
