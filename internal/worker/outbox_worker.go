package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/metrics"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/pkg/kafka"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/retry"
)

// OutboxStore is the part of the outbox repository the worker drives
type OutboxStore interface {
	ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, msg *domain.OutboxMessage) error) (*repository.BatchResult, error)
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Publisher sends one message to the broker. *kafka.Producer implements it.
type Publisher interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for publishable messages
	PollInterval time.Duration
	// BatchSize is the number of messages locked in each poll
	BatchSize int
	// PublishRetries is the number of in-process retries per message before
	// the attempt is recorded as failed
	PublishRetries int
	// RetryInterval is the wait between in-process retries
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of old published messages
	CleanupInterval time.Duration
	// RetentionPeriod is how long published messages are kept
	RetentionPeriod time.Duration
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:    500 * time.Millisecond,
		BatchSize:       100,
		PublishRetries:  2,
		RetryInterval:   200 * time.Millisecond,
		CleanupInterval: time.Hour,
		RetentionPeriod: 7 * 24 * time.Hour,
	}
}

// OutboxWorker relays lifecycle messages from the outbox table to Kafka
type OutboxWorker struct {
	store     OutboxStore
	publisher Publisher
	config    *OutboxWorkerConfig
	log       *logger.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool

	published atomic.Int64
	failed    atomic.Int64
	purged    atomic.Int64
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(store OutboxStore, publisher Publisher, config *OutboxWorkerConfig) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}

	return &OutboxWorker{
		store:     store,
		publisher: publisher,
		config:    config,
		log:       logger.Get(),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the poller and the cleanup loop
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(2)
	go w.poll(ctx)
	go w.cleanup(ctx)

	return nil
}

// Stop stops the worker and waits for in-flight batches
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

func (w *OutboxWorker) poll(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce relays one batch and returns its outcome
func (w *OutboxWorker) ProcessOnce(ctx context.Context) *repository.BatchResult {
	result, err := w.store.ProcessBatch(ctx, w.config.BatchSize, w.publish)
	if err != nil {
		w.log.Error("Failed to process outbox batch", zap.Error(err))
		return &repository.BatchResult{}
	}

	w.published.Add(int64(result.Published))
	w.failed.Add(int64(result.Failed))
	metrics.RecordOutbox(ctx, result.Published, result.Failed)

	if result.Published > 0 || result.Failed > 0 {
		w.log.Debug("Outbox batch relayed",
			zap.Int("published", result.Published),
			zap.Int("failed", result.Failed),
		)
	}
	return result
}

func (w *OutboxWorker) cleanup(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Purge(ctx)
		}
	}
}

// Purge deletes published messages older than the retention period
func (w *OutboxWorker) Purge(ctx context.Context) int64 {
	deleted, err := w.store.DeletePublished(ctx, time.Now().Add(-w.config.RetentionPeriod))
	if err != nil {
		w.log.Error("Failed to cleanup old outbox messages", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		w.purged.Add(deleted)
		w.log.Info("Cleaned up old published outbox messages", zap.Int64("deleted", deleted))
	}
	return deleted
}

// publish sends msg to Kafka, retrying briefly in-process. The returned
// error is stored on the row and counts against its retry budget.
func (w *OutboxWorker) publish(ctx context.Context, msg *domain.OutboxMessage) error {
	kafkaMsg := &kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.PartitionKey),
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":     msg.EventType,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
			"content_type":   "application/json",
			"source":         "outbox-worker",
		},
		Timestamp: time.Now(),
	}

	_, err := retry.Do(ctx, retry.FixedConfig(w.config.PublishRetries, w.config.RetryInterval),
		func(ctx context.Context) error {
			return w.publisher.Produce(ctx, kafkaMsg)
		},
		func(attempt int, err error, next time.Duration) {
			w.log.Warn("Outbox publish failed, retrying",
				zap.String("message_id", msg.ID),
				zap.String("event_type", msg.EventType),
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err),
			)
		},
	)
	if err != nil {
		w.log.Error("Failed to publish outbox message",
			zap.String("message_id", msg.ID),
			zap.Int("retry_count", msg.RetryCount+1),
			zap.Int("max_retries", msg.MaxRetries),
			zap.Error(err),
		)
	}
	return err
}

// GetStats returns worker statistics
func (w *OutboxWorker) GetStats() *OutboxWorkerStats {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	return &OutboxWorkerStats{
		IsRunning: running,
		Published: w.published.Load(),
		Failed:    w.failed.Load(),
		Purged:    w.purged.Load(),
	}
}

// OutboxWorkerStats contains worker statistics
type OutboxWorkerStats struct {
	IsRunning bool  `json:"is_running"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
	Purged    int64 `json:"purged"`
}
