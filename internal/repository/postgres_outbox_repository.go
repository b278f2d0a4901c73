package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaicharanT-tech/eventra/internal/domain"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// CreateTx creates a new outbox message within a transaction
func (r *PostgresOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type,
			payload, topic, partition_key, status,
			retry_count, max_retries, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := tx.Exec(ctx, query,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		string(msg.Status),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		return storeErr("create outbox message", err)
	}
	return nil
}

// ProcessBatch claims pending messages and failed ones still under their
// retry limit. SKIP LOCKED lets several relays share the table.
func (r *PostgresOutboxRepository) ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, msg *domain.OutboxMessage) error) (*BatchResult, error) {
	result := &BatchResult{}

	err := inTx(ctx, r.pool, "process outbox batch", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT
				id, aggregate_type, aggregate_id, event_type,
				payload, topic, partition_key, status,
				retry_count, max_retries, last_error,
				created_at, published_at
			FROM outbox_messages
			WHERE status = 'pending'
			   OR (status = 'failed' AND retry_count < max_retries)
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return storeErr("get pending messages", err)
		}
		messages, err := scanOutboxMessages(rows)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			if pubErr := fn(ctx, msg); pubErr != nil {
				msg.MarkAsFailed(pubErr.Error())
				if _, err := tx.Exec(ctx, `
					UPDATE outbox_messages SET
						status = 'failed',
						last_error = $2,
						retry_count = retry_count + 1
					WHERE id = $1
				`, msg.ID, msg.LastError); err != nil {
					return storeErr("mark message as failed", err)
				}
				result.Failed++
				continue
			}

			msg.MarkAsPublished(time.Now())
			if _, err := tx.Exec(ctx, `
				UPDATE outbox_messages SET status = 'published', published_at = $2
				WHERE id = $1
			`, msg.ID, *msg.PublishedAt); err != nil {
				return storeErr("mark message as published", err)
			}
			result.Published++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePublished deletes old published messages for cleanup
func (r *PostgresOutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM outbox_messages
		WHERE status = 'published' AND published_at < $1
	`, before)
	if err != nil {
		return 0, storeErr("delete published messages", err)
	}
	return tag.RowsAffected(), nil
}

func scanOutboxMessages(rows pgx.Rows) ([]*domain.OutboxMessage, error) {
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var (
			status    string
			lastError *string
		)
		err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.MaxRetries,
			&lastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		if lastError != nil {
			msg.LastError = *lastError
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate outbox messages", err)
	}
	return messages, nil
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
