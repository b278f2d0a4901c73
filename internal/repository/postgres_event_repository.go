package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaicharanT-tech/eventra/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL.
// Resource lines and approval history live in JSONB columns on the row.
type PostgresEventRepository struct {
	pool   *pgxpool.Pool
	outbox *PostgresOutboxRepository
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{
		pool:   pool,
		outbox: NewPostgresOutboxRepository(pool),
	}
}

const eventColumns = `
	id, title, department, to_char(event_date, 'YYYY-MM-DD'),
	start_time, end_time, participants, coordinator_id, venue_id,
	resources, status, approval_history, created_at, updated_at
`

// Create inserts the event and its outbox message in a single transaction
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event, msg *domain.OutboxMessage) error {
	if event.Resources == nil {
		event.Resources = []domain.ResourceLine{}
	}
	if event.ApprovalHistory == nil {
		event.ApprovalHistory = []domain.ApprovalEntry{}
	}
	resources, err := json.Marshal(event.Resources)
	if err != nil {
		return fmt.Errorf("failed to encode resources: %w", err)
	}
	history, err := json.Marshal(event.ApprovalHistory)
	if err != nil {
		return fmt.Errorf("failed to encode approval history: %w", err)
	}

	return inTx(ctx, r.pool, "create event", func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO events (
				id, title, department, event_date, start_time, end_time,
				participants, coordinator_id, venue_id, resources, status,
				approval_history, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10::jsonb, $11, $12::jsonb, $13, $14
			)
		`,
			event.ID,
			event.Title,
			event.Department,
			event.Date,
			event.StartTime,
			event.EndTime,
			event.Participants,
			event.CoordinatorID,
			event.VenueID,
			resources,
			string(event.Status),
			history,
			event.CreatedAt,
			event.UpdatedAt,
		)
		if err != nil {
			return storeErr("create event", err)
		}
		if msg == nil {
			return nil
		}
		return r.outbox.CreateTx(ctx, tx, msg)
	})
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, notFoundOr(domain.ErrEventNotFound, "get event", err)
	}
	return ev, nil
}

// List returns events newest first, optionally for one coordinator
func (r *PostgresEventRepository) List(ctx context.Context, filter EventFilter) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE $1::text = '' OR coordinator_id = $1::text
		ORDER BY created_at DESC
	`, filter.CoordinatorID)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return collectEvents(rows)
}

// ListOccupying returns events at venueID on date whose status holds the slot
func (r *PostgresEventRepository) ListOccupying(ctx context.Context, venueID, date, excludeID string) ([]*domain.Event, error) {
	statuses := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		statuses[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE venue_id = $1
		  AND event_date = $2::date
		  AND status = ANY($3)
		  AND ($4::text = '' OR id <> $4::text)
		ORDER BY start_time
	`, venueID, date, statuses, excludeID)
	if err != nil {
		return nil, storeErr("list occupying events", err)
	}
	return collectEvents(rows)
}

// Transition performs the status compare-and-set and every write that must
// commit with it. Zero rows on the CAS means the event is gone or another
// transition won.
func (r *PostgresEventRepository) Transition(ctx context.Context, req *TransitionRequest) (*domain.Event, error) {
	entries := []domain.ApprovalEntry{}
	if req.Entry != nil {
		entries = append(entries, *req.Entry)
	}
	entryJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approval entry: %w", err)
	}

	var updated *domain.Event
	err = inTx(ctx, r.pool, "transition event", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE events SET
				status = $3,
				approval_history = approval_history || $4::jsonb,
				updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING `+eventColumns,
			req.EventID, string(req.From), string(req.To), entryJSON)

		ev, err := scanEvent(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.casMiss(ctx, tx, req)
			}
			return storeErr("update event status", err)
		}

		if len(req.Reserve) > 0 {
			if err := reserveTx(ctx, tx, req.Reserve); err != nil {
				return err
			}
		}
		if len(req.Release) > 0 {
			if err := releaseTx(ctx, tx, req.Release); err != nil {
				return err
			}
		}
		if req.Outbox != nil {
			if err := r.outbox.CreateTx(ctx, tx, req.Outbox); err != nil {
				return err
			}
		}
		updated = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresEventRepository) casMiss(ctx context.Context, tx pgx.Tx, req *TransitionRequest) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM events WHERE id = $1`, req.EventID).Scan(&status)
	if err != nil {
		return notFoundOr(domain.ErrEventNotFound, "check event status", err)
	}
	return domain.NewError(domain.ErrInvalidTransition,
		"Event status changed from %s to %s before this update", req.From, status)
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate events", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	ev := &domain.Event{}
	var (
		status    string
		resources []byte
		history   []byte
	)
	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&ev.Department,
		&ev.Date,
		&ev.StartTime,
		&ev.EndTime,
		&ev.Participants,
		&ev.CoordinatorID,
		&ev.VenueID,
		&resources,
		&status,
		&history,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.Status = domain.EventStatus(status)

	ev.Resources = []domain.ResourceLine{}
	if err := json.Unmarshal(resources, &ev.Resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	ev.ApprovalHistory = []domain.ApprovalEntry{}
	if err := json.Unmarshal(history, &ev.ApprovalHistory); err != nil {
		return nil, fmt.Errorf("failed to decode approval history: %w", err)
	}
	return ev, nil
}

var _ EventRepository = (*PostgresEventRepository)(nil)
