package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/pkg/database"
)

// EventFilter narrows List. An empty CoordinatorID lists every event.
type EventFilter struct {
	CoordinatorID string
}

// TransitionRequest describes one compare-and-set status change and the
// writes that must commit with it.
type TransitionRequest struct {
	EventID string
	From    domain.EventStatus
	To      domain.EventStatus
	// Entry is appended to approval_history when non-nil
	Entry *domain.ApprovalEntry
	// Reserve lines are decremented all-or-nothing
	Reserve []domain.ResourceLine
	// Release lines are returned to stock
	Release []domain.ResourceLine
	Outbox  *domain.OutboxMessage
}

// EventRepository defines event persistence, including the transactional
// lifecycle transition
type EventRepository interface {
	// Create inserts a Pending event together with its created outbox message
	Create(ctx context.Context, event *domain.Event, msg *domain.OutboxMessage) error

	// GetByID returns domain.ErrEventNotFound when no row matches
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// List returns events newest first
	List(ctx context.Context, filter EventFilter) ([]*domain.Event, error)

	// ListOccupying returns events holding the venue on date, skipping excludeID
	ListOccupying(ctx context.Context, venueID, date, excludeID string) ([]*domain.Event, error)

	// Transition applies req atomically and returns the updated event
	Transition(ctx context.Context, req *TransitionRequest) (*domain.Event, error)
}

// VenueRepository defines venue persistence
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	List(ctx context.Context) ([]*domain.Venue, error)
	// ListByIDs returns the venues among ids that exist, in no particular order
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Venue, error)
}

// ResourceRepository defines resource persistence
type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]*domain.Resource, error)
	// ListByIDs returns the resources among ids that exist, in no particular order
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Resource, error)
	Update(ctx context.Context, resource *domain.Resource) error
}

// OutboxRepository defines outbox access for the relay worker
type OutboxRepository interface {
	// CreateTx inserts a message inside the caller's transaction
	CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error

	// ProcessBatch locks up to limit publishable messages, hands each to fn
	// and records the outcome, all in one transaction
	ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, msg *domain.OutboxMessage) error) (*BatchResult, error)

	// DeletePublished removes published messages older than before
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// BatchResult counts the outcome of one ProcessBatch call
type BatchResult struct {
	Published int
	Failed    int
}

// storeErr wraps a driver error, tagging connection-class failures as
// ErrStoreUnavailable so handlers can answer 503.
func storeErr(action string, err error) error {
	if database.IsUnavailable(err) {
		return fmt.Errorf("failed to %s: %w: %w", action, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// inTx runs fn through database.WithTx. Errors from fn are already
// classified; begin and commit failures go through storeErr here.
func inTx(ctx context.Context, pool *pgxpool.Pool, action string, fn func(tx pgx.Tx) error) error {
	err := database.WithTx(ctx, pool, fn)
	var txErr *database.TxError
	if errors.As(err, &txErr) {
		return storeErr(action, err)
	}
	return err
}

// notFoundOr maps pgx.ErrNoRows to notFound and anything else through storeErr
func notFoundOr(notFound error, action string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return storeErr(action, err)
}
