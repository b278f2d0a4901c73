package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/metrics"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// EventService defines the interface for the event lifecycle
type EventService interface {
	// CreateEvent submits a new Pending event after a conflict check
	CreateEvent(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error)

	// ListEvents returns the events visible to actor
	ListEvents(ctx context.Context, actor domain.Actor) ([]*domain.Event, error)

	// GetEvent returns one event if it is visible to actor
	GetEvent(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)

	// Approve advances the event one approval step
	Approve(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error)

	// Reject ends the workflow; an empty reason records the default
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error)

	// Start moves an Approved event to Running
	Start(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)

	// Complete moves a Running event to Completed and releases its resources
	Complete(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
}

// EventServiceConfig contains configuration for the event service
type EventServiceConfig struct {
	// Topic receives lifecycle messages through the outbox
	Topic string
	// EnforceOwnership limits start and complete to the event's own coordinator
	EnforceOwnership bool
	// OutboxMaxRetries bounds relay attempts per lifecycle message
	OutboxMaxRetries int
	// Clock overrides time.Now in tests
	Clock func() time.Time
}

type eventService struct {
	events    repository.EventRepository
	venues    repository.VenueRepository
	resources repository.ResourceRepository
	detector  ConflictDetector
	log       *logger.Logger
	topic     string
	ownership bool
	retries   int
	now       func() time.Time
}

// NewEventService creates a new event service
func NewEventService(
	events repository.EventRepository,
	venues repository.VenueRepository,
	resources repository.ResourceRepository,
	detector ConflictDetector,
	log *logger.Logger,
	cfg *EventServiceConfig,
) EventService {
	s := &eventService{
		events:    events,
		venues:    venues,
		resources: resources,
		detector:  detector,
		log:       log,
		topic:     "event-lifecycle",
		retries:   domain.DefaultOutboxMaxRetries,
		now:       time.Now,
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	if cfg != nil {
		if cfg.Topic != "" {
			s.topic = cfg.Topic
		}
		if cfg.Clock != nil {
			s.now = cfg.Clock
		}
		if cfg.OutboxMaxRetries > 0 {
			s.retries = cfg.OutboxMaxRetries
		}
		s.ownership = cfg.EnforceOwnership
	}
	return s
}

func (s *eventService) CreateEvent(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if actor.Role != domain.CreateRole {
		err := domain.NewError(domain.ErrInvalidTransition, "Only an %s can create events", domain.CreateRole)
		return nil, fail(span, err)
	}
	if req == nil {
		return nil, fail(span, domain.Validationf("request body is required"))
	}

	event := req.ToDomain(actor.ID)
	if err := event.Validate(); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("venue_id", event.VenueID),
		attribute.String("date", event.Date),
		attribute.String("department", event.Department),
	)

	if err := s.detector.Check(ctx, &SlotRequest{
		VenueID:      event.VenueID,
		Date:         event.Date,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		Participants: event.Participants,
	}); err != nil {
		metrics.RecordFailure(ctx, "create", failureReason(err))
		return nil, fail(span, err)
	}

	for _, line := range event.Resources {
		if _, err := s.resources.GetByID(ctx, line.ResourceID); err != nil {
			if domain.IsNotFoundError(err) {
				err = domain.NewError(domain.ErrNotFound, "Resource %s not found", line.ResourceID)
			}
			return nil, fail(span, err)
		}
	}

	now := s.now().UTC()
	event.ID = uuid.New().String()
	event.CreatedAt, event.UpdatedAt = now, now

	msg, err := s.outboxMessage(&domain.LifecycleEvent{
		Type:       domain.LifecycleEventCreated,
		EventID:    event.ID,
		Title:      event.Title,
		VenueID:    event.VenueID,
		Date:       event.Date,
		Status:     event.Status,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Resources:  event.Resources,
		OccurredAt: now,
	})
	if err != nil {
		return nil, fail(span, err)
	}

	if err := s.events.Create(ctx, event, msg); err != nil {
		return nil, fail(span, err)
	}

	metrics.RecordCreated(ctx, event.Department)
	s.log.WithContext(ctx).Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("venue_id", event.VenueID),
		zap.String("date", event.Date),
		zap.String("coordinator", actor.ID),
	)

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListEvents applies the visibility policy: coordinators see only their
// own submissions, every other role sees all events.
func (s *eventService) ListEvents(ctx context.Context, actor domain.Actor) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter := repository.EventFilter{}
	if actor.Role == domain.RoleCoordinator {
		filter.CoordinatorID = actor.ID
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.resolveRefs(ctx, events); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(events)))
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if actor.Role == domain.RoleCoordinator && !event.IsOwnedBy(actor.ID) {
		return nil, fail(span, domain.ErrEventNotFound)
	}
	if err := s.resolveRefs(ctx, []*domain.Event{event}); err != nil {
		return nil, fail(span, err)
	}
	return event, nil
}

// resolveRefs attaches each event's venue and requested resources with one
// batched lookup per table. References that no longer exist stay nil.
func (s *eventService) resolveRefs(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var venueIDs, resourceIDs []string
	seen := make(map[string]bool)
	for _, ev := range events {
		if !seen["v:"+ev.VenueID] {
			seen["v:"+ev.VenueID] = true
			venueIDs = append(venueIDs, ev.VenueID)
		}
		for _, l := range ev.Resources {
			if !seen["r:"+l.ResourceID] {
				seen["r:"+l.ResourceID] = true
				resourceIDs = append(resourceIDs, l.ResourceID)
			}
		}
	}

	venues, err := s.venues.ListByIDs(ctx, venueIDs)
	if err != nil {
		return err
	}
	byVenue := make(map[string]*domain.Venue, len(venues))
	for _, v := range venues {
		byVenue[v.ID] = v
	}

	byResource := make(map[string]*domain.Resource)
	if len(resourceIDs) > 0 {
		resources, err := s.resources.ListByIDs(ctx, resourceIDs)
		if err != nil {
			return err
		}
		for _, r := range resources {
			byResource[r.ID] = r
		}
	}

	for _, ev := range events {
		ev.Venue = byVenue[ev.VenueID]
		for i := range ev.Resources {
			ev.Resources[i].Resource = byResource[ev.Resources[i].ResourceID]
		}
	}
	return nil
}

func (s *eventService) Approve(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
	return s.transition(ctx, actor, id, domain.OpApprove, reason)
}

func (s *eventService) Reject(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
	if reason == "" {
		reason = domain.DefaultRejectReason
	}
	return s.transition(ctx, actor, id, domain.OpReject, reason)
}

func (s *eventService) Start(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return s.transition(ctx, actor, id, domain.OpStart, "")
}

func (s *eventService) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	return s.transition(ctx, actor, id, domain.OpComplete, "")
}

// transition drives one row of the workflow table: look the row up,
// apply its pre-commit checks, then hand the compare-and-set with its
// stock and outbox writes to the repository as one unit.
func (s *eventService) transition(ctx context.Context, actor domain.Actor, id string, op domain.Operation, reason string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event."+string(op))
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("role", string(actor.Role)),
	)

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}

	t, err := domain.LookupTransition(event.Status, op, actor.Role)
	if err != nil {
		metrics.RecordFailure(ctx, string(op), "invalid_transition")
		return nil, fail(span, err)
	}

	if s.ownership && (op == domain.OpStart || op == domain.OpComplete) && !event.IsOwnedBy(actor.ID) {
		metrics.RecordFailure(ctx, string(op), "not_owner")
		return nil, fail(span, domain.NewError(domain.ErrInvalidTransition,
			"Only the event's coordinator can %s it", op))
	}

	if t.Effects.Has(domain.EffectRecheckConflict) {
		err := s.detector.Check(ctx, &SlotRequest{
			VenueID:        event.VenueID,
			Date:           event.Date,
			StartTime:      event.StartTime,
			EndTime:        event.EndTime,
			Participants:   event.Participants,
			ExcludeEventID: event.ID,
		})
		if err != nil {
			metrics.RecordFailure(ctx, string(op), failureReason(err))
			return nil, fail(span, domain.WithPrefix(err, "Cannot approve: "))
		}
	}

	now := s.now().UTC()
	req := &repository.TransitionRequest{
		EventID: event.ID,
		From:    t.From,
		To:      t.To,
	}
	if t.Effects.Has(domain.EffectRecordHistory) {
		req.Entry = &domain.ApprovalEntry{
			Role:      actor.Role,
			Decision:  t.Decision(),
			Reason:    reason,
			Timestamp: now,
		}
	}
	if t.Effects.Has(domain.EffectReserve) {
		req.Reserve = event.Resources
	}
	if t.Effects.Has(domain.EffectRelease) {
		req.Release = event.Resources
	}

	req.Outbox, err = s.outboxMessage(&domain.LifecycleEvent{
		Type:           domain.LifecycleEventFor(op),
		EventID:        event.ID,
		Title:          event.Title,
		VenueID:        event.VenueID,
		Date:           event.Date,
		PreviousStatus: t.From,
		Status:         t.To,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		Reason:         reason,
		Resources:      event.Resources,
		OccurredAt:     now,
	})
	if err != nil {
		return nil, fail(span, err)
	}

	updated, err := s.events.Transition(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrResourceUnavailable) {
			metrics.RecordShortage(ctx)
		}
		metrics.RecordFailure(ctx, string(op), failureReason(err))
		s.log.WithContext(ctx).Warn("Event transition failed",
			zap.String("event_id", event.ID),
			zap.String("status", string(event.Status)),
			zap.String("operation", string(op)),
			zap.String("role", string(actor.Role)),
			zap.Error(err),
		)
		return nil, fail(span, err)
	}

	metrics.RecordTransition(ctx, op, updated.Status, now.Sub(event.CreatedAt).Hours())
	s.log.WithContext(ctx).Info("Event transitioned",
		zap.String("event_id", updated.ID),
		zap.String("from", string(t.From)),
		zap.String("status", string(updated.Status)),
		zap.String("role", string(actor.Role)),
		zap.String("actor_id", actor.ID),
	)

	span.SetAttributes(attribute.String("status", string(updated.Status)))
	span.SetStatus(codes.Ok, "")
	return updated, nil
}

func (s *eventService) outboxMessage(ev *domain.LifecycleEvent) (*domain.OutboxMessage, error) {
	msg, err := domain.NewLifecycleOutboxMessage(s.topic, ev)
	if err != nil {
		return nil, err
	}
	msg.MaxRetries = s.retries
	return msg, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrSchedulingConflict):
		return "scheduling_conflict"
	case errors.Is(err, domain.ErrResourceUnavailable):
		return "resource_unavailable"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
