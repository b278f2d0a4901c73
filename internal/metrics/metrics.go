package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

var (
	// Lifecycle counters
	EventsCreated     *telemetry.Counter
	EventTransitions  *telemetry.Counter
	TransitionsFailed *telemetry.Counter

	// Schedule and stock pressure
	ConflictsDetected  *telemetry.Counter
	ResourceShortages  *telemetry.Counter
	OutboxPublished    *telemetry.Counter
	OutboxPublishFails *telemetry.Counter

	// ApprovalLatency measures creation to final approval, in hours
	ApprovalLatency *telemetry.Histogram

	// ReservedEvents tracks events holding stock (Approved or Running)
	ReservedEvents *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init registers all lifecycle metrics on the global meter
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		dst  **telemetry.Counter
		opts telemetry.MetricOpts
	}{
		{&EventsCreated, telemetry.MetricOpts{Name: "eventra_events_created_total", Description: "Events submitted by coordinators", Unit: "1"}},
		{&EventTransitions, telemetry.MetricOpts{Name: "eventra_event_transitions_total", Description: "Successful lifecycle transitions by operation", Unit: "1"}},
		{&TransitionsFailed, telemetry.MetricOpts{Name: "eventra_event_transition_failures_total", Description: "Rejected lifecycle requests by operation and reason", Unit: "1"}},
		{&ConflictsDetected, telemetry.MetricOpts{Name: "eventra_conflicts_total", Description: "Capacity or time conflicts found by the detector", Unit: "1"}},
		{&ResourceShortages, telemetry.MetricOpts{Name: "eventra_resource_shortages_total", Description: "Final approvals blocked by insufficient stock", Unit: "1"}},
		{&OutboxPublished, telemetry.MetricOpts{Name: "eventra_outbox_published_total", Description: "Outbox messages published to Kafka", Unit: "1"}},
		{&OutboxPublishFails, telemetry.MetricOpts{Name: "eventra_outbox_failures_total", Description: "Outbox publish attempts that failed", Unit: "1"}},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(c.opts)
		if err != nil {
			return err
		}
		*c.dst = counter
	}

	var err error
	ApprovalLatency, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "eventra_approval_latency_hours",
		Description: "Time from submission to final approval",
		Unit:        "h",
	}, []float64{1, 4, 12, 24, 48, 96, 168, 336})
	if err != nil {
		return err
	}

	ReservedEvents, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "eventra_reserved_events",
		Description: "Events currently holding reserved resources",
		Unit:        "1",
	})
	return err
}

// RecordCreated records a newly submitted event
func RecordCreated(ctx context.Context, department string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx, attribute.String("department", department))
	}
}

// RecordTransition records a committed transition. Stock-holding gauges
// move on final approval and completion.
func RecordTransition(ctx context.Context, op domain.Operation, to domain.EventStatus, hoursSinceCreate float64) {
	if EventTransitions != nil {
		EventTransitions.Inc(ctx,
			attribute.String("operation", string(op)),
			attribute.String("status", string(to)),
		)
	}
	switch to {
	case domain.StatusApproved:
		if ApprovalLatency != nil {
			ApprovalLatency.Record(ctx, hoursSinceCreate)
		}
		if ReservedEvents != nil {
			ReservedEvents.Inc(ctx)
		}
	case domain.StatusCompleted:
		if ReservedEvents != nil {
			ReservedEvents.Dec(ctx)
		}
	}
}

// RecordFailure records a refused lifecycle request
func RecordFailure(ctx context.Context, op string, reason string) {
	if TransitionsFailed != nil {
		TransitionsFailed.Inc(ctx,
			attribute.String("operation", op),
			attribute.String("reason", reason),
		)
	}
}

// RecordConflict records a detector hit; kind is "capacity" or "time"
func RecordConflict(ctx context.Context, venueID, kind string) {
	if ConflictsDetected != nil {
		ConflictsDetected.Inc(ctx,
			attribute.String("venue_id", venueID),
			attribute.String("kind", kind),
		)
	}
}

// RecordShortage records a reservation refused for lack of stock
func RecordShortage(ctx context.Context) {
	if ResourceShortages != nil {
		ResourceShortages.Inc(ctx)
	}
}

// RecordOutbox records relay results for one batch
func RecordOutbox(ctx context.Context, published, failed int) {
	if OutboxPublished != nil && published > 0 {
		OutboxPublished.Add(ctx, int64(published))
	}
	if OutboxPublishFails != nil && failed > 0 {
		OutboxPublishFails.Add(ctx, int64(failed))
	}
}
