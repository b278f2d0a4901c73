package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/metrics"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// SlotRequest is a prospective booking of a venue
type SlotRequest struct {
	VenueID      string
	Date         string
	StartTime    string
	EndTime      string
	Participants int
	// ExcludeEventID skips the event being re-checked
	ExcludeEventID string
}

// ConflictDetector decides whether a slot can be booked. It only reads.
type ConflictDetector interface {
	Check(ctx context.Context, req *SlotRequest) error
}

type conflictDetector struct {
	venues repository.VenueRepository
	events repository.EventRepository
}

// NewConflictDetector creates a detector over the venue and event stores
func NewConflictDetector(venues repository.VenueRepository, events repository.EventRepository) ConflictDetector {
	return &conflictDetector{venues: venues, events: events}
}

// Check returns NotFound for an unknown venue, CapacityExceeded when the
// venue is too small, and SchedulingConflict naming the first occupying
// event whose interval overlaps the request.
func (d *conflictDetector) Check(ctx context.Context, req *SlotRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.conflict.check")
	defer span.End()

	span.SetAttributes(
		attribute.String("venue_id", req.VenueID),
		attribute.String("date", req.Date),
		attribute.String("start_time", req.StartTime),
		attribute.String("end_time", req.EndTime),
	)

	venue, err := d.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "venue lookup failed")
		return err
	}

	if venue.Capacity < req.Participants {
		metrics.RecordConflict(ctx, venue.ID, "capacity")
		span.SetStatus(codes.Error, "capacity exceeded")
		return domain.NewError(domain.ErrCapacityExceeded,
			"Venue capacity (%d) is less than participants (%d)", venue.Capacity, req.Participants)
	}

	occupying, err := d.events.ListOccupying(ctx, req.VenueID, req.Date, req.ExcludeEventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list occupying events failed")
		return err
	}

	for _, ev := range occupying {
		if domain.Overlaps(req.StartTime, req.EndTime, ev.StartTime, ev.EndTime) {
			metrics.RecordConflict(ctx, venue.ID, "time")
			span.SetAttributes(attribute.String("conflict_event_id", ev.ID))
			span.SetStatus(codes.Error, "time conflict")
			return domain.NewError(domain.ErrSchedulingConflict, "Time conflict with event: %s", ev.Title)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
