package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
)

func newInventory() (*memStore, InventoryService) {
	store := newMemStore()
	return store, NewInventoryService(memVenueRepo{store}, memResourceRepo{store}, logger.NewNop())
}

func TestInventoryService_CreateVenue(t *testing.T) {
	_, svc := newInventory()
	ctx := context.Background()

	v, err := svc.CreateVenue(ctx, &dto.CreateVenueRequest{Name: "Main Auditorium", Capacity: 500})
	require.NoError(t, err)
	assert.Equal(t, 500, v.Capacity)
	assert.NotNil(t, v.AvailabilitySchedule)

	_, err = svc.CreateVenue(ctx, &dto.CreateVenueRequest{Name: "Main Auditorium", Capacity: 10})
	assert.True(t, errors.Is(err, domain.ErrDuplicateName))

	_, err = svc.CreateVenue(ctx, &dto.CreateVenueRequest{Name: "Closet", Capacity: 0})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	venues, err := svc.ListVenues(ctx)
	require.NoError(t, err)
	assert.Len(t, venues, 1)
}

func TestInventoryService_Resources(t *testing.T) {
	store, svc := newInventory()
	ctx := context.Background()

	res, err := svc.CreateResource(ctx, &dto.CreateResourceRequest{Name: "Projector", Type: "equipment", QuantityAvailable: 10})
	require.NoError(t, err)

	_, err = svc.CreateResource(ctx, &dto.CreateResourceRequest{Name: "Drone", Type: "vehicle", QuantityAvailable: 1})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	qty := 4
	updated, err := svc.UpdateResource(ctx, res.ID, &dto.UpdateResourceRequest{QuantityAvailable: &qty})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.QuantityAvailable)
	assert.Equal(t, "Projector", updated.Name)
	assert.Equal(t, 4, store.quantity(res.ID))

	negative := -1
	_, err = svc.UpdateResource(ctx, res.ID, &dto.UpdateResourceRequest{QuantityAvailable: &negative})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, 4, store.quantity(res.ID))

	_, err = svc.UpdateResource(ctx, "missing", &dto.UpdateResourceRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err := svc.ListResources(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConflictDetector(t *testing.T) {
	store := newMemStore()
	store.addVenue("hall", "Hall", 50)
	store.events["a"] = &domain.Event{ID: "a", Title: "Alpha", VenueID: "hall", Date: "2026-11-20", StartTime: "10:00", EndTime: "11:00", Status: domain.StatusRunning}
	store.events["b"] = &domain.Event{ID: "b", Title: "Beta", VenueID: "hall", Date: "2026-11-20", StartTime: "13:00", EndTime: "14:00", Status: domain.StatusCompleted}
	store.events["c"] = &domain.Event{ID: "c", Title: "Gamma", VenueID: "hall", Date: "2026-11-21", StartTime: "10:00", EndTime: "11:00", Status: domain.StatusPending}
	d := NewConflictDetector(memVenueRepo{store}, memEventRepo{store})

	tests := []struct {
		name    string
		req     SlotRequest
		kind    error
		message string
	}{
		{"free slot", SlotRequest{VenueID: "hall", Date: "2026-11-20", StartTime: "11:00", EndTime: "12:00", Participants: 50}, nil, ""},
		{"completed event frees slot", SlotRequest{VenueID: "hall", Date: "2026-11-20", StartTime: "13:30", EndTime: "14:30", Participants: 1}, nil, ""},
		{"other date", SlotRequest{VenueID: "hall", Date: "2026-11-22", StartTime: "10:00", EndTime: "11:00", Participants: 1}, nil, ""},
		{"excluded self", SlotRequest{VenueID: "hall", Date: "2026-11-20", StartTime: "10:00", EndTime: "11:00", Participants: 1, ExcludeEventID: "a"}, nil, ""},
		{"overlap", SlotRequest{VenueID: "hall", Date: "2026-11-20", StartTime: "09:30", EndTime: "10:01", Participants: 1}, domain.ErrSchedulingConflict, "Time conflict with event: Alpha"},
		{"capacity", SlotRequest{VenueID: "hall", Date: "2026-11-20", StartTime: "15:00", EndTime: "16:00", Participants: 51}, domain.ErrCapacityExceeded, "Venue capacity (50) is less than participants (51)"},
		{"no venue", SlotRequest{VenueID: "nope", Date: "2026-11-20", StartTime: "15:00", EndTime: "16:00", Participants: 1}, domain.ErrNotFound, "Venue not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := d.Check(context.Background(), &req)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			assert.Equal(t, tt.message, domain.UserMessage(err))
		})
	}
}
