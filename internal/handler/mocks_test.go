package handler

import (
	"context"
	"errors"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/service"
)

var errNotStubbed = errors.New("not stubbed")

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	CreateEventFunc func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error)
	ListEventsFunc  func(ctx context.Context, actor domain.Actor) ([]*domain.Event, error)
	GetEventFunc    func(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
	ApproveFunc     func(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error)
	RejectFunc      func(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error)
	StartFunc       func(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
	CompleteFunc    func(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)
}

func (m *MockEventService) CreateEvent(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, actor, req)
	}
	return nil, errNotStubbed
}

func (m *MockEventService) ListEvents(ctx context.Context, actor domain.Actor) ([]*domain.Event, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, actor)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventService) GetEvent(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, actor, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventService) Approve(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, actor, id, reason)
	}
	return nil, errNotStubbed
}

func (m *MockEventService) Reject(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, actor, id, reason)
	}
	return nil, errNotStubbed
}

func (m *MockEventService) Start(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, actor, id)
	}
	return nil, errNotStubbed
}

func (m *MockEventService) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, actor, id)
	}
	return nil, errNotStubbed
}

// MockInventoryService is a mock implementation of InventoryService for testing
type MockInventoryService struct {
	ListVenuesFunc     func(ctx context.Context) ([]*domain.Venue, error)
	CreateVenueFunc    func(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error)
	ListResourcesFunc  func(ctx context.Context) ([]*domain.Resource, error)
	CreateResourceFunc func(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error)
	UpdateResourceFunc func(ctx context.Context, id string, req *dto.UpdateResourceRequest) (*domain.Resource, error)
}

func (m *MockInventoryService) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	if m.ListVenuesFunc != nil {
		return m.ListVenuesFunc(ctx)
	}
	return []*domain.Venue{}, nil
}

func (m *MockInventoryService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	if m.CreateVenueFunc != nil {
		return m.CreateVenueFunc(ctx, req)
	}
	return nil, errNotStubbed
}

func (m *MockInventoryService) ListResources(ctx context.Context) ([]*domain.Resource, error) {
	if m.ListResourcesFunc != nil {
		return m.ListResourcesFunc(ctx)
	}
	return []*domain.Resource{}, nil
}

func (m *MockInventoryService) CreateResource(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error) {
	if m.CreateResourceFunc != nil {
		return m.CreateResourceFunc(ctx, req)
	}
	return nil, errNotStubbed
}

func (m *MockInventoryService) UpdateResource(ctx context.Context, id string, req *dto.UpdateResourceRequest) (*domain.Resource, error) {
	if m.UpdateResourceFunc != nil {
		return m.UpdateResourceFunc(ctx, id, req)
	}
	return nil, errNotStubbed
}

var (
	_ service.EventService     = (*MockEventService)(nil)
	_ service.InventoryService = (*MockInventoryService)(nil)
)
