package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// InventoryService manages venues and resources
type InventoryService interface {
	ListVenues(ctx context.Context) ([]*domain.Venue, error)
	CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error)
	ListResources(ctx context.Context) ([]*domain.Resource, error)
	CreateResource(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error)
	UpdateResource(ctx context.Context, id string, req *dto.UpdateResourceRequest) (*domain.Resource, error)
}

type inventoryService struct {
	venues    repository.VenueRepository
	resources repository.ResourceRepository
	log       *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(venues repository.VenueRepository, resources repository.ResourceRepository, log *logger.Logger) InventoryService {
	if log == nil {
		log = logger.Get()
	}
	return &inventoryService{venues: venues, resources: resources, log: log}
}

func (s *inventoryService) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.list_venues")
	defer span.End()

	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return venues, nil
}

func (s *inventoryService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.create_venue")
	defer span.End()

	venue := req.ToDomain()
	if err := venue.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("venue_id", venue.ID))
	s.log.WithContext(ctx).Info("Venue created",
		zap.String("venue_id", venue.ID),
		zap.String("name", venue.Name),
		zap.Int("capacity", venue.Capacity),
	)
	return venue, nil
}

func (s *inventoryService) ListResources(ctx context.Context) ([]*domain.Resource, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.list_resources")
	defer span.End()

	resources, err := s.resources.List(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return resources, nil
}

func (s *inventoryService) CreateResource(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.create_resource")
	defer span.End()

	res := req.ToDomain()
	if err := res.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("resource_id", res.ID))
	s.log.WithContext(ctx).Info("Resource created",
		zap.String("resource_id", res.ID),
		zap.String("name", res.Name),
		zap.Int("quantity", res.QuantityAvailable),
	)
	return res, nil
}

// UpdateResource overlays the request on the stored resource. Setting
// quantityAvailable here is a stock correction; in-flight reservations are
// not recomputed.
func (s *inventoryService) UpdateResource(ctx context.Context, id string, req *dto.UpdateResourceRequest) (*domain.Resource, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.update_resource")
	defer span.End()
	span.SetAttributes(attribute.String("resource_id", id))

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	req.Apply(res)
	if err := res.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := s.resources.Update(ctx, res); err != nil {
		return nil, fail(span, err)
	}

	s.log.WithContext(ctx).Info("Resource updated",
		zap.String("resource_id", res.ID),
		zap.Int("quantity", res.QuantityAvailable),
	)
	return res, nil
}
