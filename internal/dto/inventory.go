package dto

import (
	"time"

	"github.com/SaicharanT-tech/eventra/internal/domain"
)

// CreateVenueRequest represents request to register a venue
type CreateVenueRequest struct {
	Name                 string                     `json:"name" binding:"required"`
	Capacity             int                        `json:"capacity"`
	AvailabilitySchedule []domain.AvailabilityBlock `json:"availabilitySchedule"`
}

// ToDomain converts the request to a Venue
func (r *CreateVenueRequest) ToDomain() *domain.Venue {
	schedule := r.AvailabilitySchedule
	if schedule == nil {
		schedule = []domain.AvailabilityBlock{}
	}
	return &domain.Venue{Name: r.Name, Capacity: r.Capacity, AvailabilitySchedule: schedule}
}

// VenueResponse represents a venue in API responses
type VenueResponse struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	Capacity             int                        `json:"capacity"`
	AvailabilitySchedule []domain.AvailabilityBlock `json:"availabilitySchedule"`
	CreatedAt            time.Time                  `json:"createdAt"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
}

// FromVenue converts a domain Venue to VenueResponse
func FromVenue(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:                   v.ID,
		Name:                 v.Name,
		Capacity:             v.Capacity,
		AvailabilitySchedule: v.AvailabilitySchedule,
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
}

// CreateResourceRequest represents request to register a resource
type CreateResourceRequest struct {
	Name              string `json:"name" binding:"required"`
	Type              string `json:"type" binding:"required"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

// ToDomain converts the request to a Resource
func (r *CreateResourceRequest) ToDomain() *domain.Resource {
	return &domain.Resource{
		Name:              r.Name,
		Type:              domain.ResourceType(r.Type),
		QuantityAvailable: r.QuantityAvailable,
	}
}

// UpdateResourceRequest is a partial update; absent fields keep their value
type UpdateResourceRequest struct {
	Name              *string `json:"name,omitempty"`
	Type              *string `json:"type,omitempty"`
	QuantityAvailable *int    `json:"quantityAvailable,omitempty"`
}

// Apply overlays the request on res
func (r *UpdateResourceRequest) Apply(res *domain.Resource) {
	if r.Name != nil {
		res.Name = *r.Name
	}
	if r.Type != nil {
		res.Type = domain.ResourceType(*r.Type)
	}
	if r.QuantityAvailable != nil {
		res.QuantityAvailable = *r.QuantityAvailable
	}
}

// ResourceResponse represents a resource in API responses
type ResourceResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	QuantityAvailable int       `json:"quantityAvailable"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// FromResource converts a domain Resource to ResourceResponse
func FromResource(r *domain.Resource) *ResourceResponse {
	return &ResourceResponse{
		ID:                r.ID,
		Name:              r.Name,
		Type:              string(r.Type),
		QuantityAvailable: r.QuantityAvailable,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
