package dto

import (
	"time"

	"github.com/SaicharanT-tech/eventra/internal/domain"
)

// ResourceLineRequest asks for a quantity of one resource
type ResourceLineRequest struct {
	ResourceID string `json:"resourceId" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// CreateEventRequest represents a coordinator's event submission
type CreateEventRequest struct {
	Title        string                `json:"title" binding:"required"`
	Department   string                `json:"department" binding:"required"`
	Date         string                `json:"date" binding:"required"`
	StartTime    string                `json:"startTime" binding:"required"`
	EndTime      string                `json:"endTime" binding:"required"`
	Participants int                   `json:"participants"`
	VenueID      string                `json:"venueId" binding:"required"`
	Resources    []ResourceLineRequest `json:"resources" binding:"omitempty,dive"`
}

// ToDomain builds a Pending event owned by coordinatorID
func (r *CreateEventRequest) ToDomain(coordinatorID string) *domain.Event {
	lines := make([]domain.ResourceLine, 0, len(r.Resources))
	for _, l := range r.Resources {
		lines = append(lines, domain.ResourceLine{ResourceID: l.ResourceID, Quantity: l.Quantity})
	}
	return &domain.Event{
		Title:           r.Title,
		Department:      r.Department,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Participants:    r.Participants,
		CoordinatorID:   coordinatorID,
		VenueID:         r.VenueID,
		Resources:       lines,
		Status:          domain.StatusPending,
		ApprovalHistory: []domain.ApprovalEntry{},
	}
}

// DecisionRequest carries the optional reason for approve and reject
type DecisionRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ReasonOr returns the supplied reason, or def when none was sent
func (r *DecisionRequest) ReasonOr(def string) string {
	if r == nil || r.Reason == nil || *r.Reason == "" {
		return def
	}
	return *r.Reason
}

// ApprovalEntryResponse is one line of the audit trail
type ApprovalEntryResponse struct {
	Role      string    `json:"role"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// VenueSummary is the venue embedded in an event
type VenueSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// ResourceSummary is the resource embedded in a requested line
type ResourceSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResourceLineResponse mirrors a requested resource line
type ResourceLineResponse struct {
	ResourceID string           `json:"resourceId"`
	Quantity   int              `json:"quantity"`
	Resource   *ResourceSummary `json:"resource,omitempty"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Department      string                  `json:"department"`
	Date            string                  `json:"date"`
	StartTime       string                  `json:"startTime"`
	EndTime         string                  `json:"endTime"`
	Participants    int                     `json:"participants"`
	Coordinator     string                  `json:"coordinator"`
	VenueID         string                  `json:"venueId"`
	Venue           *VenueSummary           `json:"venue,omitempty"`
	Resources       []ResourceLineResponse  `json:"resources"`
	Status          string                  `json:"status"`
	ApprovalHistory []ApprovalEntryResponse `json:"approvalHistory"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// FromEvent converts a domain Event to EventResponse
func FromEvent(e *domain.Event) *EventResponse {
	resp := &EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Department:      e.Department,
		Date:            e.Date,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Participants:    e.Participants,
		Coordinator:     e.CoordinatorID,
		VenueID:         e.VenueID,
		Resources:       make([]ResourceLineResponse, 0, len(e.Resources)),
		Status:          string(e.Status),
		ApprovalHistory: make([]ApprovalEntryResponse, 0, len(e.ApprovalHistory)),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.Venue != nil {
		resp.Venue = &VenueSummary{ID: e.Venue.ID, Name: e.Venue.Name, Capacity: e.Venue.Capacity}
	}
	for _, l := range e.Resources {
		line := ResourceLineResponse{ResourceID: l.ResourceID, Quantity: l.Quantity}
		if l.Resource != nil {
			line.Resource = &ResourceSummary{ID: l.Resource.ID, Name: l.Resource.Name, Type: string(l.Resource.Type)}
		}
		resp.Resources = append(resp.Resources, line)
	}
	for _, h := range e.ApprovalHistory {
		resp.ApprovalHistory = append(resp.ApprovalHistory, ApprovalEntryResponse{
			Role:      string(h.Role),
			Decision:  string(h.Decision),
			Reason:    h.Reason,
			Timestamp: h.Timestamp,
		})
	}
	return resp
}

// FromEvents converts a slice of events
func FromEvents(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return out
}
