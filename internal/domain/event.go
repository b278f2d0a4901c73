package domain

import (
	"strings"
	"time"
)

// EventStatus is a position in the approval workflow
type EventStatus string

const (
	StatusPending      EventStatus = "Pending"
	StatusHODApproved  EventStatus = "HOD Approved"
	StatusDeanApproved EventStatus = "Dean Approved"
	StatusApproved     EventStatus = "Approved"
	StatusRejected     EventStatus = "Rejected"
	StatusRunning      EventStatus = "Running"
	StatusCompleted    EventStatus = "Completed"
)

// OccupyingStatuses hold a venue slot for double-booking checks
var OccupyingStatuses = []EventStatus{
	StatusPending,
	StatusHODApproved,
	StatusDeanApproved,
	StatusApproved,
	StatusRunning,
}

// IsValid checks if the status is known
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusHODApproved, StatusDeanApproved, StatusApproved,
		StatusRejected, StatusRunning, StatusCompleted:
		return true
	}
	return false
}

// IsOccupying reports whether an event in this status blocks its venue slot
func (s EventStatus) IsOccupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s EventStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

func (s EventStatus) String() string {
	return string(s)
}

// Decision is the outcome recorded in the approval history
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

// DefaultRejectReason is recorded when a rejection carries no reason
const DefaultRejectReason = "No reason provided"

// ApprovalEntry is one immutable line of the approval audit trail
type ApprovalEntry struct {
	Role      Role      `json:"role"`
	Decision  Decision  `json:"decision"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ResourceLine is a requested quantity of one resource
type ResourceLine struct {
	ResourceID string `json:"resourceId"`
	Quantity   int    `json:"quantity"`

	// Resource is resolved on reads and never stored with the line
	Resource *Resource `json:"-"`
}

// Event is an institutional event moving through the approval workflow
type Event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Department      string          `json:"department"`
	Date            string          `json:"date"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Participants    int             `json:"participants"`
	CoordinatorID   string          `json:"coordinator"`
	VenueID         string          `json:"venueId"`
	Resources       []ResourceLine  `json:"resources"`
	Status          EventStatus     `json:"status"`
	ApprovalHistory []ApprovalEntry `json:"approvalHistory"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Venue is resolved on list and get; nil elsewhere
	Venue *Venue `json:"-"`
}

// Validate checks the request-time invariants of a new event
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return Validationf("title is required")
	}
	if strings.TrimSpace(e.Department) == "" {
		return Validationf("department is required")
	}
	if !IsDate(e.Date) {
		return Validationf("date must be a valid YYYY-MM-DD date")
	}
	if !IsClockTime(e.StartTime) || !IsClockTime(e.EndTime) {
		return Validationf("startTime and endTime must be HH:MM")
	}
	if e.StartTime >= e.EndTime {
		return Validationf("startTime must be before endTime")
	}
	if e.Participants <= 0 {
		return Validationf("participants must be greater than zero")
	}
	if e.VenueID == "" {
		return Validationf("venueId is required")
	}
	if e.CoordinatorID == "" {
		return Validationf("coordinator is required")
	}
	return ValidateResourceLines(e.Resources)
}

// ValidateResourceLines enforces positive quantities and one line per resource
func ValidateResourceLines(lines []ResourceLine) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.ResourceID == "" {
			return Validationf("resourceId is required")
		}
		if l.Quantity <= 0 {
			return Validationf("quantity for resource %s must be greater than zero", l.ResourceID)
		}
		if _, dup := seen[l.ResourceID]; dup {
			return Validationf("resource %s requested more than once", l.ResourceID)
		}
		seen[l.ResourceID] = struct{}{}
	}
	return nil
}

// IsOwnedBy reports whether actorID created the event
func (e *Event) IsOwnedBy(actorID string) bool {
	return e.CoordinatorID == actorID
}
