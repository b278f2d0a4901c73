package domain

import (
	"strings"
	"time"
)

// TimeRange is an HH:MM interval inside a venue availability block
type TimeRange struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AvailabilityBlock lists the windows a venue is open on a given date.
// It is informational; conflict checks use the event table only.
type AvailabilityBlock struct {
	Date  string      `json:"date"`
	Times []TimeRange `json:"times"`
}

// Venue is a bookable room
type Venue struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Capacity             int                 `json:"capacity"`
	AvailabilitySchedule []AvailabilityBlock `json:"availabilitySchedule"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// Validate checks venue fields
func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return Validationf("venue name is required")
	}
	if v.Capacity <= 0 {
		return Validationf("venue capacity must be greater than zero")
	}
	for _, b := range v.AvailabilitySchedule {
		if !IsDate(b.Date) {
			return Validationf("availability date %q must be YYYY-MM-DD", b.Date)
		}
		for _, t := range b.Times {
			if !IsClockTime(t.StartTime) || !IsClockTime(t.EndTime) || t.StartTime >= t.EndTime {
				return Validationf("availability window %s-%s is invalid", t.StartTime, t.EndTime)
			}
		}
	}
	return nil
}

// ResourceType classifies shared resources
type ResourceType string

const (
	ResourceEquipment ResourceType = "equipment"
	ResourceFacility  ResourceType = "facility"
	ResourceITC       ResourceType = "ITC"
	ResourceFood      ResourceType = "food"
)

// IsValid checks if the resource type is known
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceEquipment, ResourceFacility, ResourceITC, ResourceFood:
		return true
	}
	return false
}

// Resource is a pooled item whose available quantity is reserved on final
// approval and released on completion
type Resource struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Type              ResourceType `json:"type"`
	QuantityAvailable int          `json:"quantityAvailable"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Validate checks resource fields
func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Validationf("resource name is required")
	}
	if !r.Type.IsValid() {
		return Validationf("resource type must be one of equipment, facility, ITC, food")
	}
	if r.QuantityAvailable < 0 {
		return Validationf("quantityAvailable cannot be negative")
	}
	return nil
}
