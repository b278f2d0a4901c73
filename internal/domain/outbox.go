package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// LifecycleEventType names a message on the event-lifecycle topic
type LifecycleEventType string

const (
	LifecycleEventCreated   LifecycleEventType = "event.created"
	LifecycleEventApproved  LifecycleEventType = "event.approved"
	LifecycleEventRejected  LifecycleEventType = "event.rejected"
	LifecycleEventStarted   LifecycleEventType = "event.started"
	LifecycleEventCompleted LifecycleEventType = "event.completed"
)

// LifecycleEventFor maps a transition to the message it emits
func LifecycleEventFor(op Operation) LifecycleEventType {
	switch op {
	case OpReject:
		return LifecycleEventRejected
	case OpStart:
		return LifecycleEventStarted
	case OpComplete:
		return LifecycleEventCompleted
	default:
		return LifecycleEventApproved
	}
}

// LifecycleEvent is the JSON payload published for each transition
type LifecycleEvent struct {
	ID             string             `json:"id"`
	Type           LifecycleEventType `json:"type"`
	EventID        string             `json:"eventId"`
	Title          string             `json:"title"`
	VenueID        string             `json:"venueId"`
	Date           string             `json:"date"`
	PreviousStatus EventStatus        `json:"previousStatus,omitempty"`
	Status         EventStatus        `json:"status"`
	ActorID        string             `json:"actorId"`
	ActorRole      Role               `json:"actorRole"`
	Reason         string             `json:"reason,omitempty"`
	Resources      []ResourceLine     `json:"resources,omitempty"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// OutboxMessage is a row of the transactional outbox
type OutboxMessage struct {
	ID            string       `json:"id"`
	AggregateType string       `json:"aggregate_type"`
	AggregateID   string       `json:"aggregate_id"`
	EventType     string       `json:"event_type"`
	Payload       []byte       `json:"payload"`
	Topic         string       `json:"topic"`
	PartitionKey  string       `json:"partition_key"`
	Status        OutboxStatus `json:"status"`
	RetryCount    int          `json:"retry_count"`
	MaxRetries    int          `json:"max_retries"`
	LastError     string       `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
}

// DefaultOutboxMaxRetries bounds publish attempts per message
const DefaultOutboxMaxRetries = 5

// NewLifecycleOutboxMessage wraps a lifecycle event for the outbox, keyed
// by event id so all transitions of one event stay ordered in a partition.
func NewLifecycleOutboxMessage(topic string, ev *LifecycleEvent) (*OutboxMessage, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		ID:            uuid.New().String(),
		AggregateType: "event",
		AggregateID:   ev.EventID,
		EventType:     string(ev.Type),
		Payload:       payload,
		Topic:         topic,
		PartitionKey:  ev.EventID,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultOutboxMaxRetries,
		CreatedAt:     ev.OccurredAt,
	}, nil
}

// CanRetry reports whether a failed message may be published again
func (m *OutboxMessage) CanRetry() bool {
	return m.RetryCount < m.MaxRetries
}

// MarkAsPublished records a successful publish
func (m *OutboxMessage) MarkAsPublished(at time.Time) {
	m.Status = OutboxStatusPublished
	m.PublishedAt = &at
}

// MarkAsFailed records a failed publish attempt
func (m *OutboxMessage) MarkAsFailed(err string) {
	m.Status = OutboxStatusFailed
	m.LastError = err
	m.RetryCount++
}
