package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a session or checkout that other parts of
// the storefront react to. AggregateID names the session or checkout the
// event belongs to and is also the partition key on the broker.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
}

// BaseDomainEvent is embedded by concrete events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     string    `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() string   { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string { return e.AggType }

// NewBaseDomainEvent stamps a fresh random ID and the current time
func NewBaseDomainEvent(eventType, aggType, aggID string) BaseDomainEvent {
	return NewBaseDomainEventWithID(uuid.New(), eventType, aggType, aggID)
}

// NewBaseDomainEventWithID is NewBaseDomainEvent with a caller-chosen ID.
// Events that may be raised again for the same fact (a resumed checkout)
// pass a name-derived ID so consumers can drop the repeat.
func NewBaseDomainEventWithID(id uuid.UUID, eventType, aggType, aggID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		AggID:     aggID,
		AggType:   aggType,
	}
}
