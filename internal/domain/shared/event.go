package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate. Every event belongs to
// exactly one property.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	PropertyID() uuid.UUID
}

// BaseDomainEvent holds the envelope shared by all ledger events. Concrete
// events embed it and usually override EventType with a constant.
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Time       time.Time `json:"timestamp"`
	Source     uuid.UUID `json:"aggregate_id"`
	SourceType string    `json:"aggregate_type"`
	Property   uuid.UUID `json:"property_id"`
}

// NewBaseDomainEvent stamps a new event raised by aggregate aggID
func NewBaseDomainEvent(eventType, aggType string, aggID, propertyID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Time:       time.Now(),
		Source:     aggID,
		SourceType: aggType,
		Property:   propertyID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Time }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Source }
func (e *BaseDomainEvent) AggregateType() string  { return e.SourceType }
func (e *BaseDomainEvent) PropertyID() uuid.UUID  { return e.Property }
