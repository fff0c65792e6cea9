package property

import (
	"github.com/rentledger/backend/internal/domain/shared"
)

const (
	EventTypePropertyCreated = "PropertyCreated"
	AggregateTypeProperty    = "Property"
)

// PropertyCreatedEvent is raised when a property is registered
type PropertyCreatedEvent struct {
	shared.BaseDomainEvent
	Name        string      `json:"name"`
	WaterMethod WaterMethod `json:"water_method"`
	UnitCount   int         `json:"unit_count"`
}

// EventType returns the event type name
func (e *PropertyCreatedEvent) EventType() string {
	return EventTypePropertyCreated
}

// NewPropertyCreatedEvent creates a new PropertyCreatedEvent
func NewPropertyCreatedEvent(p *Property, unitCount int) *PropertyCreatedEvent {
	return &PropertyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyCreated, AggregateTypeProperty, p.ID, p.ID),
		Name:            p.Name,
		WaterMethod:     p.Utilities.WaterMethod,
		UnitCount:       unitCount,
	}
}

var _ shared.DomainEvent = (*PropertyCreatedEvent)(nil)
