package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps of a ledger record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh id and stamps both timestamps with now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds an optimistic-lock version and a buffer of events
// raised since the aggregate was loaded. Version starts at 1 and is bumped
// by every mutation the repository persists.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	pending []DomainEvent
}

// NewBaseAggregateRoot returns a version 1 root with a new identity
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// PropertyAggregateRoot is a root owned by one rental property. Tenants,
// readings, bills, invoices, payments and expenses are all scoped this way.
type PropertyAggregateRoot struct {
	BaseAggregateRoot
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func NewPropertyAggregateRoot(propertyID uuid.UUID) PropertyAggregateRoot {
	return PropertyAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), PropertyID: propertyID}
}

// EventSource is any aggregate that buffers domain events
type EventSource interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// CollectEvents drains the buffered events of sources, preserving order.
// Services call it after a transaction commits and publish the result.
func CollectEvents(sources ...EventSource) []DomainEvent {
	var events []DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	return events
}
