package occupancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTenantAssigned    = "TenantAssigned"
	EventTypeTenantVacated     = "TenantVacated"
	EventTypeTenantTransferred = "TenantTransferred"
	AggregateTypeTenant        = "Tenant"
)

// TenantAssignedEvent is raised when a tenant moves into a vacant unit
type TenantAssignedEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID       `json:"tenant_id"`
	UnitID     string          `json:"unit_id"`
	Rent       decimal.Decimal `json:"rent"`
	Deposit    decimal.Decimal `json:"deposit"`
	LeaseStart time.Time       `json:"lease_start"`
}

// EventType returns the event type name
func (e *TenantAssignedEvent) EventType() string {
	return EventTypeTenantAssigned
}

// NewTenantAssignedEvent creates a new TenantAssignedEvent
func NewTenantAssignedEvent(t *Tenant) *TenantAssignedEvent {
	return &TenantAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantAssigned, AggregateTypeTenant, t.ID, t.PropertyID),
		TenantID:        t.ID,
		UnitID:          t.UnitID,
		Rent:            t.Rent,
		Deposit:         t.Deposit,
		LeaseStart:      t.LeaseStart,
	}
}

// TenantVacatedEvent is raised when a tenancy ends
type TenantVacatedEvent struct {
	shared.BaseDomainEvent
	TenantID  uuid.UUID `json:"tenant_id"`
	UnitID    string    `json:"unit_id"`
	VacatedAt time.Time `json:"vacated_at"`
}

// EventType returns the event type name
func (e *TenantVacatedEvent) EventType() string {
	return EventTypeTenantVacated
}

// NewTenantVacatedEvent creates a new TenantVacatedEvent
func NewTenantVacatedEvent(t *Tenant) *TenantVacatedEvent {
	ev := &TenantVacatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantVacated, AggregateTypeTenant, t.ID, t.PropertyID),
		TenantID:        t.ID,
		UnitID:          t.UnitID,
	}
	if t.VacatedAt != nil {
		ev.VacatedAt = *t.VacatedAt
	}
	return ev
}

// TenantTransferredEvent is raised when a tenant moves between units
type TenantTransferredEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID `json:"tenant_id"`
	FromUnitID string    `json:"from_unit_id"`
	ToUnitID   string    `json:"to_unit_id"`
}

// EventType returns the event type name
func (e *TenantTransferredEvent) EventType() string {
	return EventTypeTenantTransferred
}

// NewTenantTransferredEvent creates a new TenantTransferredEvent
func NewTenantTransferredEvent(t *Tenant, from string) *TenantTransferredEvent {
	return &TenantTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantTransferred, AggregateTypeTenant, t.ID, t.PropertyID),
		TenantID:        t.ID,
		FromUnitID:      from,
		ToUnitID:        t.UnitID,
	}
}
