package invoicing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	EventTypeInvoiceIssued        = "InvoiceIssued"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceSent          = "InvoiceSent"
	AggregateTypeInvoice          = "Invoice"
)

// Status change reasons
const (
	StatusChangeManual   = "manual"
	StatusChangePayment  = "payment"
	StatusChangeDeadline = "deadline"
)

// InvoiceIssuedEvent is raised when a bill becomes an invoice
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string             `json:"invoice_number"`
	BillID        uuid.UUID          `json:"bill_id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	Period        valueobject.Period `json:"period"`
	TotalDue      decimal.Decimal    `json:"total_due"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return EventTypeInvoiceIssued
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID, inv.PropertyID),
		InvoiceNumber:   inv.InvoiceNumber,
		BillID:          inv.BillID,
		TenantID:        inv.TenantID,
		Period:          inv.Period,
		TotalDue:        inv.TotalDue,
	}
}

// InvoiceStatusChangedEvent is raised on every status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string        `json:"invoice_number"`
	From          InvoiceStatus `json:"from"`
	To            InvoiceStatus `json:"to"`
	Reason        string        `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceStatusChangedEvent) EventType() string {
	return EventTypeInvoiceStatusChanged
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from, to InvoiceStatus, reason string) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID, inv.PropertyID),
		InvoiceNumber:   inv.InvoiceNumber,
		From:            from,
		To:              to,
		Reason:          reason,
	}
}

// InvoiceSentEvent is raised when a delivery is recorded
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string  `json:"invoice_number"`
	Channel       Channel `json:"channel"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return EventTypeInvoiceSent
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice, channel Channel) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, inv.ID, inv.PropertyID),
		InvoiceNumber:   inv.InvoiceNumber,
		Channel:         channel,
	}
}
