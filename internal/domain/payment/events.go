package payment

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	EventTypePaymentRecorded = "PaymentRecorded"
	AggregateTypePayment     = "Payment"
)

// PaymentRecordedEvent is raised once a payment is committed
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	TenantID uuid.UUID          `json:"tenant_id"`
	UnitID   string             `json:"unit_id"`
	Period   valueobject.Period `json:"period"`
	Amount   decimal.Decimal    `json:"amount"`
	Type     PaymentType        `json:"type"`
	Method   Method             `json:"method"`
	BillID   *uuid.UUID         `json:"bill_id,omitempty"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.PropertyID),
		TenantID:        p.TenantID,
		UnitID:          p.UnitID,
		Period:          p.Period,
		Amount:          p.Amount,
		Type:            p.Type,
		Method:          p.Method,
		BillID:          p.BillID,
	}
}
