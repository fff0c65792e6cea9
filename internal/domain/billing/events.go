package billing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	EventTypeBillGenerated      = "BillGenerated"
	EventTypeBillPaymentApplied = "BillPaymentApplied"
	AggregateTypeBill           = "Bill"
)

// BillGeneratedEvent is raised when the engine creates a bill
type BillGeneratedEvent struct {
	shared.BaseDomainEvent
	TenantID           uuid.UUID          `json:"tenant_id"`
	UnitID             string             `json:"unit_id"`
	Period             valueobject.Period `json:"period"`
	TotalDue           decimal.Decimal    `json:"total_due"`
	CarriedBalance     decimal.Decimal    `json:"carried_balance"`
	CarriedOverpayment decimal.Decimal    `json:"carried_overpayment"`
}

// EventType returns the event type name
func (e *BillGeneratedEvent) EventType() string {
	return EventTypeBillGenerated
}

// NewBillGeneratedEvent creates a new BillGeneratedEvent
func NewBillGeneratedEvent(b *Bill) *BillGeneratedEvent {
	return &BillGeneratedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeBillGenerated, AggregateTypeBill, b.ID, b.PropertyID),
		TenantID:           b.TenantID,
		UnitID:             b.UnitID,
		Period:             b.Period,
		TotalDue:           b.TotalDue,
		CarriedBalance:     b.CarriedBalance,
		CarriedOverpayment: b.CarriedOverpayment,
	}
}

// BillPaymentAppliedEvent is raised when a rent payment changes a bill
type BillPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	TenantID         uuid.UUID          `json:"tenant_id"`
	Period           valueobject.Period `json:"period"`
	Amount           decimal.Decimal    `json:"amount"`
	PaymentsReceived decimal.Decimal    `json:"payments_received"`
	Balance          decimal.Decimal    `json:"balance"`
	Overpayment      decimal.Decimal    `json:"overpayment"`
}

// EventType returns the event type name
func (e *BillPaymentAppliedEvent) EventType() string {
	return EventTypeBillPaymentApplied
}

// NewBillPaymentAppliedEvent creates a new BillPaymentAppliedEvent
func NewBillPaymentAppliedEvent(b *Bill, amount decimal.Decimal) *BillPaymentAppliedEvent {
	return &BillPaymentAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeBillPaymentApplied, AggregateTypeBill, b.ID, b.PropertyID),
		TenantID:         b.TenantID,
		Period:           b.Period,
		Amount:           amount,
		PaymentsReceived: b.PaymentsReceived,
		Balance:          b.Balance,
		Overpayment:      b.Overpayment,
	}
}
