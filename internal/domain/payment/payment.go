package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes ledger payments from deposits
type PaymentType string

const (
	// PaymentTypeRent offsets the bill's total due
	PaymentTypeRent PaymentType = "Rent"
	// PaymentTypeDeposit is recorded for reconciliation only and never touches the bill
	PaymentTypeDeposit PaymentType = "Deposit"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeRent || t == PaymentTypeDeposit
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// Method is how the money was paid
type Method string

const (
	MethodMpesa Method = "mpesa"
	MethodBank  Method = "bank"
	MethodCash  Method = "cash"
	MethodOther Method = "other"
)

// IsValid checks if the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodMpesa, MethodBank, MethodCash, MethodOther:
		return true
	}
	return false
}

// Payment is an immutable record of money received from a tenant.
// Corrections are new payments, never edits.
type Payment struct {
	shared.PropertyAggregateRoot
	TenantID  uuid.UUID
	UnitID    string
	Period    valueobject.Period
	Amount    decimal.Decimal
	PaidAt    time.Time
	Type      PaymentType
	Method    Method
	Reference string
	// BillID is the bill a rent payment was applied to
	BillID *uuid.UUID
}

// RecordInput holds the data for a new payment
type RecordInput struct {
	PropertyID uuid.UUID
	TenantID   uuid.UUID
	UnitID     string
	Period     valueobject.Period
	Amount     decimal.Decimal
	PaidAt     time.Time
	Type       PaymentType
	Method     Method
	Reference  string
}

// NewPayment validates and creates a payment
func NewPayment(in RecordInput) (*Payment, error) {
	// amounts are kept in minor units, so check what will be stored
	in.Amount = valueobject.RoundAmount(in.Amount)
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount,
			fmt.Sprintf("Payment amount must be greater than zero, got %s", in.Amount.String()))
	}
	if in.TenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Payment requires a tenant")
	}
	if strings.TrimSpace(in.UnitID) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Payment requires a unit")
	}
	if in.Period.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidPeriod, "Payment requires a period")
	}
	if in.Type == "" {
		in.Type = PaymentTypeRent
	}
	if !in.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type %q", in.Type))
	}
	if in.Method == "" {
		in.Method = MethodOther
	}
	if !in.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", in.Method))
	}
	if in.PaidAt.IsZero() {
		in.PaidAt = time.Now()
	}

	p := &Payment{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(in.PropertyID),
		TenantID:              in.TenantID,
		UnitID:                strings.TrimSpace(in.UnitID),
		Period:                in.Period,
		Amount:                in.Amount,
		PaidAt:                in.PaidAt,
		Type:                  in.Type,
		Method:                in.Method,
		Reference:             strings.TrimSpace(in.Reference),
	}
	return p, nil
}

// AppliesToLedger reports whether the payment offsets a bill
func (p *Payment) AppliesToLedger() bool {
	return p.Type == PaymentTypeRent
}

// LinkBill records the bill the payment was applied to and raises PaymentRecorded
func (p *Payment) LinkBill(billID *uuid.UUID) {
	p.BillID = billID
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
}

// DepositStatus reconciles deposit payments against the agreed deposit
type DepositStatus struct {
	Required    decimal.Decimal `json:"required"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// ReconcileDeposit sums deposit-type payments against the agreed amount
func ReconcileDeposit(required decimal.Decimal, payments []Payment) DepositStatus {
	paid := decimal.Zero
	for _, p := range payments {
		if p.Type == PaymentTypeDeposit {
			paid = paid.Add(p.Amount)
		}
	}
	return DepositStatus{
		Required:    required,
		Paid:        paid,
		Outstanding: valueobject.PositivePart(required.Sub(paid)),
	}
}
