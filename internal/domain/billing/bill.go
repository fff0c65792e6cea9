package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Bill is one tenant's charges for one unit and period.
//
// Charge and carry fields are fixed at generation. Only payments change a
// bill afterwards, and they keep TotalDue, Balance and Overpayment consistent:
//
//	TotalDue    = Rent + WaterCharge + GarbageFee + CarriedBalance - CarriedOverpayment
//	Balance     = max(TotalDue - PaymentsReceived, 0)
//	Overpayment = max(PaymentsReceived - TotalDue, 0)
type Bill struct {
	shared.PropertyAggregateRoot
	TenantID           uuid.UUID
	UnitID             string
	Period             valueobject.Period
	Rent               decimal.Decimal
	WaterCharge        decimal.Decimal
	WaterUsage         *metering.WaterUsage
	GarbageFee         decimal.Decimal
	CarriedBalance     decimal.Decimal
	CarriedOverpayment decimal.Decimal
	TotalDue           decimal.Decimal
	PaymentsReceived   decimal.Decimal
	Balance            decimal.Decimal
	Overpayment        decimal.Decimal
	GeneratedAt        time.Time
}

// BillInput holds everything captured on a bill at generation time
type BillInput struct {
	PropertyID uuid.UUID
	TenantID   uuid.UUID
	UnitID     string
	Period     valueobject.Period
	Rent       decimal.Decimal
	Water      metering.WaterCharge
	GarbageFee decimal.Decimal
	Carry      CarryForward
}

// NewBill creates a bill with no payments applied
func NewBill(in BillInput) (*Bill, error) {
	if in.TenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Bill requires a tenant")
	}
	if in.UnitID == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Bill requires a unit")
	}
	if in.Period.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidPeriod, "Bill requires a period")
	}
	for label, v := range map[string]decimal.Decimal{
		"rent":                in.Rent,
		"water charge":        in.Water.Amount,
		"garbage fee":         in.GarbageFee,
		"carried balance":     in.Carry.Balance,
		"carried overpayment": in.Carry.Overpayment,
	} {
		if v.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidAmount, fmt.Sprintf("Bill %s cannot be negative", label))
		}
	}

	b := &Bill{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(in.PropertyID),
		TenantID:              in.TenantID,
		UnitID:                in.UnitID,
		Period:                in.Period,
		Rent:                  in.Rent,
		WaterCharge:           in.Water.Amount,
		WaterUsage:            in.Water.Usage,
		GarbageFee:            in.GarbageFee,
		CarriedBalance:        in.Carry.Balance,
		CarriedOverpayment:    in.Carry.Overpayment,
		PaymentsReceived:      decimal.Zero,
		GeneratedAt:           time.Now(),
	}
	b.recalculate()
	b.AddDomainEvent(NewBillGeneratedEvent(b))
	return b, nil
}

// ApplyPayment adds a rent payment to the bill
func (b *Bill) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	b.PaymentsReceived = b.PaymentsReceived.Add(amount)
	b.recalculate()
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaymentAppliedEvent(b, amount))
	return nil
}

func (b *Bill) recalculate() {
	b.TotalDue = valueobject.RoundAmount(valueobject.SumAmounts(b.Rent, b.WaterCharge, b.GarbageFee, b.CarriedBalance).
		Sub(b.CarriedOverpayment))
	b.Balance = valueobject.PositivePart(b.TotalDue.Sub(b.PaymentsReceived))
	b.Overpayment = valueobject.PositivePart(b.PaymentsReceived.Sub(b.TotalDue))
}

// IsSettled reports whether nothing is left to pay
func (b *Bill) IsSettled() bool {
	return b.Balance.IsZero()
}

// NoBillForPeriod builds the error for a payment against an unbilled period
func NoBillForPeriod(tenantID uuid.UUID, unitID string, period valueobject.Period) error {
	return shared.NewDomainError(shared.CodeNoBillForPeriod,
		fmt.Sprintf("No bill for tenant %s unit %s in period %s", tenantID, unitID, period))
}
