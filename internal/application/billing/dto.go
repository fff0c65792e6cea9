package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/shopspring/decimal"
)

// GenerateBillsRequest asks for one period's bills
type GenerateBillsRequest struct {
	Period string `json:"period" binding:"required,period"`
}

// BillResponse is a bill as returned by the API
type BillResponse struct {
	ID                 uuid.UUID            `json:"id"`
	PropertyID         uuid.UUID            `json:"property_id"`
	TenantID           uuid.UUID            `json:"tenant_id"`
	UnitID             string               `json:"unit_id"`
	Period             string               `json:"period"`
	Rent               decimal.Decimal      `json:"rent"`
	WaterCharge        decimal.Decimal      `json:"water_charge"`
	WaterUsage         *metering.WaterUsage `json:"water_usage,omitempty"`
	GarbageFee         decimal.Decimal      `json:"garbage_fee"`
	CarriedBalance     decimal.Decimal      `json:"carried_balance"`
	CarriedOverpayment decimal.Decimal      `json:"carried_overpayment"`
	TotalDue           decimal.Decimal      `json:"total_due"`
	PaymentsReceived   decimal.Decimal      `json:"payments_received"`
	Balance            decimal.Decimal      `json:"balance"`
	Overpayment        decimal.Decimal      `json:"overpayment"`
	GeneratedAt        time.Time            `json:"generated_at"`
	Version            int                  `json:"version"`
}

// GenerateBillsResponse reports the bills of a period and whether this call created them
type GenerateBillsResponse struct {
	PropertyID     uuid.UUID      `json:"property_id"`
	Period         string         `json:"period"`
	Created        bool           `json:"created"`
	InvoicesIssued int            `json:"invoices_issued"`
	Bills          []BillResponse `json:"bills"`
}

// CarryForwardResponse is what a tenant brings into a period
type CarryForwardResponse struct {
	TenantID   uuid.UUID  `json:"tenant_id"`
	Period     string     `json:"period"`
	FromBillID *uuid.UUID `json:"from_bill_id,omitempty"`
	billing.CarryForward
}

// ToBillResponse converts a bill to its response form
func ToBillResponse(b *billing.Bill) BillResponse {
	return BillResponse{
		ID:                 b.ID,
		PropertyID:         b.PropertyID,
		TenantID:           b.TenantID,
		UnitID:             b.UnitID,
		Period:             b.Period.String(),
		Rent:               b.Rent,
		WaterCharge:        b.WaterCharge,
		WaterUsage:         b.WaterUsage,
		GarbageFee:         b.GarbageFee,
		CarriedBalance:     b.CarriedBalance,
		CarriedOverpayment: b.CarriedOverpayment,
		TotalDue:           b.TotalDue,
		PaymentsReceived:   b.PaymentsReceived,
		Balance:            b.Balance,
		Overpayment:        b.Overpayment,
		GeneratedAt:        b.GeneratedAt,
		Version:            b.Version,
	}
}

func toBillResponses(bills []billing.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i])
	}
	return out
}
