package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance standing of a tenant's latest bill
const (
	StandingOwing   = "Owing"
	StandingCredit  = "Credit"
	StandingSettled = "Settled"
)

// OccupancyReport summarizes unit occupancy
type OccupancyReport struct {
	PropertyID uuid.UUID       `json:"property_id"`
	Total      int64           `json:"total"`
	Occupied   int64           `json:"occupied"`
	Vacant     int64           `json:"vacant"`
	Rate       decimal.Decimal `json:"rate"`
}

// BalancesRequest filters the balances report
type BalancesRequest struct {
	Standing   string           `form:"status" binding:"omitempty,oneof=Owing Credit Settled"`
	MinBalance *decimal.Decimal `form:"min_balance"`
}

// TenantBalance is one active tenant's position after its latest bill
type TenantBalance struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	TenantName  string          `json:"tenant_name"`
	UnitID      string          `json:"unit_id"`
	Period      string          `json:"period,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Overpayment decimal.Decimal `json:"overpayment"`
	Standing    string          `json:"status"`
}

// BalancesReport lists active tenants' balances
type BalancesReport struct {
	PropertyID       uuid.UUID       `json:"property_id"`
	Items            []TenantBalance `json:"items"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
}

// FinancialReport is money in and out for a property
type FinancialReport struct {
	PropertyID        uuid.UUID       `json:"property_id"`
	Period            string          `json:"period,omitempty"`
	RentCollected     decimal.Decimal `json:"rent_collected"`
	DepositsCollected decimal.Decimal `json:"deposits_collected"`
	Expenses          decimal.Decimal `json:"expenses"`
	ServiceFee        decimal.Decimal `json:"service_fee"`
	NetToLandlord     decimal.Decimal `json:"net_to_landlord"`
	ServiceRateModel  string          `json:"service_rate_model,omitempty"`
}

// UnitUtility is one unit's water for a period
type UnitUtility struct {
	UnitID          string           `json:"unit_id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	Consumption     *decimal.Decimal `json:"consumption,omitempty"`
	PreviousReading *decimal.Decimal `json:"previous_reading,omitempty"`
	CurrentReading  *decimal.Decimal `json:"current_reading,omitempty"`
	Charge          decimal.Decimal  `json:"charge"`
}

// UtilityReport is a property's water usage and charges for one period
type UtilityReport struct {
	PropertyID       uuid.UUID       `json:"property_id"`
	Period           string          `json:"period"`
	WaterMethod      string          `json:"water_method"`
	Units            []UnitUtility   `json:"units"`
	TotalConsumption decimal.Decimal `json:"total_consumption"`
	TotalCharge      decimal.Decimal `json:"total_charge"`
}

// BillingStats counts invoices by status and totals a period's bills
type BillingStats struct {
	PropertyID       uuid.UUID        `json:"property_id"`
	Period           string           `json:"period"`
	Bills            int              `json:"bills"`
	InvoicesByStatus map[string]int64 `json:"invoices_by_status"`
	TotalBilled      decimal.Decimal  `json:"total_billed"`
	TotalCollected   decimal.Decimal  `json:"total_collected"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	CollectionRate   decimal.Decimal  `json:"collection_rate"`
}
