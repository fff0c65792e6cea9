package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest records money received from a tenant.
// UnitID defaults to the tenant's current unit.
type RecordPaymentRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id" binding:"required"`
	UnitID    string          `json:"unit_id"`
	Period    string          `json:"period" binding:"required,period"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	PaidAt    *time.Time      `json:"paid_at"`
	Type      string          `json:"type" binding:"omitempty,oneof=Rent Deposit"`
	Method    string          `json:"method" binding:"omitempty,oneof=mpesa bank cash other"`
	Reference string          `json:"reference" binding:"max=100"`
}

// ListPaymentsRequest filters a property's payments
type ListPaymentsRequest struct {
	Period   string     `form:"period" binding:"omitempty,period"`
	TenantID *uuid.UUID `form:"tenant_id"`
	Type     string     `form:"type" binding:"omitempty,oneof=Rent Deposit"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PaymentResponse is a payment as returned by the API
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	PropertyID uuid.UUID       `json:"property_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	UnitID     string          `json:"unit_id"`
	Period     string          `json:"period"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
	Type       string          `json:"type"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	BillID     *uuid.UUID      `json:"bill_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AppliedTo describes the bill and invoice after a rent payment
type AppliedTo struct {
	BillID        uuid.UUID       `json:"bill_id"`
	Balance       decimal.Decimal `json:"balance"`
	Overpayment   decimal.Decimal `json:"overpayment"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
}

// RecordPaymentResponse is the recorded payment and its effect on the ledger
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Applied *AppliedTo      `json:"applied,omitempty"`
}

// ListPaymentsResponse is a page of payments
type ListPaymentsResponse struct {
	Items    []PaymentResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// DepositStatusResponse reconciles a tenant's deposit
type DepositStatusResponse struct {
	TenantID uuid.UUID `json:"tenant_id"`
	payment.DepositStatus
}

// ToPaymentResponse converts a payment to its response form
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		PropertyID: p.PropertyID,
		TenantID:   p.TenantID,
		UnitID:     p.UnitID,
		Period:     p.Period.String(),
		Amount:     p.Amount,
		PaidAt:     p.PaidAt,
		Type:       p.Type.String(),
		Method:     string(p.Method),
		Reference:  p.Reference,
		BillID:     p.BillID,
		CreatedAt:  p.CreatedAt,
	}
}

func toPaymentResponses(payments []payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
