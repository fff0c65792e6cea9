package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// IssueInvoicesRequest issues invoices for a billed period
type IssueInvoicesRequest struct {
	Period string `json:"period" binding:"required,period"`
}

// ListInvoicesRequest filters a property's invoices
type ListInvoicesRequest struct {
	Period   string     `form:"period" binding:"omitempty,period"`
	Status   string     `form:"status"`
	TenantID *uuid.UUID `form:"tenant_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SetStatusRequest is an operator status override
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SendInvoiceRequest delivers an invoice on one channel
type SendInvoiceRequest struct {
	Channel string `json:"channel" binding:"required,oneof=email whatsapp"`
}

// MarkOverdueRequest runs the overdue sweep as of a given time
type MarkOverdueRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// LineItemResponse is one invoice line
type LineItemResponse = invoicing.LineItem

// SentFlags records delivery per channel
type SentFlags struct {
	Email    bool `json:"email"`
	WhatsApp bool `json:"whatsapp"`
}

// InvoiceResponse is an invoice as returned by the API
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	PropertyID    uuid.UUID          `json:"property_id"`
	BillID        uuid.UUID          `json:"bill_id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	UnitID        string             `json:"unit_id"`
	Period        string             `json:"period"`
	InvoiceNumber string             `json:"invoice_number"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	LineItems     []LineItemResponse `json:"line_items"`
	TotalDue      decimal.Decimal    `json:"total_due"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Balance       decimal.Decimal    `json:"balance"`
	Overpayment   decimal.Decimal    `json:"overpayment"`
	Status        string             `json:"status"`
	Sent          SentFlags          `json:"sent"`
	LastSentAt    *time.Time         `json:"last_sent_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	Version       int                `json:"version"`
}

// ListInvoicesResponse is a page of invoices
type ListInvoicesResponse struct {
	Items    []InvoiceResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// IssueInvoicesResponse reports the invoices issued for a period
type IssueInvoicesResponse struct {
	Period   string            `json:"period"`
	Issued   int               `json:"issued"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// MarkOverdueResponse reports an overdue sweep
type MarkOverdueResponse struct {
	AsOf   time.Time `json:"as_of"`
	Marked int       `json:"marked"`
}

// RenderedInvoice is a rendered PDF and, when stored, its download URL
type RenderedInvoice struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
	StorageKey  string `json:"storage_key,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ToInvoiceResponse converts an invoice to its response form
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.LineItems))
	copy(items, inv.LineItems)
	return InvoiceResponse{
		ID:            inv.ID,
		PropertyID:    inv.PropertyID,
		BillID:        inv.BillID,
		TenantID:      inv.TenantID,
		UnitID:        inv.UnitID,
		Period:        inv.Period.String(),
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		LineItems:     items,
		TotalDue:      inv.TotalDue,
		AmountPaid:    inv.AmountPaid,
		Balance:       inv.Balance,
		Overpayment:   inv.Overpayment,
		Status:        inv.Status.String(),
		Sent:          SentFlags{Email: inv.SentEmail, WhatsApp: inv.SentWhatsApp},
		LastSentAt:    inv.LastSentAt,
		CancelledAt:   inv.CancelledAt,
		Version:       inv.Version,
	}
}

func toInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}
