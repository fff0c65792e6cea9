package invoicing

import (
	"time"

	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// Document is the printable view of an invoice: the invoice itself plus the
// property, landlord and tenant details shown on the page.
type Document struct {
	InvoiceNumber   string
	Status          InvoiceStatus
	Period          string
	IssueDate       time.Time
	DueDate         *time.Time
	PropertyName    string
	PropertyAddress string
	Landlord        property.Landlord
	Payment         property.PaymentDetails
	TenantName      string
	TenantPhone     string
	TenantEmail     string
	UnitID          string
	LineItems       LineItems
	TotalDue        decimal.Decimal
	AmountPaid      decimal.Decimal
	Balance         decimal.Decimal
	Overpayment     decimal.Decimal
}

// NewDocument assembles the printable view. tenant may be nil if the record is gone.
func NewDocument(inv *Invoice, p *property.Property, tenant *occupancy.Tenant) Document {
	doc := Document{
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		Period:        inv.Period.String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		UnitID:        inv.UnitID,
		LineItems:     inv.LineItems,
		TotalDue:      inv.TotalDue,
		AmountPaid:    inv.AmountPaid,
		Balance:       inv.Balance,
		Overpayment:   inv.Overpayment,
	}
	if p != nil {
		doc.PropertyName = p.Name
		doc.PropertyAddress = p.Address
		doc.Landlord = p.Landlord
		doc.Payment = p.PaymentDetails
	}
	if tenant != nil {
		doc.TenantName = tenant.Name
		doc.TenantPhone = tenant.Phone
		doc.TenantEmail = tenant.Email
	}
	return doc
}
