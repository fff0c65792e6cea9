package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for an invoice.
type InvoiceModel struct {
	AggregateModel
	PropertyID    uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_property_sequence,priority:1"`
	BillID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	UnitID        string                  `gorm:"type:varchar(50);not null"`
	Period        valueobject.Period      `gorm:"type:varchar(7);not null;index"`
	Sequence      int64                   `gorm:"not null;uniqueIndex:idx_invoices_property_sequence,priority:2"`
	InvoiceNumber string                  `gorm:"type:varchar(50);not null"`
	IssueDate     time.Time               `gorm:"not null"`
	DueDate       *time.Time              `gorm:"index"`
	LineItems     invoicing.LineItems     `gorm:"type:jsonb"`
	TotalDue      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Balance       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Overpayment   decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Status        invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	SentEmail     bool                    `gorm:"not null;default:false"`
	SentWhatsApp  bool                    `gorm:"column:sent_whatsapp;not null;default:false"`
	LastSentAt    *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		PropertyAggregateRoot: shared.PropertyAggregateRoot{BaseAggregateRoot: m.ToDomainAggregateRoot(), PropertyID: m.PropertyID},
		BillID:                m.BillID,
		TenantID:              m.TenantID,
		UnitID:                m.UnitID,
		Period:                m.Period,
		Sequence:              m.Sequence,
		InvoiceNumber:         m.InvoiceNumber,
		IssueDate:             m.IssueDate,
		DueDate:               m.DueDate,
		LineItems:             m.LineItems,
		TotalDue:              m.TotalDue,
		AmountPaid:            m.AmountPaid,
		Balance:               m.Balance,
		Overpayment:           m.Overpayment,
		Status:                m.Status,
		SentEmail:             m.SentEmail,
		SentWhatsApp:          m.SentWhatsApp,
		LastSentAt:            m.LastSentAt,
		CancelledAt:           m.CancelledAt,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		PropertyID:    inv.PropertyID,
		BillID:        inv.BillID,
		TenantID:      inv.TenantID,
		UnitID:        inv.UnitID,
		Period:        inv.Period,
		Sequence:      inv.Sequence,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		LineItems:     inv.LineItems,
		TotalDue:      inv.TotalDue,
		AmountPaid:    inv.AmountPaid,
		Balance:       inv.Balance,
		Overpayment:   inv.Overpayment,
		Status:        inv.Status,
		SentEmail:     inv.SentEmail,
		SentWhatsApp:  inv.SentWhatsApp,
		LastSentAt:    inv.LastSentAt,
		CancelledAt:   inv.CancelledAt,
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}
