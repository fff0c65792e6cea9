package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a payment. Rows are insert-only.
type PaymentModel struct {
	PropertyAggregateModel
	TenantID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	UnitID    string              `gorm:"type:varchar(50);not null"`
	Period    valueobject.Period  `gorm:"type:varchar(7);not null;index"`
	Amount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaidAt    time.Time           `gorm:"not null;index"`
	Type      payment.PaymentType `gorm:"type:varchar(20);not null;default:'Rent'"`
	Method    payment.Method      `gorm:"type:varchar(20);not null;default:'other'"`
	Reference string              `gorm:"type:varchar(100)"`
	BillID    *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		PropertyAggregateRoot: m.ToDomainPropertyAggregateRoot(),
		TenantID:              m.TenantID,
		UnitID:                m.UnitID,
		Period:                m.Period,
		Amount:                m.Amount,
		PaidAt:                m.PaidAt,
		Type:                  m.Type,
		Method:                m.Method,
		Reference:             m.Reference,
		BillID:                m.BillID,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		TenantID:  p.TenantID,
		UnitID:    p.UnitID,
		Period:    p.Period,
		Amount:    p.Amount,
		PaidAt:    p.PaidAt,
		Type:      p.Type,
		Method:    p.Method,
		Reference: p.Reference,
		BillID:    p.BillID,
	}
	m.FromDomainPropertyAggregateRoot(p.PropertyAggregateRoot)
	return m
}
