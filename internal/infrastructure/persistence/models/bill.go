package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for a bill.
// The (tenant_id, unit_id, period) unique index rejects a second bill for the same period.
type BillModel struct {
	PropertyAggregateModel
	TenantID           uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_bills_tenant_unit_period,priority:1"`
	UnitID             string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_bills_tenant_unit_period,priority:2"`
	Period             valueobject.Period  `gorm:"type:varchar(7);not null;uniqueIndex:idx_bills_tenant_unit_period,priority:3;index"`
	Rent               decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	WaterCharge        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	WaterPrevious      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	WaterCurrent       decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	WaterRate          decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	WaterUnits         decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	GarbageFee         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CarriedBalance     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CarriedOverpayment decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDue           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentsReceived   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Balance            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Overpayment        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	GeneratedAt        time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill.
func (m *BillModel) ToDomain() *billing.Bill {
	b := &billing.Bill{
		PropertyAggregateRoot: m.ToDomainPropertyAggregateRoot(),
		TenantID:              m.TenantID,
		UnitID:                m.UnitID,
		Period:                m.Period,
		Rent:                  m.Rent,
		WaterCharge:           m.WaterCharge,
		GarbageFee:            m.GarbageFee,
		CarriedBalance:        m.CarriedBalance,
		CarriedOverpayment:    m.CarriedOverpayment,
		TotalDue:              m.TotalDue,
		PaymentsReceived:      m.PaymentsReceived,
		Balance:               m.Balance,
		Overpayment:           m.Overpayment,
		GeneratedAt:           m.GeneratedAt,
	}
	if m.WaterCurrent.Valid {
		b.WaterUsage = &metering.WaterUsage{
			PreviousReading: m.WaterPrevious.Decimal,
			CurrentReading:  m.WaterCurrent.Decimal,
			Rate:            m.WaterRate.Decimal,
			Units:           m.WaterUnits.Decimal,
		}
	}
	return b
}

// BillModelFromDomain creates a persistence model from a domain Bill.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		TenantID:           b.TenantID,
		UnitID:             b.UnitID,
		Period:             b.Period,
		Rent:               b.Rent,
		WaterCharge:        b.WaterCharge,
		GarbageFee:         b.GarbageFee,
		CarriedBalance:     b.CarriedBalance,
		CarriedOverpayment: b.CarriedOverpayment,
		TotalDue:           b.TotalDue,
		PaymentsReceived:   b.PaymentsReceived,
		Balance:            b.Balance,
		Overpayment:        b.Overpayment,
		GeneratedAt:        b.GeneratedAt,
	}
	if u := b.WaterUsage; u != nil {
		m.WaterPrevious = decimal.NewNullDecimal(u.PreviousReading)
		m.WaterCurrent = decimal.NewNullDecimal(u.CurrentReading)
		m.WaterRate = decimal.NewNullDecimal(u.Rate)
		m.WaterUnits = decimal.NewNullDecimal(u.Units)
	}
	m.FromDomainPropertyAggregateRoot(b.PropertyAggregateRoot)
	return m
}
