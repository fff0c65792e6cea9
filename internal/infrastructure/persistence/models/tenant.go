package models

import (
	"time"

	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for a renter.
type TenantModel struct {
	PropertyAggregateModel
	UnitID     string                 `gorm:"type:varchar(50);not null;index"`
	Name       string                 `gorm:"type:varchar(200);not null"`
	Phone      string                 `gorm:"type:varchar(50)"`
	Email      string                 `gorm:"type:varchar(200)"`
	IDNumber   string                 `gorm:"type:varchar(50)"`
	LeaseStart time.Time              `gorm:"not null"`
	Rent       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Deposit    decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status     occupancy.TenantStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	VacatedAt  *time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant.
func (m *TenantModel) ToDomain() *occupancy.Tenant {
	return &occupancy.Tenant{
		PropertyAggregateRoot: m.ToDomainPropertyAggregateRoot(),
		UnitID:                m.UnitID,
		Name:                  m.Name,
		Phone:                 m.Phone,
		Email:                 m.Email,
		IDNumber:              m.IDNumber,
		LeaseStart:            m.LeaseStart,
		Rent:                  m.Rent,
		Deposit:               m.Deposit,
		Status:                m.Status,
		VacatedAt:             m.VacatedAt,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant.
func TenantModelFromDomain(t *occupancy.Tenant) *TenantModel {
	m := &TenantModel{
		UnitID:     t.UnitID,
		Name:       t.Name,
		Phone:      t.Phone,
		Email:      t.Email,
		IDNumber:   t.IDNumber,
		LeaseStart: t.LeaseStart,
		Rent:       t.Rent,
		Deposit:    t.Deposit,
		Status:     t.Status,
		VacatedAt:  t.VacatedAt,
	}
	m.FromDomainPropertyAggregateRoot(t.PropertyAggregateRoot)
	return m
}
