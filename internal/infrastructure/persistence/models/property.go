package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// UnitTypes stores the declared unit-type groups as JSON
type UnitTypes []property.UnitType

// Value implements driver.Valuer
func (u UnitTypes) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (u *UnitTypes) Scan(value interface{}) error {
	if value == nil {
		*u = UnitTypes{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UnitTypes: unsupported type")
	}
	if len(bytes) == 0 {
		*u = UnitTypes{}
		return nil
	}
	return json.Unmarshal(bytes, u)
}

// PropertyModel is the persistence model for the Property aggregate root.
type PropertyModel struct {
	AggregateModel
	Name             string                    `gorm:"type:varchar(200);not null;index"`
	Address          string                    `gorm:"type:varchar(500)"`
	PropertyType     string                    `gorm:"type:varchar(50)"`
	ServiceRateModel property.ServiceRateModel `gorm:"type:varchar(20)"`
	ServiceRateValue decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	AccountName      string                    `gorm:"type:varchar(200)"`
	AccountNumber    string                    `gorm:"type:varchar(100)"`
	Bank             string                    `gorm:"type:varchar(100)"`
	DeadlineDay      int                       `gorm:"not null;default:0"`
	LandlordName     string                    `gorm:"type:varchar(200)"`
	LandlordPhone    string                    `gorm:"type:varchar(50)"`
	LandlordEmail    string                    `gorm:"type:varchar(200)"`
	WaterMethod      property.WaterMethod      `gorm:"type:varchar(20);not null"`
	WaterRate        decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	GarbageFee       decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	UnitTypes        UnitTypes                 `gorm:"type:jsonb"`
	InvoiceSequence  int64                     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property.
func (m *PropertyModel) ToDomain() *property.Property {
	return &property.Property{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		PropertyType:      m.PropertyType,
		ServiceRate:       property.ServiceRate{Model: m.ServiceRateModel, Value: m.ServiceRateValue},
		PaymentDetails: property.PaymentDetails{
			AccountName:   m.AccountName,
			AccountNumber: m.AccountNumber,
			Bank:          m.Bank,
			DeadlineDay:   m.DeadlineDay,
		},
		Landlord: property.Landlord{Name: m.LandlordName, Phone: m.LandlordPhone, Email: m.LandlordEmail},
		Utilities: property.Utilities{
			WaterMethod: m.WaterMethod,
			WaterRate:   m.WaterRate,
			GarbageFee:  m.GarbageFee,
		},
		UnitTypes:       []property.UnitType(m.UnitTypes),
		InvoiceSequence: m.InvoiceSequence,
	}
}

// PropertyModelFromDomain creates a persistence model from a domain Property.
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{
		Name:             p.Name,
		Address:          p.Address,
		PropertyType:     p.PropertyType,
		ServiceRateModel: p.ServiceRate.Model,
		ServiceRateValue: p.ServiceRate.Value,
		AccountName:      p.PaymentDetails.AccountName,
		AccountNumber:    p.PaymentDetails.AccountNumber,
		Bank:             p.PaymentDetails.Bank,
		DeadlineDay:      p.PaymentDetails.DeadlineDay,
		LandlordName:     p.Landlord.Name,
		LandlordPhone:    p.Landlord.Phone,
		LandlordEmail:    p.Landlord.Email,
		WaterMethod:      p.Utilities.WaterMethod,
		WaterRate:        p.Utilities.WaterRate,
		GarbageFee:       p.Utilities.GarbageFee,
		UnitTypes:        UnitTypes(p.UnitTypes),
		InvoiceSequence:  p.InvoiceSequence,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// UnitModel is the persistence model for a unit.
type UnitModel struct {
	AggregateModel
	PropertyID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_units_property_code,priority:1"`
	Code       string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_units_property_code,priority:2"`
	UnitType   string              `gorm:"type:varchar(100);not null"`
	Rent       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Deposit    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Status     property.UnitStatus `gorm:"type:varchar(20);not null;default:'vacant';index"`
	TenantID   *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit.
func (m *UnitModel) ToDomain() *property.Unit {
	return &property.Unit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PropertyID:        m.PropertyID,
		Code:              m.Code,
		UnitType:          m.UnitType,
		Rent:              m.Rent,
		Deposit:           m.Deposit,
		Status:            m.Status,
		TenantID:          m.TenantID,
	}
}

// UnitModelFromDomain creates a persistence model from a domain Unit.
func UnitModelFromDomain(u *property.Unit) *UnitModel {
	m := &UnitModel{
		PropertyID: u.PropertyID,
		Code:       u.Code,
		UnitType:   u.UnitType,
		Rent:       u.Rent,
		Deposit:    u.Deposit,
		Status:     u.Status,
		TenantID:   u.TenantID,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
