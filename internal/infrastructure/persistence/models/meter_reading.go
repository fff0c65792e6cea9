package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/shopspring/decimal"
)

// MeterReadingModel is the persistence model for a water meter reading.
type MeterReadingModel struct {
	PropertyAggregateModel
	UnitID      string          `gorm:"type:varchar(50);not null;index:idx_meter_readings_unit_date,priority:1"`
	TenantID    *uuid.UUID      `gorm:"type:uuid;index"`
	ReadingDate time.Time       `gorm:"not null;index:idx_meter_readings_unit_date,priority:2"`
	Value       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Baseline    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the persistence model to a domain MeterReading.
func (m *MeterReadingModel) ToDomain() *metering.MeterReading {
	return &metering.MeterReading{
		PropertyAggregateRoot: m.ToDomainPropertyAggregateRoot(),
		UnitID:                m.UnitID,
		TenantID:              m.TenantID,
		ReadingDate:           m.ReadingDate,
		Value:                 m.Value,
		Baseline:              m.Baseline,
	}
}

// MeterReadingModelFromDomain creates a persistence model from a domain MeterReading.
func MeterReadingModelFromDomain(r *metering.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{
		UnitID:      r.UnitID,
		TenantID:    r.TenantID,
		ReadingDate: r.ReadingDate,
		Value:       r.Value,
		Baseline:    r.Baseline,
	}
	m.FromDomainPropertyAggregateRoot(r.PropertyAggregateRoot)
	return m
}
