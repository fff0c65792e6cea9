package metering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MeterReading is one water meter reading for a unit. Readings are
// append-only and never decrease within a unit.
type MeterReading struct {
	shared.PropertyAggregateRoot
	UnitID      string
	TenantID    *uuid.UUID
	ReadingDate time.Time
	Value       decimal.Decimal
	// Baseline marks the initial reading captured when a tenancy starts
	Baseline bool
}

// NewReadingInput holds the data for a new reading
type NewReadingInput struct {
	PropertyID  uuid.UUID
	UnitID      string
	TenantID    *uuid.UUID
	ReadingDate time.Time
	Value       decimal.Decimal
	Baseline    bool
}

// RecordReading validates a reading against the unit's latest recorded reading
// (nil when the unit has none) and returns the new reading.
func RecordReading(in NewReadingInput, latest *MeterReading) (*MeterReading, error) {
	unitID := strings.TrimSpace(in.UnitID)
	if unitID == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit id is required")
	}
	if in.ReadingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_READING_DATE", "Reading date is required")
	}
	if in.Value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING", "Reading value cannot be negative")
	}
	if latest != nil {
		if in.Value.LessThan(latest.Value) {
			return nil, shared.NewDomainError(shared.CodeNonMonotonicReading,
				fmt.Sprintf("Reading %s for unit %s is lower than the previous reading %s on %s",
					in.Value.String(), unitID, latest.Value.String(), latest.ReadingDate.Format(time.DateOnly)))
		}
		if dayOf(in.ReadingDate).Before(dayOf(latest.ReadingDate)) {
			return nil, shared.NewDomainError("READING_OUT_OF_ORDER",
				fmt.Sprintf("Reading for unit %s is dated before the latest reading on %s",
					unitID, latest.ReadingDate.Format(time.DateOnly)))
		}
	}

	r := &MeterReading{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(in.PropertyID),
		UnitID:                unitID,
		TenantID:              in.TenantID,
		ReadingDate:           in.ReadingDate,
		Value:                 in.Value,
		Baseline:              in.Baseline,
	}
	r.AddDomainEvent(NewMeterReadingRecordedEvent(r))
	return r, nil
}

// Consumption returns the reading recorded on date minus the reading
// immediately before it. readings must be ordered oldest first.
func Consumption(readings []MeterReading, date time.Time) (decimal.Decimal, error) {
	idx := -1
	day := dayOf(date)
	for i := range readings {
		if dayOf(readings[i].ReadingDate).Equal(day) {
			idx = i
		}
	}
	if idx < 0 {
		return decimal.Zero, shared.NewDomainError("READING_NOT_FOUND",
			fmt.Sprintf("No reading recorded on %s", date.Format(time.DateOnly)))
	}
	if idx == 0 {
		return decimal.Zero, shared.NewDomainError(shared.CodeNoBaselineReading,
			fmt.Sprintf("No reading before %s for unit %s", date.Format(time.DateOnly), readings[idx].UnitID))
	}
	return readings[idx].Value.Sub(readings[idx-1].Value), nil
}

// ConsumptionSeries returns, for each reading, the consumption since the
// previous reading. The first entry is nil.
func ConsumptionSeries(readings []MeterReading) []*decimal.Decimal {
	out := make([]*decimal.Decimal, len(readings))
	for i := 1; i < len(readings); i++ {
		if readings[i].UnitID != readings[i-1].UnitID {
			continue
		}
		c := readings[i].Value.Sub(readings[i-1].Value)
		out[i] = &c
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
