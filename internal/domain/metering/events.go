package metering

import (
	"time"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeMeterReadingRecorded = "MeterReadingRecorded"
	AggregateTypeMeterReading     = "MeterReading"
)

// MeterReadingRecordedEvent is raised for every accepted reading
type MeterReadingRecordedEvent struct {
	shared.BaseDomainEvent
	UnitID      string          `json:"unit_id"`
	ReadingDate time.Time       `json:"reading_date"`
	Value       decimal.Decimal `json:"value"`
	Baseline    bool            `json:"baseline"`
}

// EventType returns the event type name
func (e *MeterReadingRecordedEvent) EventType() string {
	return EventTypeMeterReadingRecorded
}

// NewMeterReadingRecordedEvent creates a new MeterReadingRecordedEvent
func NewMeterReadingRecordedEvent(r *MeterReading) *MeterReadingRecordedEvent {
	return &MeterReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterReadingRecorded, AggregateTypeMeterReading, r.ID, r.PropertyID),
		UnitID:          r.UnitID,
		ReadingDate:     r.ReadingDate,
		Value:           r.Value,
		Baseline:        r.Baseline,
	}
}
