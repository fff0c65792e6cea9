package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MeterReadingRepository persists readings
type MeterReadingRepository interface {
	// Latest returns the most recent reading for a unit, or shared.ErrNotFound
	Latest(ctx context.Context, propertyID uuid.UUID, unitID string) (*MeterReading, error)
	// FindByUnit returns a unit's readings oldest first; until bounds the reading date when set
	FindByUnit(ctx context.Context, propertyID uuid.UUID, unitID string, until *time.Time) ([]MeterReading, error)
	// FindByProperty returns readings ordered by unit then date; unitID narrows to one unit when set
	FindByProperty(ctx context.Context, propertyID uuid.UUID, unitID *string) ([]MeterReading, error)
	Save(ctx context.Context, r *MeterReading) error
}
