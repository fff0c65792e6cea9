package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements MeterReadingRepository using GORM.
// Readings are append-only.
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// Latest returns the most recent reading for a unit
func (r *GormMeterReadingRepository) Latest(ctx context.Context, propertyID uuid.UUID, unitID string) (*metering.MeterReading, error) {
	var model models.MeterReadingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND unit_id = ?", propertyID, unitID).
		Order("reading_date DESC, created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByUnit returns a unit's readings oldest first
func (r *GormMeterReadingRepository) FindByUnit(ctx context.Context, propertyID uuid.UUID, unitID string, until *time.Time) ([]metering.MeterReading, error) {
	var readingModels []models.MeterReadingModel
	query := r.db.WithContext(ctx).Where("property_id = ? AND unit_id = ?", propertyID, unitID)
	if until != nil {
		query = query.Where("reading_date <= ?", *until)
	}
	if err := query.Order("reading_date ASC, created_at ASC").Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// FindByProperty returns readings ordered by unit then date
func (r *GormMeterReadingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, unitID *string) ([]metering.MeterReading, error) {
	var readingModels []models.MeterReadingModel
	query := r.db.WithContext(ctx).Where("property_id = ?", propertyID)
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}
	if err := query.Order("unit_id ASC, reading_date ASC, created_at ASC").Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// Save inserts a reading
func (r *GormMeterReadingRepository) Save(ctx context.Context, reading *metering.MeterReading) error {
	return r.db.WithContext(ctx).Create(models.MeterReadingModelFromDomain(reading)).Error
}

func readingsToDomain(readingModels []models.MeterReadingModel) []metering.MeterReading {
	readings := make([]metering.MeterReading, len(readingModels))
	for i, model := range readingModels {
		readings[i] = *model.ToDomain()
	}
	return readings
}

// Ensure GormMeterReadingRepository implements MeterReadingRepository
var _ metering.MeterReadingRepository = (*GormMeterReadingRepository)(nil)
