package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, property.PropertyNotFound(id))
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a property and locks its row
func (r *GormPropertyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, property.PropertyNotFound(id))
	}
	return model.ToDomain(), nil
}

// FindAll lists properties with search and pagination
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Property, error) {
	var propertyModels []models.PropertyModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PropertyModel{}), filter)
	query = query.Scopes(listPage(filter, propertySort))

	if err := query.Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	properties := make([]property.Property, len(propertyModels))
	for i, model := range propertyModels {
		properties[i] = *model.ToDomain()
	}
	return properties, nil
}

// Count counts properties matching the filter
func (r *GormPropertyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PropertyModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	return r.db.WithContext(ctx).Save(models.PropertyModelFromDomain(p)).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPropertyRepository) SaveWithLock(ctx context.Context, p *property.Property) error {
	model := models.PropertyModelFromDomain(p)
	return optimisticLockResult(r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Select("*").
		Updates(model))
}

// applyFilter narrows by a substring of the property name
func (r *GormPropertyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ?", pattern)
	}
	return query
}

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByCode finds a unit by its code within a property
func (r *GormUnitRepository) FindByCode(ctx context.Context, propertyID uuid.UUID, code string) (*property.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND code = ?", propertyID, code).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, property.UnitNotFound(code))
	}
	return model.ToDomain(), nil
}

// FindByCodeForUpdate finds a unit and locks its row
func (r *GormUnitRepository) FindByCodeForUpdate(ctx context.Context, propertyID uuid.UUID, code string) (*property.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("property_id = ? AND code = ?", propertyID, code).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, property.UnitNotFound(code))
	}
	return model.ToDomain(), nil
}

// FindByProperty lists a property's units ordered by code
func (r *GormUnitRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, status *property.UnitStatus) ([]property.Unit, error) {
	var unitModels []models.UnitModel
	query := r.db.WithContext(ctx).Where("property_id = ?", propertyID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("code ASC").Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]property.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// CountByStatus counts a property's units per status
func (r *GormUnitRepository) CountByStatus(ctx context.Context, propertyID uuid.UUID) (map[property.UnitStatus]int64, error) {
	var rows []struct {
		Status property.UnitStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.UnitModel{}).
		Select("status, COUNT(*) AS count").
		Where("property_id = ?", propertyID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[property.UnitStatus]int64{
		property.UnitStatusVacant:   0,
		property.UnitStatusOccupied: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SaveBatch creates or updates units
func (r *GormUnitRepository) SaveBatch(ctx context.Context, units []*property.Unit) error {
	if len(units) == 0 {
		return nil
	}
	unitModels := make([]*models.UnitModel, len(units))
	for i, u := range units {
		unitModels[i] = models.UnitModelFromDomain(u)
	}
	err := r.db.WithContext(ctx).Save(&unitModels).Error
	if isUniqueViolation(err) {
		return shared.NewDomainError("DUPLICATE_UNIT", "Unit code already exists in this property")
	}
	return err
}

// SaveWithLock saves with optimistic locking
func (r *GormUnitRepository) SaveWithLock(ctx context.Context, u *property.Unit) error {
	model := models.UnitModelFromDomain(u)
	return optimisticLockResult(r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", u.ID, u.Version-1).
		Select("*").
		Updates(model))
}

// Ensure interfaces are implemented
var (
	_ property.PropertyRepository = (*GormPropertyRepository)(nil)
	_ property.UnitRepository     = (*GormUnitRepository)(nil)
)
