package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*occupancy.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, occupancy.TenantNotFound(id))
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a tenant and locks its row
func (r *GormTenantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*occupancy.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, occupancy.TenantNotFound(id))
	}
	return model.ToDomain(), nil
}

// FindActiveByProperty returns active tenants ordered by unit code
func (r *GormTenantRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) ([]occupancy.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status = ?", propertyID, occupancy.TenantStatusActive).
		Order("unit_id ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	return tenantsToDomain(tenantModels), nil
}

// FindAll lists tenants with filtering and pagination
func (r *GormTenantRepository) FindAll(ctx context.Context, filter occupancy.TenantFilter) ([]occupancy.Tenant, error) {
	var tenantModels []models.TenantModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TenantModel{}), filter)
	query = query.Scopes(listPage(filter.Filter, tenantSort))

	if err := query.Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	return tenantsToDomain(tenantModels), nil
}

// Count counts tenants matching the filter
func (r *GormTenantRepository) Count(ctx context.Context, filter occupancy.TenantFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TenantModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, t *occupancy.Tenant) error {
	return r.db.WithContext(ctx).Save(models.TenantModelFromDomain(t)).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, t *occupancy.Tenant) error {
	model := models.TenantModelFromDomain(t)
	return optimisticLockResult(r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", t.ID, t.Version-1).
		Select("*").
		Updates(model))
}

func (r *GormTenantRepository) applyFilter(query *gorm.DB, filter occupancy.TenantFilter) *gorm.DB {
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR unit_id LIKE ?", pattern, pattern, pattern)
	}
	return query
}

func tenantsToDomain(tenantModels []models.TenantModel) []occupancy.Tenant {
	tenants := make([]occupancy.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants
}

// Ensure GormTenantRepository implements TenantRepository
var _ occupancy.TenantRepository = (*GormTenantRepository)(nil)
