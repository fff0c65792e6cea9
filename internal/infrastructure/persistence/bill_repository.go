package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrBillNotFound)
	}
	return model.ToDomain(), nil
}

// FindForPeriodForUpdate loads the bill for (tenant, unit, period) holding a row lock
func (r *GormBillRepository) FindForPeriodForUpdate(ctx context.Context, tenantID uuid.UUID, unitID string, period valueobject.Period) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("tenant_id = ? AND unit_id = ? AND period = ?", tenantID, unitID, period).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, billing.NoBillForPeriod(tenantID, unitID, period))
	}
	return model.ToDomain(), nil
}

// FindLatestBefore returns the tenant's most recent bill before period
func (r *GormBillRepository) FindLatestBefore(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period < ?", tenantID, period).
		Order("period DESC").
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByPropertyAndPeriod lists a property's bills for one period ordered by unit
func (r *GormBillRepository) FindByPropertyAndPeriod(ctx context.Context, propertyID uuid.UUID, period valueobject.Period) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND period = ?", propertyID, period).
		Order("unit_id ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return billsToDomain(billModels), nil
}

// FindByTenant lists a tenant's bills, oldest period first
func (r *GormBillRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("period ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return billsToDomain(billModels), nil
}

// FindLatestByProperty returns each tenant's most recent bill in the property
func (r *GormBillRepository) FindLatestByProperty(ctx context.Context, propertyID uuid.UUID) ([]billing.Bill, error) {
	var billModels []models.BillModel
	latest := r.db.Table("bills AS b2").
		Select("MAX(b2.period)").
		Where("b2.tenant_id = bills.tenant_id AND b2.property_id = bills.property_id")
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND period = (?)", propertyID, latest).
		Order("unit_id ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return billsToDomain(billModels), nil
}

// CountByPropertyAndPeriod counts a property's bills for one period
func (r *GormBillRepository) CountByPropertyAndPeriod(ctx context.Context, propertyID uuid.UUID, period valueobject.Period) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("property_id = ? AND period = ?", propertyID, period).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts bills in one statement. A second bill for the same
// tenant, unit and period fails with PeriodAlreadyBilled.
func (r *GormBillRepository) CreateBatch(ctx context.Context, bills []*billing.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	billModels := make([]*models.BillModel, len(bills))
	for i, b := range bills {
		billModels[i] = models.BillModelFromDomain(b)
	}
	err := r.db.WithContext(ctx).Create(&billModels).Error
	if isUniqueViolation(err) {
		return shared.ErrPeriodAlreadyBilled
	}
	return err
}

// SaveWithLock saves with optimistic locking
func (r *GormBillRepository) SaveWithLock(ctx context.Context, b *billing.Bill) error {
	model := models.BillModelFromDomain(b)
	return optimisticLockResult(r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", b.ID, b.Version-1).
		Select("*").
		Updates(model))
}

func billsToDomain(billModels []models.BillModel) []billing.Bill {
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
