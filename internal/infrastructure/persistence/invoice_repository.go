package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice within a property
func (r *GormInvoiceRepository) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND id = ?", propertyID, id).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrInvoiceNotFound)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, propertyID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("property_id = ? AND id = ?", propertyID, id).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrInvoiceNotFound)
	}
	return model.ToDomain(), nil
}

// FindByBillForUpdate returns the invoice issued for a bill, locked
func (r *GormInvoiceRepository) FindByBillForUpdate(ctx context.Context, billID uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("bill_id = ?", billID).
		First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByBillIDs returns the invoices issued for the given bills
func (r *GormInvoiceRepository) FindByBillIDs(ctx context.Context, billIDs []uuid.UUID) ([]invoicing.Invoice, error) {
	if len(billIDs) == 0 {
		return []invoicing.Invoice{}, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("bill_id IN ?", billIDs).
		Order("sequence ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// FindByProperty lists a property's invoices with filtering and pagination
func (r *GormInvoiceRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), propertyID, filter)
	query = query.Scopes(listPage(filter.Filter, invoiceSort))

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// CountByProperty counts a property's invoices matching the filter
func (r *GormInvoiceRepository) CountByProperty(ctx context.Context, propertyID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), propertyID, filter).Count(&count).Error
	return count, err
}

// FindOverdueCandidates returns open invoices with a balance whose due date has passed
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ? AND balance > 0",
			[]invoicing.InvoiceStatus{invoicing.InvoiceStatusUnpaid, invoicing.InvoiceStatusPartiallyPaid}, now).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	err := r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error
	if isUniqueViolation(err) {
		return shared.NewDomainError(shared.CodeAlreadyInvoiced, "Bill already has an invoice")
	}
	return err
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return optimisticLockResult(r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Select("*").
		Updates(model))
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, propertyID uuid.UUID, filter invoicing.InvoiceFilter) *gorm.DB {
	query = query.Where("property_id = ?", propertyID)
	if filter.Period != nil {
		query = query.Where("period = ?", *filter.Period)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR unit_id LIKE ?", pattern, pattern)
	}
	return query
}

func invoicesToDomain(invoiceModels []models.InvoiceModel) []invoicing.Invoice {
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
