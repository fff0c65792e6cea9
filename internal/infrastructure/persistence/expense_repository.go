package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error
}

// FindByProperty lists a property's expenses newest first
func (r *GormExpenseRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, from, to *time.Time) ([]expense.Expense, error) {
	var expenseModels []models.ExpenseModel
	if err := r.between(r.db.WithContext(ctx), propertyID, from, to).
		Order("expense_date DESC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]expense.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, nil
}

// SumByProperty totals a property's expenses in the date range
func (r *GormExpenseRepository) SumByProperty(ctx context.Context, propertyID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.between(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), propertyID, from, to).
		Select("SUM(amount)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *GormExpenseRepository) between(query *gorm.DB, propertyID uuid.UUID, from, to *time.Time) *gorm.DB {
	query = query.Where("property_id = ?", propertyID)
	if from != nil {
		query = query.Where("expense_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("expense_date <= ?", *to)
	}
	return query
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
