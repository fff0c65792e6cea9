package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	// FindByProperty lists expenses newest first; nil bounds are open
	FindByProperty(ctx context.Context, propertyID uuid.UUID, from, to *time.Time) ([]Expense, error)
	SumByProperty(ctx context.Context, propertyID uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
}
