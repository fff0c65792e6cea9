package expense

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Category classifies property expenses for reporting
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryUtilities   Category = "utilities"
	CategorySalary      Category = "salary"
	CategorySecurity    Category = "security"
	CategoryTax         Category = "tax"
	CategoryOther       Category = "other"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryMaintenance, CategoryUtilities, CategorySalary,
		CategorySecurity, CategoryTax, CategoryOther:
		return true
	}
	return false
}

// Expense is money spent on a property. It feeds reporting only and is
// never part of a tenant's ledger.
type Expense struct {
	shared.PropertyAggregateRoot
	Amount      decimal.Decimal
	Description string
	Category    Category
	ExpenseDate time.Time
}

// NewExpense validates and creates an expense
func NewExpense(propertyID uuid.UUID, amount decimal.Decimal, description string, category Category, date time.Time) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}

	return &Expense{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(propertyID),
		Amount:                valueobject.RoundAmount(amount),
		Description:           description,
		Category:              category,
		ExpenseDate:           date,
	}, nil
}
