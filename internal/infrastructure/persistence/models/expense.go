package models

import (
	"time"

	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for a property expense.
type ExpenseModel struct {
	PropertyAggregateModel
	Amount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Description string           `gorm:"type:varchar(500);not null"`
	Category    expense.Category `gorm:"type:varchar(30);not null;index"`
	ExpenseDate time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *expense.Expense {
	return &expense.Expense{
		PropertyAggregateRoot: m.ToDomainPropertyAggregateRoot(),
		Amount:                m.Amount,
		Description:           m.Description,
		Category:              m.Category,
		ExpenseDate:           m.ExpenseDate,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense.
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		ExpenseDate: e.ExpenseDate,
	}
	m.FromDomainPropertyAggregateRoot(e.PropertyAggregateRoot)
	return m
}
