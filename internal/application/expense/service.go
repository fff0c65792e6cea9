// Package expense records property expenses for reporting.
package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordExpenseRequest records money spent on a property
type RecordExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required,max=500"`
	Category    string          `json:"category" binding:"omitempty,oneof=maintenance utilities salary security tax other"`
	Date        time.Time       `json:"date" binding:"required"`
}

// ListExpensesRequest bounds an expense listing by date, both ends inclusive
type ListExpensesRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ExpenseResponse is an expense as returned by the API
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListExpensesResponse lists expenses with their total
type ListExpensesResponse struct {
	Items []ExpenseResponse `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func toExpenseResponse(e *expense.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    string(e.Category),
		Date:        e.ExpenseDate,
		CreatedAt:   e.CreatedAt,
	}
}

// ExpenseService manages property expenses
type ExpenseService struct {
	repos  txn.Repositories
	logger *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(repos txn.Repositories, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{repos: repos, logger: logger.Named("expense_service")}
}

// RecordExpense stores an expense against an existing property
func (s *ExpenseService) RecordExpense(ctx context.Context, propertyID uuid.UUID, req RecordExpenseRequest) (*ExpenseResponse, error) {
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	e, err := expense.NewExpense(propertyID, req.Amount, req.Description, expense.Category(req.Category), req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Expenses().Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	s.logger.Info("expense recorded",
		zap.String("property_id", propertyID.String()),
		zap.String("expense_id", e.ID.String()),
		zap.String("amount", e.Amount.String()),
	)
	resp := toExpenseResponse(e)
	return &resp, nil
}

// ListExpenses returns a property's expenses, newest first. A To date
// covers the whole day.
func (s *ExpenseService) ListExpenses(ctx context.Context, propertyID uuid.UUID, req ListExpensesRequest) (*ListExpensesResponse, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "The to date is before the from date")
	}
	to := req.To
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	expenses, err := s.repos.Expenses().FindByProperty(ctx, propertyID, req.From, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	resp := &ListExpensesResponse{Items: make([]ExpenseResponse, len(expenses)), Total: decimal.Zero}
	for i := range expenses {
		resp.Items[i] = toExpenseResponse(&expenses[i])
		resp.Total = resp.Total.Add(expenses[i].Amount)
	}
	return resp, nil
}
