package handler

import (
	"github.com/gin-gonic/gin"
	expenseapp "github.com/rentledger/backend/internal/application/expense"
)

// ExpenseHandler handles property expenses
type ExpenseHandler struct {
	BaseHandler
	expenses *expenseapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *expenseapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Record godoc
// @ID           recordExpense
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id      path string true "Property ID" format(uuid)
// @Param        request body expenseapp.RecordExpenseRequest true "Expense"
// @Success      201 {object} APIResponse[expenseapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse "INVALID_AMOUNT"
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/expenses [post]
func (h *ExpenseHandler) Record(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req expenseapp.RecordExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.expenses.RecordExpense(c.Request.Context(), propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listExpenses
// @Summary      List expenses with their total
// @Tags         expenses
// @Produce      json
// @Param        id   path  string true  "Property ID" format(uuid)
// @Param        from query string false "First day, inclusive" example(2025-06-01)
// @Param        to   query string false "Last day, inclusive" example(2025-06-30)
// @Success      200 {object} APIResponse[expenseapp.ListExpensesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	from, ok := h.optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.optionalDateQuery(c, "to")
	if !ok {
		return
	}
	resp, err := h.expenses.ListExpenses(c.Request.Context(), propertyID, expenseapp.ListExpensesRequest{From: from, To: to})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
