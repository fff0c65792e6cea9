package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/rentledger/backend/internal/application/report"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ReportHandler serves the read-only property reports
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Occupancy godoc
// @ID           getOccupancyReport
// @Summary      Occupied and vacant units
// @Tags         reports
// @Produce      json
// @Param        propertyId path string true "Property ID" format(uuid)
// @Success      200 {object} APIResponse[reportapp.OccupancyReport]
// @Failure      404 {object} ErrorResponse
// @Router       /reports/{propertyId}/occupancy [get]
func (h *ReportHandler) Occupancy(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	resp, err := h.reports.Occupancy(c.Request.Context(), propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Balances godoc
// @ID           getBalancesReport
// @Summary      Each active tenant's standing after their latest bill
// @Tags         reports
// @Produce      json
// @Param        propertyId  path  string true  "Property ID" format(uuid)
// @Param        status      query string false "Owing, Credit or Settled"
// @Param        min_balance query number false "Only balances at or above this amount"
// @Success      200 {object} APIResponse[reportapp.BalancesReport]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reports/{propertyId}/balances [get]
func (h *ReportHandler) Balances(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	req := reportapp.BalancesRequest{Standing: c.Query("status")}
	switch req.Standing {
	case "", "Owing", "Credit", "Settled":
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid status: must be one of Owing Credit Settled")
		return
	}
	if raw := firstQuery(c, "min_balance", "minBalance"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid min_balance: must be a number")
			return
		}
		req.MinBalance = &v
	}
	resp, err := h.reports.Balances(c.Request.Context(), propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Financials godoc
// @ID           getFinancialReport
// @Summary      Collections against expenses for a period
// @Tags         reports
// @Produce      json
// @Param        propertyId path  string true "Property ID" format(uuid)
// @Param        period     query string true "Billing month" example(2025-06)
// @Success      200 {object} APIResponse[reportapp.FinancialReport]
// @Failure      400 {object} ErrorResponse "INVALID_PERIOD"
// @Failure      404 {object} ErrorResponse
// @Router       /reports/{propertyId}/financials [get]
func (h *ReportHandler) Financials(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	resp, err := h.reports.Financials(c.Request.Context(), propertyID, c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Utilities godoc
// @ID           getUtilityReport
// @Summary      Water consumption and charges per unit for a period
// @Tags         reports
// @Produce      json
// @Param        propertyId path  string true "Property ID" format(uuid)
// @Param        period     query string true "Billing month" example(2025-06)
// @Success      200 {object} APIResponse[reportapp.UtilityReport]
// @Failure      400 {object} ErrorResponse "INVALID_PERIOD"
// @Failure      404 {object} ErrorResponse
// @Router       /reports/{propertyId}/utilities [get]
func (h *ReportHandler) Utilities(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	resp, err := h.reports.Utilities(c.Request.Context(), propertyID, c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BillingStats godoc
// @ID           getBillingStats
// @Summary      Billed, collected and outstanding totals for a period
// @Tags         reports
// @Produce      json
// @Param        propertyId path  string true "Property ID" format(uuid)
// @Param        period     query string true "Billing month" example(2025-06)
// @Success      200 {object} APIResponse[reportapp.BillingStats]
// @Failure      400 {object} ErrorResponse "INVALID_PERIOD"
// @Failure      404 {object} ErrorResponse
// @Router       /reports/{propertyId}/billing-stats [get]
func (h *ReportHandler) BillingStats(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	resp, err := h.reports.BillingStats(c.Request.Context(), propertyID, c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
