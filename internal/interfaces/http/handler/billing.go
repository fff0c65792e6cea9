package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	billingapp "github.com/rentledger/backend/internal/application/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
)

// BillingHandler handles bill generation and bill queries
type BillingHandler struct {
	BaseHandler
	billing *billingapp.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billing *billingapp.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// Generate godoc
// @ID           generateBills
// @Summary      Generate a period's bills
// @Description  Creates one bill per active tenant. Calling again for a billed period returns the
// @Description  existing bills with created=false, unless strict=true asks for PERIOD_ALREADY_BILLED.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        propertyId path  string true  "Property ID" format(uuid)
// @Param        strict     query bool   false "Fail when the period is already billed"
// @Param        request    body  billingapp.GenerateBillsRequest true "Billing period"
// @Success      201 {object} APIResponse[billingapp.GenerateBillsResponse] "Bills created"
// @Success      200 {object} APIResponse[billingapp.GenerateBillsResponse] "Period was already billed"
// @Failure      400 {object} ErrorResponse "INVALID_PERIOD"
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "PERIOD_ALREADY_BILLED or PERIOD_SUPERSEDED"
// @Failure      422 {object} ErrorResponse "NO_BASELINE_READING"
// @Router       /billing/generate/{propertyId} [post]
func (h *BillingHandler) Generate(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	strict := false
	if raw := c.Query("strict"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid strict: expected true or false")
			return
		}
		strict = v
	}
	var req billingapp.GenerateBillsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.billing.GenerateBills(c.Request.Context(), propertyID, req.Period, strict)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @ID           listBills
// @Summary      List a period's bills
// @Tags         billing
// @Produce      json
// @Param        propertyId path  string true "Property ID" format(uuid)
// @Param        period     query string true "Billing month" example(2025-06)
// @Success      200 {object} APIResponse[[]billingapp.BillResponse]
// @Failure      400 {object} ErrorResponse "INVALID_PERIOD"
// @Failure      404 {object} ErrorResponse
// @Router       /billing/{propertyId} [get]
func (h *BillingHandler) List(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "propertyId")
	if !ok {
		return
	}
	period := c.Query("period")
	if period == "" {
		h.Error(c, http.StatusBadRequest, shared.CodeInvalidPeriod, "period is required")
		return
	}
	bills, err := h.billing.ListBills(c.Request.Context(), propertyID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}

// TenantBills godoc
// @ID           listTenantBills
// @Summary      A tenant's bill history
// @Tags         billing
// @Produce      json
// @Param        tenantId path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[[]billingapp.BillResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /billing/tenant/{tenantId} [get]
func (h *BillingHandler) TenantBills(c *gin.Context) {
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	bills, err := h.billing.ListTenantBills(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}

// CarryForward godoc
// @ID           getCarryForward
// @Summary      What a tenant carries into a period
// @Description  Balance and overpayment from the tenant's latest bill before the period.
// @Tags         billing
// @Produce      json
// @Param        tenantId path  string true "Tenant ID" format(uuid)
// @Param        period   query string true "Billing month" example(2025-07)
// @Success      200 {object} APIResponse[billingapp.CarryForwardResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /billing/tenant/{tenantId}/carry-forward [get]
func (h *BillingHandler) CarryForward(c *gin.Context) {
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	resp, err := h.billing.CarryForward(c.Request.Context(), tenantID, c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
