package handler

import (
	"github.com/gin-gonic/gin"
	paymentapp "github.com/rentledger/backend/internal/application/payment"
	"github.com/rentledger/backend/internal/infrastructure/logger"
)

// IdempotencyKeyHeader carries the client's retry key for payment creation
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment recording and payment queries
type PaymentHandler struct {
	BaseHandler
	payments *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type listPaymentsQuery struct {
	pageQuery
	Period string `form:"period" binding:"omitempty,period"`
	Type   string `form:"type" binding:"omitempty,oneof=Rent Deposit"`
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a payment
// @Description  Rent payments are applied to the tenant's bill for the period, capped at the balance;
// @Description  any excess becomes overpayment. Deposit payments only count toward the deposit.
// @Description  Retrying with the same Idempotency-Key returns DUPLICATE_REQUEST instead of paying twice.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id              path   string true  "Property ID" format(uuid)
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request         body   paymentapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[paymentapp.RecordPaymentResponse]
// @Failure      400 {object} ErrorResponse "INVALID_AMOUNT"
// @Failure      404 {object} ErrorResponse "TENANT_NOT_FOUND"
// @Failure      409 {object} ErrorResponse "DUPLICATE_REQUEST"
// @Failure      422 {object} ErrorResponse "NO_BILL_FOR_PERIOD"
// @Router       /properties/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req paymentapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" {
		ctx, _ = logger.WithIdempotencyKey(ctx, logger.FromContext(ctx), key)
	}
	resp, err := h.payments.RecordPayment(ctx, propertyID, req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listPayments
// @Summary      List a property's payments
// @Tags         payments
// @Produce      json
// @Param        id        path  string true  "Property ID" format(uuid)
// @Param        period    query string false "Billing month" example(2025-06)
// @Param        tenantId  query string false "Tenant ID" format(uuid)
// @Param        type      query string false "Rent or Deposit"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q listPaymentsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	tenantID, ok := h.optionalUUIDQuery(c, "tenantId", "tenant_id")
	if !ok {
		return
	}
	resp, err := h.payments.ListPayments(c.Request.Context(), propertyID, paymentapp.ListPaymentsRequest{
		Period:   q.Period,
		TenantID: tenantID,
		Type:     q.Type,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// TenantPayments godoc
// @ID           listTenantPayments
// @Summary      A tenant's payment history
// @Tags         payments
// @Produce      json
// @Param        tenantId path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /payments/tenant/{tenantId} [get]
func (h *PaymentHandler) TenantPayments(c *gin.Context) {
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	resp, err := h.payments.ListTenantPayments(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DepositStatus godoc
// @ID           getDepositStatus
// @Summary      How much of a tenant's deposit has been paid
// @Tags         payments
// @Produce      json
// @Param        tenantId path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.DepositStatusResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /payments/tenant/{tenantId}/deposit [get]
func (h *PaymentHandler) DepositStatus(c *gin.Context) {
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	resp, err := h.payments.DepositStatus(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
