package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/rentledger/backend/internal/application/invoicing"
)

// InvoiceHandler handles invoice issue, status changes, delivery and PDFs
type InvoiceHandler struct {
	BaseHandler
	invoices *invoicingapp.InvoiceService
	now      func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, now: time.Now}
}

type listInvoicesQuery struct {
	pageQuery
	Period string `form:"period" binding:"omitempty,period"`
	Status string `form:"status"`
}

// Issue godoc
// @ID           issueInvoices
// @Summary      Issue invoices for a billed period
// @Description  One invoice per bill. Bills that already have an invoice are skipped.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string true "Property ID" format(uuid)
// @Param        request body invoicingapp.IssueInvoicesRequest true "Billing period"
// @Success      201 {object} APIResponse[invoicingapp.IssueInvoicesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "NO_BILL_FOR_PERIOD"
// @Router       /properties/{id}/invoices [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.IssueInvoicesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoices.IssueForPeriod(c.Request.Context(), propertyID, req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listInvoices
// @Summary      List a property's invoices
// @Tags         invoices
// @Produce      json
// @Param        id        path  string true  "Property ID" format(uuid)
// @Param        period    query string false "Billing month" example(2025-06)
// @Param        status    query string false "Unpaid, PartiallyPaid, Paid, Overdue or Cancelled"
// @Param        tenantId  query string false "Tenant ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q listInvoicesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	tenantID, ok := h.optionalUUIDQuery(c, "tenantId", "tenant_id")
	if !ok {
		return
	}
	resp, err := h.invoices.ListInvoices(c.Request.Context(), propertyID, invoicingapp.ListInvoicesRequest{
		Period:   q.Period,
		Status:   q.Status,
		TenantID: tenantID,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id        path string true "Property ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse "INVOICE_NOT_FOUND"
// @Router       /properties/{id}/invoices/{invoiceId} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	invoiceID, ok := h.uuidParam(c, "invoiceId")
	if !ok {
		return
	}
	resp, err := h.invoices.GetInvoice(c.Request.Context(), propertyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TenantInvoices godoc
// @ID           listTenantInvoices
// @Summary      A tenant's invoices within a property
// @Tags         invoices
// @Produce      json
// @Param        id       path string true "Property ID" format(uuid)
// @Param        tenantId path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[[]invoicingapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/invoices/tenant/{tenantId} [get]
func (h *InvoiceHandler) TenantInvoices(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	resp, err := h.invoices.ListTenantInvoices(c.Request.Context(), propertyID, tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetStatus godoc
// @ID           setInvoiceStatus
// @Summary      Override an invoice's status
// @Description  Paid and Cancelled are terminal: a terminal invoice rejects every further change.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id        path string true "Property ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Param        request   body invoicingapp.SetStatusRequest true "New status"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse "INVALID_STATUS"
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INVOICE_TERMINAL"
// @Router       /properties/{id}/invoices/{invoiceId}/status [patch]
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	invoiceID, ok := h.uuidParam(c, "invoiceId")
	if !ok {
		return
	}
	var req invoicingapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoices.SetStatus(c.Request.Context(), propertyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Send godoc
// @ID           sendInvoice
// @Summary      Deliver an invoice by email or WhatsApp
// @Description  Records the channel as sent. The invoice status is unchanged.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id        path string true "Property ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Param        request   body invoicingapp.SendInvoiceRequest true "Delivery channel"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "NO_RECIPIENT, INVOICE_TERMINAL"
// @Router       /properties/{id}/invoices/{invoiceId}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	invoiceID, ok := h.uuidParam(c, "invoiceId")
	if !ok {
		return
	}
	var req invoicingapp.SendInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoices.SendInvoice(c.Request.Context(), propertyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkOverdue godoc
// @ID           markInvoicesOverdue
// @Summary      Run the overdue sweep for a property
// @Description  Open invoices past their deadline with a balance move to Overdue. as_of defaults to now.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string true  "Property ID" format(uuid)
// @Param        request body invoicingapp.MarkOverdueRequest false "Sweep time"
// @Success      200 {object} APIResponse[invoicingapp.MarkOverdueResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/invoices/overdue [post]
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.MarkOverdueRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	asOf := h.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	resp, err := h.invoices.MarkOverdueForProperty(c.Request.Context(), propertyID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PDF godoc
// @ID           getInvoicePdf
// @Summary      Render an invoice as PDF
// @Description  Streams the PDF. With object storage configured, ?redirect=true answers with a
// @Description  302 to the presigned URL and ?format=json returns the download link instead.
// @Tags         invoices
// @Produce      application/pdf
// @Produce      json
// @Param        id        path  string true  "Property ID" format(uuid)
// @Param        invoiceId path  string true  "Invoice ID" format(uuid)
// @Param        redirect  query bool   false "Redirect to the stored copy"
// @Param        format    query string false "json for the download link"
// @Success      200 {file}   binary
// @Success      302 {string} string "Presigned download URL"
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "RENDERER_UNAVAILABLE"
// @Router       /properties/{id}/invoices/{invoiceId}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	invoiceID, ok := h.uuidParam(c, "invoiceId")
	if !ok {
		return
	}
	doc, err := h.invoices.RenderPDF(c.Request.Context(), propertyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if doc.URL != "" {
		switch {
		case c.Query("format") == "json":
			h.Success(c, doc)
			return
		case c.Query("redirect") == "true":
			c.Redirect(http.StatusFound, doc.URL)
			return
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
