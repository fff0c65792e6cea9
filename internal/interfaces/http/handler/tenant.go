package handler

import (
	"github.com/gin-gonic/gin"
	occupancyapp "github.com/rentledger/backend/internal/application/occupancy"
)

// TenantHandler handles tenant assignment, vacating and transfers
type TenantHandler struct {
	BaseHandler
	tenants *occupancyapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants *occupancyapp.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

type listTenantsQuery struct {
	pageQuery
	Status string `form:"status" binding:"omitempty,oneof=active vacated"`
	Search string `form:"search" binding:"max=100"`
}

// Assign godoc
// @ID           assignTenant
// @Summary      Assign a tenant to a vacant unit
// @Description  Rent and deposit default to the unit's terms. Metered properties require
// @Description  initial_water_reading, stored as the baseline reading at lease start.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body occupancyapp.AssignTenantRequest true "Tenant details"
// @Success      201 {object} APIResponse[occupancyapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "PROPERTY_NOT_FOUND, UNIT_NOT_FOUND"
// @Failure      409 {object} ErrorResponse "UNIT_NOT_VACANT"
// @Failure      422 {object} ErrorResponse "INITIAL_READING_REQUIRED"
// @Router       /tenants [post]
func (h *TenantHandler) Assign(c *gin.Context) {
	var req occupancyapp.AssignTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.tenants.AssignTenant(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listTenants
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Param        propertyId query string false "Property ID" format(uuid)
// @Param        status     query string false "active or vacated"
// @Param        search     query string false "Name or phone contains"
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]occupancyapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	var q listTenantsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	propertyID, ok := h.optionalUUIDQuery(c, "propertyId", "property_id")
	if !ok {
		return
	}
	resp, err := h.tenants.ListTenants(c.Request.Context(), occupancyapp.ListTenantsRequest{
		PropertyID: propertyID,
		Status:     q.Status,
		Search:     q.Search,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get godoc
// @ID           getTenant
// @Summary      Get a tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[occupancyapp.TenantResponse]
// @Failure      404 {object} ErrorResponse "TENANT_NOT_FOUND"
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.tenants.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Vacate godoc
// @ID           vacateTenant
// @Summary      Vacate a tenant
// @Description  Frees the unit. The outstanding balance and history stay on record.
// @Description  Vacating an already vacated tenant succeeds without change.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id      path string true  "Tenant ID" format(uuid)
// @Param        request body occupancyapp.VacateTenantRequest false "Move-out date, defaults to now"
// @Success      200 {object} APIResponse[occupancyapp.TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /tenants/{id}/vacate [post]
func (h *TenantHandler) Vacate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req occupancyapp.VacateTenantRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.tenants.VacateTenant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transfer godoc
// @ID           transferTenant
// @Summary      Move a tenant to another unit of the same property
// @Description  Keeps the tenant identity so balances carry forward under the new unit.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id      path string true "Tenant ID" format(uuid)
// @Param        request body occupancyapp.TransferTenantRequest true "Target unit"
// @Success      200 {object} APIResponse[occupancyapp.TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "UNIT_NOT_VACANT, SAME_UNIT"
// @Failure      422 {object} ErrorResponse "TENANT_NOT_ACTIVE"
// @Router       /tenants/{id}/transfer [post]
func (h *TenantHandler) Transfer(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req occupancyapp.TransferTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.tenants.TransferTenant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
