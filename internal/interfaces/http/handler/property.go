package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	occupancyapp "github.com/rentledger/backend/internal/application/occupancy"
	propertyapp "github.com/rentledger/backend/internal/application/property"
)

// UnitLister lists a property's units. The occupancy service implements it.
type UnitLister interface {
	ListUnits(ctx context.Context, propertyID uuid.UUID, status string) ([]occupancyapp.UnitResponse, error)
}

// PropertyHandler handles the property directory
type PropertyHandler struct {
	BaseHandler
	properties *propertyapp.PropertyService
	units      UnitLister
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(properties *propertyapp.PropertyService, units UnitLister) *PropertyHandler {
	return &PropertyHandler{properties: properties, units: units}
}

// Create godoc
// @ID           createProperty
// @Summary      Register a property
// @Description  Creates the property and one vacant unit per declared unit id
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        request body propertyapp.CreatePropertyRequest true "Property and unit types"
// @Success      201 {object} APIResponse[propertyapp.PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "DUPLICATE_UNIT"
// @Router       /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyapp.CreatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.properties.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listProperties
// @Summary      List properties
// @Tags         properties
// @Produce      json
// @Param        search    query string false "Name contains"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]propertyapp.PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	var req propertyapp.ListPropertiesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.properties.ListProperties(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get godoc
// @ID           getProperty
// @Summary      Get a property
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} APIResponse[propertyapp.PropertyResponse]
// @Failure      404 {object} ErrorResponse "PROPERTY_NOT_FOUND"
// @Router       /properties/{id} [get]
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.properties.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateProperty
// @Summary      Update property settings
// @Description  Partial update of name, address, utilities, payment details, service rate and landlord.
// @Description  New rates apply to bills generated afterwards.
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id      path string true "Property ID" format(uuid)
// @Param        request body propertyapp.UpdatePropertyRequest true "Settings to change"
// @Success      200 {object} APIResponse[propertyapp.PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "OPTIMISTIC_LOCK_ERROR"
// @Router       /properties/{id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req propertyapp.UpdatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.properties.UpdateSettings(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListUnits godoc
// @ID           listPropertyUnits
// @Summary      List a property's units
// @Tags         properties
// @Produce      json
// @Param        id     path  string true  "Property ID" format(uuid)
// @Param        status query string false "vacant or occupied"
// @Success      200 {object} APIResponse[[]occupancyapp.UnitResponse]
// @Failure      400 {object} ErrorResponse "INVALID_STATUS"
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/units [get]
func (h *PropertyHandler) ListUnits(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	units, err := h.units.ListUnits(c.Request.Context(), id, c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}
