package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	meteringapp "github.com/rentledger/backend/internal/application/metering"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
)

// ReadingHandler handles water meter readings
type ReadingHandler struct {
	BaseHandler
	readings *meteringapp.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readings *meteringapp.ReadingService) *ReadingHandler {
	return &ReadingHandler{readings: readings}
}

// Record godoc
// @ID           recordWaterReadings
// @Summary      Record a batch of meter readings
// @Description  Each unit is checked on its own: a rejected reading does not stop its siblings.
// @Description  The response is 201 when every reading was recorded and 207 when some failed.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        id      path string true "Property ID" format(uuid)
// @Param        request body meteringapp.RecordReadingsRequest true "Readings taken on one date"
// @Success      201 {object} APIResponse[meteringapp.RecordReadingsResponse]
// @Success      207 {object} APIResponse[meteringapp.RecordReadingsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "PROPERTY_NOT_METERED"
// @Router       /properties/{id}/water-readings [post]
func (h *ReadingHandler) Record(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req meteringapp.RecordReadingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.readings.RecordReadings(c.Request.Context(), propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// List godoc
// @ID           listWaterReadings
// @Summary      List meter readings
// @Description  Ordered by date, each with the consumption since the previous reading (null for a baseline).
// @Tags         readings
// @Produce      json
// @Param        id     path  string true  "Property ID" format(uuid)
// @Param        unitId query string false "Restrict to one unit"
// @Success      200 {object} APIResponse[[]meteringapp.ReadingResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /properties/{id}/water-readings [get]
func (h *ReadingHandler) List(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	readings, err := h.readings.ListReadings(c.Request.Context(), propertyID, firstQuery(c, "unitId", "unit_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, readings)
}

// WaterCharge godoc
// @ID           getWaterCharge
// @Summary      A unit's water charge for a period
// @Description  Consumption between the period's reading and the one before it, at the property's rate.
// @Tags         readings
// @Produce      json
// @Param        id     path  string true "Property ID" format(uuid)
// @Param        unitId query string true "Unit ID"
// @Param        period query string true "Billing month" example(2025-06)
// @Success      200 {object} APIResponse[meteringapp.WaterChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "NO_BASELINE_READING"
// @Router       /properties/{id}/water-readings/charge [get]
func (h *ReadingHandler) WaterCharge(c *gin.Context) {
	propertyID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	unitID := firstQuery(c, "unitId", "unit_id")
	if unitID == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "unitId is required")
		return
	}
	resp, err := h.readings.WaterCharge(c.Request.Context(), propertyID, unitID, c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
