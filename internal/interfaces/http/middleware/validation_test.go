package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type periodRequest struct {
	Period      string `json:"period" binding:"required,period"`
	WaterMethod string `json:"water_method" binding:"omitempty,water_method"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/x", func(c *gin.Context) {
		var req periodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestValidation_LedgerTags(t *testing.T) {
	r := validationRouter()
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req.Header.Set(RequestIDKey, "req-9")
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, post(`{"period":"2025-02","water_method":"Metered"}`).Code)

	w := post(`{"period":"2025-13","water_method":"Hourly"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-9", resp.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "period", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be a billing month in YYYY-MM format", resp.Error.Details[0].Message)
	assert.Equal(t, "water_method", resp.Error.Details[1].Field)
	assert.Equal(t, "Must be one of: Fixed Metered", resp.Error.Details[1].Message)
}

func TestValidation_MalformedJSON(t *testing.T) {
	w := serve(validationRouter(), httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"period":`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
}
