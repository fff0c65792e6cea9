package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{shared.CodeUnitNotVacant, http.StatusConflict},
		{shared.CodePeriodAlreadyBilled, http.StatusConflict},
		{shared.CodeDuplicateRequest, http.StatusConflict},
		{shared.CodeOptimisticLock, http.StatusConflict},
		{shared.CodeNonMonotonicReading, http.StatusBadRequest},
		{shared.CodeInvalidAmount, http.StatusBadRequest},
		{shared.CodeNoBaselineReading, http.StatusUnprocessableEntity},
		{shared.CodeInvoiceTerminal, http.StatusUnprocessableEntity},
		{shared.CodeNoBillForPeriod, http.StatusUnprocessableEntity},
		// naming rules
		{shared.CodePropertyNotFound, http.StatusNotFound},
		{"READING_NOT_FOUND", http.StatusNotFound},
		{"INVALID_WATER_METHOD", http.StatusBadRequest},
		{"DUPLICATE_UNIT", http.StatusConflict},
		{"RENDERER_UNAVAILABLE", http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeConcurrencyConflict, NormalizeErrorCode("CONCURRENCY_CONFLICT"))
	assert.Equal(t, ErrCodeInvalidState, NormalizeErrorCode("INVALID_STATE"))
	assert.Equal(t, shared.CodeUnitNotVacant, NormalizeErrorCode(shared.CodeUnitNotVacant))
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 10, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestErrorResponses_JSON(t *testing.T) {
	body, err := json.Marshal(NewErrorResponseWithRequestID(shared.CodeUnitNotVacant, "Unit is not vacant", "req-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"UNIT_NOT_VACANT","message":"Unit is not vacant"},"request_id":"req-1"}`, string(body))

	body, err = json.Marshal(NewValidationErrorResponse([]ValidationDetail{{Field: "period", Message: "period must be YYYY-MM", Tag: "period"}}, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_VALIDATION","message":"Request validation failed","details":[{"field":"period","message":"period must be YYYY-MM","tag":"period"}]}}`, string(body))
}
