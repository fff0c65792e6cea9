package dto

import (
	"net/http"
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
)

// Transport error codes. Ledger rule violations keep the domain code
// (UNIT_NOT_VACANT, PERIOD_ALREADY_BILLED, ...) so clients can branch on them.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeTimeout             = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// here fall back to the suffix and prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeTimeout:             http.StatusGatewayTimeout,

	shared.CodeInvalidAmount:       http.StatusBadRequest,
	shared.CodeInvalidPeriod:       http.StatusBadRequest,
	shared.CodeInvalidStatus:       http.StatusBadRequest,
	shared.CodeNonMonotonicReading: http.StatusBadRequest,

	shared.CodeUnitNotVacant:       http.StatusConflict,
	shared.CodePeriodAlreadyBilled: http.StatusConflict,
	shared.CodeAlreadyInvoiced:     http.StatusConflict,
	shared.CodePeriodSuperseded:    http.StatusConflict,
	shared.CodeOptimisticLock:      http.StatusConflict,
	shared.CodeDuplicateRequest:    http.StatusConflict,
	"SAME_UNIT":                    http.StatusConflict,

	shared.CodeNoBaselineReading: http.StatusUnprocessableEntity,
	shared.CodeNoBillForPeriod:   http.StatusUnprocessableEntity,
	shared.CodeInvoiceTerminal:   http.StatusUnprocessableEntity,
	"INITIAL_READING_REQUIRED":   http.StatusUnprocessableEntity,
	"READING_OUT_OF_ORDER":       http.StatusUnprocessableEntity,
	"PROPERTY_NOT_METERED":       http.StatusUnprocessableEntity,
	"TENANT_NOT_ACTIVE":          http.StatusUnprocessableEntity,
	"NO_RECIPIENT":               http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped codes follow their naming: *_NOT_FOUND is 404, INVALID_* is 400,
// DUPLICATE_* is 409, *_UNAVAILABLE is 503. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_UNAVAILABLE"):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic domain codes to transport codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a generic code to the transport format.
// Ledger codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
