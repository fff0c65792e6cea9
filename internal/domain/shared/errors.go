package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so errors.Is works against the
// sentinels below even when the message carries entity context.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrNotFound is the generic not-found error
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

// Ledger error codes
const (
	CodePropertyNotFound    = "PROPERTY_NOT_FOUND"
	CodeUnitNotFound        = "UNIT_NOT_FOUND"
	CodeUnitNotVacant       = "UNIT_NOT_VACANT"
	CodeTenantNotFound      = "TENANT_NOT_FOUND"
	CodeBillNotFound        = "BILL_NOT_FOUND"
	CodeInvoiceNotFound     = "INVOICE_NOT_FOUND"
	CodeNonMonotonicReading = "NON_MONOTONIC_READING"
	CodeNoBaselineReading   = "NO_BASELINE_READING"
	CodePeriodAlreadyBilled = "PERIOD_ALREADY_BILLED"
	CodeNoBillForPeriod     = "NO_BILL_FOR_PERIOD"
	CodeInvoiceTerminal     = "INVOICE_TERMINAL"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidPeriod       = "INVALID_PERIOD"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeOptimisticLock      = "OPTIMISTIC_LOCK_ERROR"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
	CodeAlreadyInvoiced     = "ALREADY_INVOICED"
	CodePeriodSuperseded    = "PERIOD_SUPERSEDED"
)

// Ledger sentinels
var (
	ErrPropertyNotFound    = NewDomainError(CodePropertyNotFound, "Property not found")
	ErrUnitNotFound        = NewDomainError(CodeUnitNotFound, "Unit not found")
	ErrUnitNotVacant       = NewDomainError(CodeUnitNotVacant, "Unit is not vacant")
	ErrTenantNotFound      = NewDomainError(CodeTenantNotFound, "Tenant not found")
	ErrBillNotFound        = NewDomainError(CodeBillNotFound, "Bill not found")
	ErrInvoiceNotFound     = NewDomainError(CodeInvoiceNotFound, "Invoice not found")
	ErrNonMonotonicReading = NewDomainError(CodeNonMonotonicReading, "Meter reading is lower than the previous reading")
	ErrNoBaselineReading   = NewDomainError(CodeNoBaselineReading, "No baseline meter reading")
	ErrPeriodAlreadyBilled = NewDomainError(CodePeriodAlreadyBilled, "Period already billed")
	ErrNoBillForPeriod     = NewDomainError(CodeNoBillForPeriod, "No bill for period")
	ErrInvoiceTerminal     = NewDomainError(CodeInvoiceTerminal, "Invoice is in a terminal status")
	ErrInvalidAmount       = NewDomainError(CodeInvalidAmount, "Amount must be greater than zero")
	ErrOptimisticLock      = NewDomainError(CodeOptimisticLock, "Record was modified by another transaction")
	ErrDuplicateRequest    = NewDomainError(CodeDuplicateRequest, "Request already processed")
)
