package invoicing

import (
	"fmt"

	"github.com/rentledger/backend/internal/domain/shared"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "Unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PartiallyPaid"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
	InvoiceStatusCancelled     InvoiceStatus = "Cancelled"
)

// AllStatuses lists every invoice status in display order
var AllStatuses = []InvoiceStatus{
	InvoiceStatusUnpaid,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses an invoice never leaves
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen returns true while money is still expected on the invoice
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// CanTransitionTo reports whether the state machine allows from -> to.
// Anything goes except leaving a terminal status.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	if !to.IsValid() {
		return false
	}
	if s == to {
		return true
	}
	return !s.IsTerminal()
}

// ParseStatus validates a status string
func ParseStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(s)
	if !status.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Unknown invoice status %q", s))
	}
	return status, nil
}

// Channel is a delivery channel for sending invoices
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// IsValid checks if the channel is known
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}
