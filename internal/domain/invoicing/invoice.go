package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultNumberPrefix is used when no prefix is configured
const DefaultNumberPrefix = "INV"

// Invoice is the document issued to a tenant for one bill.
// Amounts mirror the bill; status follows the invoice state machine.
type Invoice struct {
	shared.PropertyAggregateRoot
	BillID        uuid.UUID
	TenantID      uuid.UUID
	UnitID        string
	Period        valueobject.Period
	Sequence      int64
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       *time.Time
	LineItems     LineItems
	TotalDue      decimal.Decimal
	AmountPaid    decimal.Decimal
	Balance       decimal.Decimal
	Overpayment   decimal.Decimal
	Status        InvoiceStatus
	SentEmail     bool
	SentWhatsApp  bool
	LastSentAt    *time.Time
	CancelledAt   *time.Time
}

// IssueInput holds the data for issuing an invoice from a bill
type IssueInput struct {
	Bill *billing.Bill
	// Sequence is the property-scoped number allocated by the property
	Sequence  int64
	Prefix    string
	IssueDate time.Time
	// DueDate is the payment deadline for the bill's period, if configured
	DueDate *time.Time
}

// FormatNumber renders an invoice number such as INV-00042
func FormatNumber(prefix string, sequence int64) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return fmt.Sprintf("%s-%05d", prefix, sequence)
}

// Issue materializes a bill into an Unpaid invoice with its line items.
// A bill that already received payments starts in the status those payments imply.
func Issue(in IssueInput) (*Invoice, error) {
	if in.Bill == nil {
		return nil, shared.ErrBillNotFound
	}
	if in.Sequence <= 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Invoice number must be positive")
	}
	if in.IssueDate.IsZero() {
		in.IssueDate = time.Now()
	}
	b := in.Bill

	inv := &Invoice{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(b.PropertyID),
		BillID:                b.ID,
		TenantID:              b.TenantID,
		UnitID:                b.UnitID,
		Period:                b.Period,
		Sequence:              in.Sequence,
		InvoiceNumber:         FormatNumber(in.Prefix, in.Sequence),
		IssueDate:             in.IssueDate,
		DueDate:               in.DueDate,
		LineItems:             BuildLineItems(b),
		Status:                InvoiceStatusUnpaid,
	}
	inv.mirror(b)
	if b.PaymentsReceived.IsPositive() {
		inv.Status = inv.derive()
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return inv, nil
}

// BuildLineItems breaks a bill into its charge components. Carry lines are
// only present when non-zero; an overpayment carry is a negative credit line.
func BuildLineItems(b *billing.Bill) LineItems {
	items := LineItems{
		{Label: LabelRent, Amount: b.Rent},
		{Label: LabelWater, Amount: b.WaterCharge, Usage: b.WaterUsage},
		{Label: LabelGarbage, Amount: b.GarbageFee},
	}
	if b.CarriedBalance.IsPositive() {
		items = append(items, LineItem{Label: LabelCarriedBalance, Amount: b.CarriedBalance})
	}
	if b.CarriedOverpayment.IsPositive() {
		items = append(items, LineItem{Label: LabelCarriedOverpayment, Amount: b.CarriedOverpayment.Neg()})
	}
	return items
}

// SetStatus applies an operator-driven status change.
// Leaving Paid or Cancelled fails with InvoiceTerminal.
func (inv *Invoice) SetStatus(to InvoiceStatus, now time.Time) error {
	if !to.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Unknown invoice status %q", to))
	}
	if !inv.Status.CanTransitionTo(to) {
		return shared.NewDomainError(shared.CodeInvoiceTerminal,
			fmt.Sprintf("Invoice %s is %s and cannot change status", inv.InvoiceNumber, inv.Status))
	}
	if inv.Status == to {
		return nil
	}
	inv.transition(to, now, StatusChangeManual)
	return nil
}

// SyncWithBill mirrors the bill's amounts after a payment and moves the
// status to Paid, PartiallyPaid or Unpaid from those amounts alone, so a
// payment lifts an Overdue invoice to PartiallyPaid. Terminal invoices keep
// their status. Returns true if the status changed.
func (inv *Invoice) SyncWithBill(b *billing.Bill, now time.Time) bool {
	inv.mirror(b)
	if !inv.Status.IsTerminal() {
		if next := inv.derive(); next != inv.Status {
			inv.transition(next, now, StatusChangePayment)
			return true
		}
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return false
}

// MarkOverdue moves an open invoice past its due date with an outstanding
// balance to Overdue. Returns true if the status changed.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if inv.Status != InvoiceStatusUnpaid && inv.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	if !inv.isPastDue(now) || !inv.Balance.IsPositive() {
		return false
	}
	inv.transition(InvoiceStatusOverdue, now, StatusChangeDeadline)
	return true
}

// MarkSent records a successful delivery. Status is unaffected.
func (inv *Invoice) MarkSent(channel Channel, at time.Time) error {
	switch channel {
	case ChannelEmail:
		inv.SentEmail = true
	case ChannelWhatsApp:
		inv.SentWhatsApp = true
	default:
		return shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Unknown delivery channel %q", channel))
	}
	inv.LastSentAt = &at
	inv.UpdatedAt = at
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceSentEvent(inv, channel))
	return nil
}

// IsSent reports whether the invoice went out on the given channel
func (inv *Invoice) IsSent(channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return inv.SentEmail
	case ChannelWhatsApp:
		return inv.SentWhatsApp
	}
	return false
}

func (inv *Invoice) mirror(b *billing.Bill) {
	inv.TotalDue = b.TotalDue
	inv.AmountPaid = b.PaymentsReceived
	inv.Balance = b.Balance
	inv.Overpayment = b.Overpayment
}

// derive reads the payment status off the mirrored amounts. Overdue is
// never derived; only MarkOverdue and operators set it.
func (inv *Invoice) derive() InvoiceStatus {
	if inv.Balance.IsZero() && (inv.AmountPaid.IsPositive() || !inv.TotalDue.IsPositive()) {
		return InvoiceStatusPaid
	}
	if inv.AmountPaid.IsPositive() {
		return InvoiceStatusPartiallyPaid
	}
	return InvoiceStatusUnpaid
}

func (inv *Invoice) isPastDue(now time.Time) bool {
	return inv.DueDate != nil && now.After(*inv.DueDate)
}

func (inv *Invoice) transition(to InvoiceStatus, now time.Time, reason string) {
	from := inv.Status
	inv.Status = to
	if to == InvoiceStatusCancelled {
		inv.CancelledAt = &now
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, from, to, reason))
}
