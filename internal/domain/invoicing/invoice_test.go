package invoicing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var (
	june      = valueobject.MustParsePeriod("2025-06")
	issueDate = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	dueDate   = june.DayDate(5)
)

func createTestBill(t *testing.T, rent int64, carry billing.CarryForward) *billing.Bill {
	t.Helper()
	b, err := billing.NewBill(billing.BillInput{
		PropertyID: uuid.New(),
		TenantID:   uuid.New(),
		UnitID:     "A1",
		Period:     june,
		Rent:       d(rent),
		Water: metering.WaterCharge{
			Amount: d(3750),
			Usage:  &metering.WaterUsage{PreviousReading: d(120), CurrentReading: d(135), Rate: d(250), Units: d(15)},
		},
		GarbageFee: d(250),
		Carry:      carry,
	})
	require.NoError(t, err)
	return b
}

func createTestInvoice(t *testing.T, b *billing.Bill) *Invoice {
	t.Helper()
	due := dueDate
	inv, err := Issue(IssueInput{Bill: b, Sequence: 7, Prefix: "INV", IssueDate: issueDate, DueDate: &due})
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

// ==================== Issue ====================

func TestIssue(t *testing.T) {
	b := createTestBill(t, 6000, billing.CarryForward{Balance: d(500), Overpayment: decimal.Zero})

	inv, err := Issue(IssueInput{Bill: b, Sequence: 42, Prefix: "SUN", IssueDate: issueDate})
	require.NoError(t, err)

	assert.Equal(t, "SUN-00042", inv.InvoiceNumber)
	assert.Equal(t, int64(42), inv.Sequence)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	assert.Equal(t, b.ID, inv.BillID)
	assert.True(t, inv.TotalDue.Equal(b.TotalDue))
	assert.True(t, inv.LineItems.Total().Equal(b.TotalDue), "line items add up to the bill")
	assert.False(t, inv.SentEmail)
	assert.False(t, inv.SentWhatsApp)

	require.Len(t, inv.LineItems, 4)
	assert.Equal(t, LabelRent, inv.LineItems[0].Label)
	assert.Equal(t, LabelWater, inv.LineItems[1].Label)
	require.NotNil(t, inv.LineItems[1].Usage)
	assert.True(t, inv.LineItems[1].Usage.Rate.Equal(d(250)))
	assert.Equal(t, LabelGarbage, inv.LineItems[2].Label)
	assert.Equal(t, LabelCarriedBalance, inv.LineItems[3].Label)
	assert.True(t, inv.LineItems[3].Amount.Equal(d(500)))

	require.Len(t, inv.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeInvoiceIssued, inv.GetDomainEvents()[0].EventType())
}

func TestIssue_CarriedOverpaymentIsCredit(t *testing.T) {
	b := createTestBill(t, 6000, billing.CarryForward{Balance: decimal.Zero, Overpayment: d(800)})

	inv, err := Issue(IssueInput{Bill: b, Sequence: 1, IssueDate: issueDate})
	require.NoError(t, err)

	last := inv.LineItems[len(inv.LineItems)-1]
	assert.Equal(t, LabelCarriedOverpayment, last.Label)
	assert.True(t, last.Amount.Equal(d(-800)))
	assert.True(t, inv.LineItems.Total().Equal(b.TotalDue))
	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
}

func TestIssue_NoCarryLinesWhenZero(t *testing.T) {
	inv := createTestInvoice(t, createTestBill(t, 6000, billing.ResolveCarryForward(nil)))
	assert.Len(t, inv.LineItems, 3)
}

func TestIssue_BillAlreadyPartlyPaid(t *testing.T) {
	b := createTestBill(t, 6000, billing.ResolveCarryForward(nil))
	require.NoError(t, b.ApplyPayment(d(1000)))

	inv := createTestInvoice(t, b)
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
}

func TestIssue_Validation(t *testing.T) {
	_, err := Issue(IssueInput{})
	assert.True(t, errors.Is(err, shared.ErrBillNotFound))

	_, err = Issue(IssueInput{Bill: createTestBill(t, 100, billing.ResolveCarryForward(nil)), Sequence: 0})
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_SEQUENCE", de.Code)
}

// ==================== Payment driven status ====================

func TestSyncWithBill_PartialThenPaid(t *testing.T) {
	b, err := billing.NewBill(billing.BillInput{
		PropertyID: uuid.New(), TenantID: uuid.New(), UnitID: "A1", Period: june,
		Rent: d(10000), Carry: billing.ResolveCarryForward(nil),
	})
	require.NoError(t, err)
	inv := createTestInvoice(t, b)
	now := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, b.ApplyPayment(d(4000)))
	assert.True(t, inv.SyncWithBill(b, now))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(d(4000)))
	assert.True(t, inv.Balance.Equal(d(6000)))

	require.NoError(t, b.ApplyPayment(d(6000)))
	assert.True(t, inv.SyncWithBill(b, now))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance.IsZero())

	events := inv.GetDomainEvents()
	require.Len(t, events, 2)
	last := events[1].(*InvoiceStatusChangedEvent)
	assert.Equal(t, InvoiceStatusPartiallyPaid, last.From)
	assert.Equal(t, InvoiceStatusPaid, last.To)
	assert.Equal(t, StatusChangePayment, last.Reason)
}

func TestSyncWithBill_PartialAfterDeadline(t *testing.T) {
	b := createTestBill(t, 10000, billing.ResolveCarryForward(nil))
	inv := createTestInvoice(t, b)
	late := dueDate.Add(15 * 24 * time.Hour)

	require.NoError(t, b.ApplyPayment(d(4000)))
	assert.True(t, inv.SyncWithBill(b, late))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.Balance.Equal(d(10000)))

	// the sweep still flags the remaining balance
	assert.True(t, inv.MarkOverdue(late))
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
}

func TestSyncWithBill_PaymentLiftsOverdue(t *testing.T) {
	b := createTestBill(t, 10000, billing.ResolveCarryForward(nil))
	inv := createTestInvoice(t, b)
	late := dueDate.Add(48 * time.Hour)
	require.True(t, inv.MarkOverdue(late))

	require.NoError(t, b.ApplyPayment(d(100)))
	assert.True(t, inv.SyncWithBill(b, late))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)

	require.NoError(t, b.ApplyPayment(b.Balance))
	assert.True(t, inv.SyncWithBill(b, late))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestSyncWithBill_TerminalUnchanged(t *testing.T) {
	b := createTestBill(t, 10000, billing.ResolveCarryForward(nil))
	inv := createTestInvoice(t, b)
	require.NoError(t, inv.SetStatus(InvoiceStatusCancelled, issueDate))

	require.NoError(t, b.ApplyPayment(d(100)))
	assert.False(t, inv.SyncWithBill(b, issueDate))
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(d(100)), "amounts still mirror the bill")
}

func TestSyncWithBill_CreditCoversEverything(t *testing.T) {
	b := createTestBill(t, 1000, billing.CarryForward{Balance: decimal.Zero, Overpayment: d(20000)})
	inv := createTestInvoice(t, b)

	assert.Equal(t, InvoiceStatusPaid, inv.derive())
}

// ==================== Operator status ====================

func TestSetStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		wantErr string
	}{
		{InvoiceStatusUnpaid, InvoiceStatusCancelled, ""},
		{InvoiceStatusUnpaid, InvoiceStatusOverdue, ""},
		{InvoiceStatusOverdue, InvoiceStatusPartiallyPaid, ""},
		{InvoiceStatusPartiallyPaid, InvoiceStatusPaid, ""},
		{InvoiceStatusPaid, InvoiceStatusPaid, ""},
		{InvoiceStatusPaid, InvoiceStatusUnpaid, shared.CodeInvoiceTerminal},
		{InvoiceStatusPaid, InvoiceStatusCancelled, shared.CodeInvoiceTerminal},
		{InvoiceStatusCancelled, InvoiceStatusUnpaid, shared.CodeInvoiceTerminal},
		{InvoiceStatusUnpaid, "Refunded", shared.CodeInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			inv := createTestInvoice(t, createTestBill(t, 100, billing.ResolveCarryForward(nil)))
			inv.Status = tt.from

			err := inv.SetStatus(tt.to, issueDate)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.to, inv.Status)
				return
			}
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantErr, de.Code)
			assert.Equal(t, tt.from, inv.Status)
		})
	}
}

func TestSetStatus_CancelStampsTime(t *testing.T) {
	inv := createTestInvoice(t, createTestBill(t, 100, billing.ResolveCarryForward(nil)))

	require.NoError(t, inv.SetStatus(InvoiceStatusCancelled, issueDate))
	require.NotNil(t, inv.CancelledAt)
	assert.Equal(t, issueDate, *inv.CancelledAt)
}

// ==================== Overdue ====================

func TestMarkOverdue(t *testing.T) {
	b := createTestBill(t, 10000, billing.ResolveCarryForward(nil))
	inv := createTestInvoice(t, b)

	assert.False(t, inv.MarkOverdue(dueDate.Add(-time.Hour)), "before deadline")
	assert.True(t, inv.MarkOverdue(dueDate.Add(time.Hour)))
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	assert.False(t, inv.MarkOverdue(dueDate.Add(2*time.Hour)), "already overdue")
}

func TestMarkOverdue_NoDeadlineOrSettled(t *testing.T) {
	b := createTestBill(t, 10000, billing.ResolveCarryForward(nil))
	inv, err := Issue(IssueInput{Bill: b, Sequence: 1, IssueDate: issueDate})
	require.NoError(t, err)
	assert.False(t, inv.MarkOverdue(issueDate.AddDate(1, 0, 0)))

	paid := createTestInvoice(t, b)
	paid.Status = InvoiceStatusPaid
	assert.False(t, paid.MarkOverdue(issueDate.AddDate(1, 0, 0)))
}

// ==================== Delivery ====================

func TestMarkSent(t *testing.T) {
	inv := createTestInvoice(t, createTestBill(t, 100, billing.ResolveCarryForward(nil)))
	at := issueDate.Add(time.Hour)

	require.NoError(t, inv.MarkSent(ChannelWhatsApp, at))
	assert.True(t, inv.IsSent(ChannelWhatsApp))
	assert.False(t, inv.IsSent(ChannelEmail))
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status, "delivery does not change status")
	assert.Equal(t, at, *inv.LastSentAt)

	require.NoError(t, inv.MarkSent(ChannelEmail, at))
	assert.True(t, inv.SentEmail)

	err := inv.MarkSent("sms", at)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_CHANNEL", de.Code)
}

// ==================== Line item storage ====================

func TestLineItems_ValueScan(t *testing.T) {
	items := BuildLineItems(createTestBill(t, 6000, billing.CarryForward{Balance: d(500), Overpayment: decimal.Zero}))

	v, err := items.Value()
	require.NoError(t, err)

	var back LineItems
	require.NoError(t, back.Scan(v))
	require.Len(t, back, len(items))
	assert.True(t, back.Total().Equal(items.Total()))
	require.NotNil(t, back[1].Usage)
	assert.True(t, back[1].Usage.CurrentReading.Equal(d(135)))

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
	assert.Error(t, back.Scan(12))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("PartiallyPaid")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartiallyPaid, s)

	_, err = ParseStatus("paid")
	assert.Error(t, err)
}
