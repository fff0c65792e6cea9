// Package event holds application-level domain event handlers.
package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerRecorder receives ledger activity counts.
// telemetry.LedgerMetrics implements it.
type LedgerRecorder interface {
	RecordBillsGenerated(ctx context.Context, propertyID uuid.UUID, count int)
	RecordInvoiceIssued(ctx context.Context, propertyID uuid.UUID)
	RecordInvoiceStatusChange(ctx context.Context, propertyID uuid.UUID, to, reason string)
	RecordPayment(ctx context.Context, propertyID uuid.UUID, paymentType, method string, amount decimal.Decimal)
	RecordMeterReading(ctx context.Context, propertyID uuid.UUID)
}

// LedgerMetricsHandler turns committed ledger events into metrics
type LedgerMetricsHandler struct {
	recorder LedgerRecorder
	logger   *zap.Logger
}

// NewLedgerMetricsHandler creates a new LedgerMetricsHandler
func NewLedgerMetricsHandler(recorder LedgerRecorder, logger *zap.Logger) *LedgerMetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerMetricsHandler{recorder: recorder, logger: logger.Named("ledger_metrics_handler")}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		billing.EventTypeBillGenerated,
		invoicing.EventTypeInvoiceIssued,
		invoicing.EventTypeInvoiceStatusChanged,
		payment.EventTypePaymentRecorded,
		metering.EventTypeMeterReadingRecorded,
	}
}

// Handle records one event
func (h *LedgerMetricsHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch e := evt.(type) {
	case *billing.BillGeneratedEvent:
		h.recorder.RecordBillsGenerated(ctx, e.PropertyID(), 1)
	case *invoicing.InvoiceIssuedEvent:
		h.recorder.RecordInvoiceIssued(ctx, e.PropertyID())
	case *invoicing.InvoiceStatusChangedEvent:
		h.recorder.RecordInvoiceStatusChange(ctx, e.PropertyID(), e.To.String(), e.Reason)
	case *payment.PaymentRecordedEvent:
		h.recorder.RecordPayment(ctx, e.PropertyID(), e.Type.String(), string(e.Method), e.Amount)
	case *metering.MeterReadingRecordedEvent:
		h.recorder.RecordMeterReading(ctx, e.PropertyID())
	default:
		h.logger.Error("unexpected event type", zap.String("actual", evt.EventType()))
		return fmt.Errorf("unexpected event type: %s", evt.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
