package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics tracks billing activity and the arrears position of each property.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	billsGenerated   *Counter
	invoicesIssued   *Counter
	statusChanges    *Counter
	paymentsTotal    *Counter
	paymentAmount    *Counter
	readingsRecorded *Counter

	outstandingBalance *Gauge
	occupiedUnits      *Gauge
	overdueInvoices    *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	provider LedgerSnapshotProvider
}

// LedgerSnapshot is the point-in-time state of one property
type LedgerSnapshot struct {
	// OutstandingMinor is the sum of latest-bill balances in minor units
	OutstandingMinor int64
	OccupiedUnits    int64
	OverdueInvoices  int64
}

// LedgerSnapshotProvider reads property state for the periodic gauges
// without the telemetry layer depending on the ledger domain.
type LedgerSnapshotProvider interface {
	GetPropertyIDs(ctx context.Context) ([]uuid.UUID, error)
	GetSnapshot(ctx context.Context, propertyID uuid.UUID) (LedgerSnapshot, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider LedgerSnapshotProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&lm.billsGenerated, "rentledger_bills_generated_total", "Total number of bills generated", "{bills}"},
		{&lm.invoicesIssued, "rentledger_invoices_issued_total", "Total number of invoices issued", "{invoices}"},
		{&lm.statusChanges, "rentledger_invoice_status_changes_total", "Invoice status transitions", "{transitions}"},
		{&lm.paymentsTotal, "rentledger_payments_total", "Total number of payments recorded", "{payments}"},
		{&lm.paymentAmount, "rentledger_payment_amount_total", "Payment amount in minor currency units", "{minor}"},
		{&lm.readingsRecorded, "rentledger_meter_readings_total", "Total number of meter readings recorded", "{readings}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	gauges := []struct {
		target      **Gauge
		name        string
		description string
		unit        string
	}{
		{&lm.outstandingBalance, "rentledger_outstanding_balance", "Unpaid balance across tenants' latest bills in minor units", "{minor}"},
		{&lm.occupiedUnits, "rentledger_occupied_units", "Number of occupied units", "{units}"},
		{&lm.overdueInvoices, "rentledger_overdue_invoices", "Number of invoices in Overdue status", "{invoices}"},
	}
	for _, g := range gauges {
		gauge, err := NewGauge(cfg.Meter, g.name, g.description, g.unit)
		if err != nil {
			return nil, err
		}
		*g.target = gauge
	}

	return lm, nil
}

// RecordBillsGenerated counts the bills created by one generation run
func (lm *LedgerMetrics) RecordBillsGenerated(ctx context.Context, propertyID uuid.UUID, count int) {
	if count <= 0 {
		return
	}
	lm.billsGenerated.Add(ctx, int64(count), AttrPropertyID.String(propertyID.String()))
}

// RecordInvoiceIssued counts an issued invoice
func (lm *LedgerMetrics) RecordInvoiceIssued(ctx context.Context, propertyID uuid.UUID) {
	lm.invoicesIssued.Inc(ctx, AttrPropertyID.String(propertyID.String()))
}

// RecordInvoiceStatusChange counts a status transition by target status and reason
func (lm *LedgerMetrics) RecordInvoiceStatusChange(ctx context.Context, propertyID uuid.UUID, to, reason string) {
	lm.statusChanges.Inc(ctx,
		AttrPropertyID.String(propertyID.String()),
		AttrInvoiceStatus.String(to),
		AttrStatusReason.String(reason),
	)
}

// RecordPayment counts a payment and adds its amount in minor units
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, propertyID uuid.UUID, paymentType, method string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrPropertyID.String(propertyID.String()),
		AttrPaymentType.String(paymentType),
		AttrPaymentMethod.String(method),
	}
	lm.paymentsTotal.Inc(ctx, attrs...)
	lm.paymentAmount.Add(ctx, ToMinorUnits(amount), attrs...)
}

// RecordMeterReading counts a recorded meter reading
func (lm *LedgerMetrics) RecordMeterReading(ctx context.Context, propertyID uuid.UUID) {
	lm.readingsRecorded.Inc(ctx, AttrPropertyID.String(propertyID.String()))
}

// RecordSnapshot records the gauge values for one property
func (lm *LedgerMetrics) RecordSnapshot(ctx context.Context, propertyID uuid.UUID, s LedgerSnapshot) {
	attr := AttrPropertyID.String(propertyID.String())
	lm.outstandingBalance.Record(ctx, s.OutstandingMinor, attr)
	lm.occupiedUnits.Record(ctx, s.OccupiedUnits, attr)
	lm.overdueInvoices.Record(ctx, s.OverdueInvoices, attr)
}

// ToMinorUnits converts an amount to an integer count of cents
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// StartPeriodicCollection starts collecting gauges every interval (default 5 minutes).
// It returns immediately; Stop ends the loop.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go lm.runPeriodicCollection(ctx, interval)
	})
}

func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.Collect(ctx)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.Collect(ctx)
		}
	}
}

// Collect records a snapshot for every property once
func (lm *LedgerMetrics) Collect(ctx context.Context) {
	if lm.provider == nil {
		lm.logger.Debug("No snapshot provider configured, skipping ledger gauges")
		return
	}

	propertyIDs, err := lm.provider.GetPropertyIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to list properties for metrics collection", zap.Error(err))
		return
	}

	for _, propertyID := range propertyIDs {
		snapshot, err := lm.provider.GetSnapshot(ctx, propertyID)
		if err != nil {
			lm.logger.Warn("Failed to read ledger snapshot",
				zap.String("property_id", propertyID.String()),
				zap.Error(err),
			)
			continue
		}
		lm.RecordSnapshot(ctx, propertyID, snapshot)
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
