package telemetry

import (
	"context"
	"errors"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Enabled: false, ServiceName: "rentledger-test"}

	tp, err := NewTracerProvider(ctx, cfg, nil)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, nil)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, nil)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	l := zap.NewNop()
	assert.Same(t, l, lp.Bridge(l))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewProfiler(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "rentledger"}, nil)
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, nil)
	assert.ErrorContains(t, err, "application name")
}

func TestNewResource_DefaultVersion(t *testing.T) {
	res, err := newResource(Config{ServiceName: "rentledger"})
	require.NoError(t, err)

	attrs := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "rentledger", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])
}

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestServiceSpan(t *testing.T) {
	rec := useSpanRecorder(t)
	propertyID := uuid.New()

	_, span := StartServiceSpan(context.Background(), "InvoiceService", "IssueInvoices")
	SetAttributes(span,
		SpanAttrPropertyID, propertyID,
		SpanAttrBillCount, 3,
		SpanAttrAmount, decimal.RequireFromString("1250.5"),
		"dangling",
	)
	SetAttribute(span, SpanAttrPeriod, "2025-06")
	AddEvent(span, "invoice_skipped", "reason", "already issued")
	RecordError(span, nil)
	RecordError(span, errors.New("render failed"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "InvoiceService.IssueInvoices", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "render failed", s.Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, propertyID.String(), attrs[SpanAttrPropertyID].AsString())
	assert.Equal(t, int64(3), attrs[SpanAttrBillCount].AsInt64())
	assert.Equal(t, "1250.50", attrs[SpanAttrAmount].AsString())
	assert.Equal(t, "2025-06", attrs[SpanAttrPeriod].AsString())
	assert.NotContains(t, attrs, attribute.Key("dangling"))

	var names []string
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"invoice_skipped", "exception"}, names)
}

func TestWithProfilingLabels(t *testing.T) {
	propertyID := uuid.NewString()
	labels := LedgerOperationLabels(OperationRecordPayment, propertyID)
	labels["request_id"] = "req-1"
	labels[ProfilingLabelRoute] = "/api/v1/" + strings.Repeat("x", 100)
	labels["empty"] = ""

	var ran bool
	WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		ran = true
		op, ok := pprof.Label(ctx, ProfilingLabelOperation)
		assert.True(t, ok)
		assert.Equal(t, OperationRecordPayment, op)

		id, _ := pprof.Label(ctx, ProfilingLabelPropertyID)
		assert.Equal(t, propertyID, id)

		route, _ := pprof.Label(ctx, ProfilingLabelRoute)
		assert.Len(t, route, MaxLabelValueLength)

		_, ok = pprof.Label(ctx, "request_id")
		assert.False(t, ok)
		_, ok = pprof.Label(ctx, "empty")
		assert.False(t, ok)
	})
	assert.True(t, ran)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "marker")
	WithProfilingLabels(ctx, OperationLabels("", nil), func(got context.Context) {
		assert.Equal(t, ctx, got)
	})
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "ab", truncate("ab", 4))
	assert.Equal(t, "a", truncate("aé", 2))
}

type ledgerRow struct {
	ID     uint `gorm:"primaryKey"`
	Period string
}

func newTestMeterProvider(t *testing.T) (*MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	return &MeterProvider{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		logger:   zap.NewNop(),
	}, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(m metricdata.Metrics, key attribute.Key, value string) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestInstrumentDB(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&ledgerRow{}))

	mp, reader := newTestMeterProvider(t)
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	err := InstrumentDB(db, DBConfig{
		Tracing:            true,
		System:             "sqlite",
		SlowQueryThreshold: time.Nanosecond,
		TracerProvider:     tp,
	}, mp, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&ledgerRow{Period: "2025-06"}).Error)
	var rows []ledgerRow
	require.NoError(t, db.WithContext(ctx).Where("period = ?", "2025-06").Find(&rows).Error)
	require.Len(t, rows, 1)

	var missing ledgerRow
	err = db.WithContext(ctx).First(&missing, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(metrics["db_query_total"], AttrDBOperation, "create"))
	assert.Equal(t, int64(2), sumFor(metrics["db_query_total"], AttrDBOperation, "query"))
	assert.Positive(t, sumFor(metrics["db_slow_query_total"], AttrDBTable, "ledger_rows"))
	assert.Contains(t, metrics, "db_query_duration_seconds")
	assert.Contains(t, metrics, "db_connections_open")
	assert.Contains(t, metrics, "db_connections")

	assert.Len(t, rec.Ended(), 3)
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db := openTestDB(t)

	core, logs := observer.New(zapcore.InfoLevel)
	mp := &MeterProvider{logger: zap.NewNop()}
	require.NoError(t, InstrumentDB(db, DBConfig{}, mp, zap.New(core)))
	assert.Zero(t, logs.Len())
	assert.Nil(t, db.Callback().Query().Get(callbackPrefix+":after_query"))
}

type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func TestBridgeLogger(t *testing.T) {
	exp := &memoryExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.InfoLevel)
	l := BridgeLogger(zap.New(core), provider, "rentledger-test")

	l.Debug("dropped by level")
	l.Info("Bills generated", zap.Int("bill_count", 4))
	l.With(zap.String("property_id", "p-1")).Warn("Invoice overdue")

	assert.Equal(t, 2, local.Len())
	assert.Equal(t, []string{"Bills generated", "Invoice overdue"}, exp.bodies())
}
