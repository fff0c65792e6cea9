package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of spans started here
const TracerName = "rentledger-backend"

// Span attribute keys for ledger operations
const (
	SpanAttrPropertyID    = "ledger.property_id"
	SpanAttrTenantID      = "ledger.tenant_id"
	SpanAttrUnitID        = "ledger.unit_id"
	SpanAttrPeriod        = "ledger.period"
	SpanAttrInvoiceID     = "ledger.invoice_id"
	SpanAttrInvoiceNumber = "ledger.invoice_number"
	SpanAttrInvoiceStatus = "ledger.invoice_status"
	SpanAttrPaymentID     = "ledger.payment_id"
	SpanAttrPaymentType   = "ledger.payment_type"
	SpanAttrBillCount     = "ledger.bill_count"
	SpanAttrAmount        = "ledger.amount"
)

// StartSpan starts a span on the global tracer provider
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// StartServiceSpan starts an internal span named "service.method"
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("code.namespace", service),
			attribute.String("code.function", method),
		),
	)
}

// SetAttributes sets key/value pairs on span. A trailing key without a value
// is ignored.
//
//	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, id, telemetry.SpanAttrBillCount, n)
func SetAttributes(span trace.Span, kv ...any) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(toAttributes(kv)...)
}

// SetAttribute sets one attribute on span
func SetAttribute(span trace.Span, key string, value any) {
	if span.IsRecording() {
		span.SetAttributes(toAttribute(key, value))
	}
}

// AddEvent adds a named event with key/value pairs to span
func AddEvent(span trace.Span, name string, kv ...any) {
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(toAttributes(kv)...))
	}
}

// RecordError records err on span and marks it failed. nil is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(kv []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		attrs = append(attrs, toAttribute(key, kv[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case uuid.UUID:
		return attribute.String(key, v.String())
	case decimal.Decimal:
		return attribute.String(key, v.StringFixed(2))
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds())
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
