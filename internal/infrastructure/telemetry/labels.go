package telemetry

import (
	"context"
	"unicode/utf8"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelMethod     = "http_method"
	ProfilingLabelRoute      = "http_route"
	ProfilingLabelController = "controller"
	ProfilingLabelPropertyID = "property_id"
	ProfilingLabelOperation  = "operation"
)

// Ledger operations tagged in profiles
const (
	OperationGenerateBills = "generate_bills"
	OperationIssueInvoices = "issue_invoices"
	OperationRecordPayment = "record_payment"
	OperationMarkOverdue   = "mark_overdue"
	OperationRenderInvoice = "render_invoice"
)

// MaxLabelValueLength caps label values so ids and routes stay bounded
const MaxLabelValueLength = 64

// HighCardinalityLabels are dropped before profiling; they would split
// profiles per request.
var HighCardinalityLabels = map[string]struct{}{
	"request_id":      {},
	"trace_id":        {},
	"span_id":         {},
	"invoice_id":      {},
	"payment_id":      {},
	"idempotency_key": {},
}

// WithProfilingLabels runs fn with labels attached to CPU samples taken
// while it executes. Empty or high-cardinality labels are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	clean := sanitizeLabels(labels)
	if len(clean) == 0 {
		fn(ctx)
		return
	}

	kv := make([]string, 0, len(clean)*2)
	for k, v := range clean {
		kv = append(kv, k, v)
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kv...), fn)
}

func sanitizeLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		if k == "" || v == "" {
			continue
		}
		if _, skip := HighCardinalityLabels[k]; skip {
			continue
		}
		out[k] = truncate(v, MaxLabelValueLength)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// OperationLabels returns the operation label merged with extra
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelOperation] = operation
	return labels
}

// LedgerOperationLabels labels an operation scoped to one property
func LedgerOperationLabels(operation, propertyID string) map[string]string {
	return OperationLabels(operation, map[string]string{ProfilingLabelPropertyID: propertyID})
}
