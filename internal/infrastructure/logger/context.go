package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey         contextKey = "logger"
	requestIDKey      contextKey = "request_id"
	propertyIDKey     contextKey = "property_id"
	idempotencyKeyKey contextKey = "idempotency_key"
)

// WithContext stores l in ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// The With* helpers record an id in ctx, where L picks it up, and return l
// with the id attached. The logger stored in ctx is left untouched.

// WithRequestID records the request id in ctx
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, l, requestIDKey, requestID)
}

// WithPropertyID records the property id in ctx
func WithPropertyID(ctx context.Context, l *zap.Logger, propertyID string) (context.Context, *zap.Logger) {
	return withField(ctx, l, propertyIDKey, propertyID)
}

// WithIdempotencyKey records a payment's Idempotency-Key in ctx
func WithIdempotencyKey(ctx context.Context, l *zap.Logger, key string) (context.Context, *zap.Logger) {
	return withField(ctx, l, idempotencyKeyKey, key)
}

func withField(ctx context.Context, l *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	if l == nil {
		l = zap.NewNop()
	}
	return ctx, l.With(zap.String(string(key), value))
}

// GetRequestID returns the request id recorded in ctx
func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// GetPropertyID returns the property id recorded in ctx
func GetPropertyID(ctx context.Context) string { return stringValue(ctx, propertyIDKey) }

// GetIdempotencyKey returns the idempotency key recorded in ctx
func GetIdempotencyKey(ctx context.Context) string { return stringValue(ctx, idempotencyKeyKey) }

func stringValue(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// L returns the context logger with every id recorded in ctx attached,
// plus trace_id and span_id when ctx carries a valid span.
//
//	logger.L(ctx).Info("Invoice issued", zap.String("invoice_number", n))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)

	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	for _, key := range []contextKey{requestIDKey, propertyIDKey, idempotencyKeyKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
