package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// body sizes from a tiny JSON payload up to a rendered invoice PDF
var bodySizeBuckets = []float64{256, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20}

type requestInstruments struct {
	total     *telemetry.Counter
	latency   *telemetry.Histogram
	reqBytes  *telemetry.Histogram
	respBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newRequestInstruments(meter metric.Meter) (*requestInstruments, error) {
	var (
		ri  requestInstruments
		err error
	)
	if ri.total, err = telemetry.NewCounter(meter, "http_server_request_total",
		"HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if ri.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if ri.reqBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "http_server_request_size_bytes",
		Unit:       "By",
		Boundaries: bodySizeBuckets,
	}); err != nil {
		return nil, err
	}
	if ri.respBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "http_server_response_size_bytes",
		Unit:       "By",
		Boundaries: bodySizeBuckets,
	}); err != nil {
		return nil, err
	}
	ri.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return &ri, nil
}

// HTTPMetrics records request metrics on the provider's "http.server"
// meter. It is a pass-through when metrics are disabled or the instruments
// cannot be created.
func HTTPMetrics(mp *telemetry.MeterProvider, log *zap.Logger) gin.HandlerFunc {
	if !mp.IsEnabled() {
		return passThrough
	}
	mw, err := RequestMetrics(mp.Meter("http.server"))
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}
	return mw
}

// RequestMetrics counts requests per method, route and status, and records
// latency plus body sizes per route. Property-scoped routes add property_id
// to the counter only.
func RequestMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	ri, err := newRequestInstruments(meter)
	if err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		ri.inFlight.Add(ctx, 1)
		defer ri.inFlight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		routeAttrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		countAttrs := append([]attribute.KeyValue{telemetry.AttrHTTPStatusCode.Int(c.Writer.Status())}, routeAttrs...)
		if pid := validPropertyID(c); pid != "" {
			countAttrs = append(countAttrs, telemetry.AttrPropertyID.String(pid))
		}

		ri.total.Inc(ctx, countAttrs...)
		ri.latency.RecordDuration(ctx, time.Since(start), routeAttrs...)
		if n := c.Request.ContentLength; n > 0 {
			ri.reqBytes.Record(ctx, float64(n), routeAttrs...)
		}
		if n := c.Writer.Size(); n > 0 {
			ri.respBytes.Record(ctx, float64(n), routeAttrs...)
		}
	}, nil
}

func passThrough(c *gin.Context) { c.Next() }
