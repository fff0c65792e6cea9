// Package middleware provides the gin middleware of the ledger API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request ids taken from headers
const MaxRequestIDLength = 128

const propertyRoutePrefix = "/api/v1/properties/"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "rentledger-backend",
		Enabled:     true,
	}
}

// TracingWithConfig wraps otelgin and tags the server span with
// request_id and, on property-scoped routes, property_id.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// TracingAttributeInjector adds ledger attributes to the active span.
// Place it after TracingWithConfig so the span exists.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := RequestIDFrom(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if propertyID := validPropertyID(c); propertyID != "" {
		span.SetAttributes(attribute.String("property_id", propertyID))
	}
	if route := c.FullPath(); route != "" {
		span.SetAttributes(attribute.String("http.route", route))
	}
}

// RequestIDFrom returns the id set by RequestID, falling back to a
// truncated X-Request-ID header.
func RequestIDFrom(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}
	headerID := c.GetHeader(RequestIDKey)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// propertyIDFromPath returns the raw property id of a property-scoped route
func propertyIDFromPath(c *gin.Context) string {
	if id := c.Param("propertyId"); id != "" {
		return id
	}
	if strings.HasPrefix(c.FullPath(), propertyRoutePrefix) {
		return c.Param("id")
	}
	return ""
}

// validPropertyID is propertyIDFromPath restricted to well-formed UUIDs,
// so arbitrary path text never reaches span or metric attributes.
func validPropertyID(c *gin.Context) string {
	id := propertyIDFromPath(c)
	if id == "" {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// SpanErrorMarker marks the span as failed for 5xx responses and records
// the status for all client errors. Place it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("error.message", c.Errors.Last().Error()))
		}
		if statusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(statusCode))
		}
	}
}
