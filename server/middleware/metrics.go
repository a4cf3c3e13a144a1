package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/observability"
)

// Observe traces each request and records request count, duration and
// in-flight requests per route template. A nil m disables metrics; spans
// are no-ops until a tracer provider is installed.
func Observe(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String(observability.AttrRequestID, logger.RequestIDFromContext(ctx)),
			))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		if m != nil {
			m.RecordRequestStart(ctx)
		}
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		var err error
		if status >= 500 {
			err = fmt.Errorf("HTTP %d", status)
		}
		observability.EndSpan(span, err)
		if m != nil {
			m.RecordRequestEnd(ctx, c.Request.Method, route, status, time.Since(start))
		}
	}
}
