// Package middleware provides the HTTP middleware of the settings API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName    string
	TracerProvider trace.TracerProvider // nil uses the global provider
	// SkipPaths are not traced, e.g. health probes
	SkipPaths []string
}

// Tracing starts a server span per request through otelgin. Span names
// follow the route pattern, e.g. "GET /api/v1/settings/:key".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	opts := []otelgin.Option{
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			for _, p := range cfg.SkipPaths {
				if strings.HasPrefix(c.Request.URL.Path, p) {
					return false
				}
			}
			return true
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanAttributes annotates the request span with the request ID and the
// setting key or document type being addressed. It must run after Tracing
// and logger.RequestID.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := logger.GetRequestID(c.Request.Context()); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if key := c.Param("key"); key != "" {
			span.SetAttributes(attribute.String("settings.key", key))
		}
		if docType := c.Param("type"); docType != "" {
			span.SetAttributes(attribute.String("document.type", docType))
		}

		c.Next()

		// otelgin flags 5xx only
		if status := c.Writer.Status(); status == http.StatusConflict || status == http.StatusUnprocessableEntity {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
