// Package middleware provides HTTP middleware for the storefront BFF.
package middleware

import (
	"net/http"
	"strings"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// SkipPrefixes are path prefixes that get no server span, e.g. probes
	SkipPrefixes []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:  "albazaar-storefront",
		Enabled:      true,
		SkipPrefixes: []string{"/health"},
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig opens a server span per request through otelgin, named
// "METHOD route" (e.g. "GET /api/v1/cart"). Once the chain returns the span
// gets the request ID, the bound session and the error code of a refused
// request. Only 5xx responses mark the span as failed; a 4xx is the
// shopper's mistake and is left to the error code attribute.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}

	skip := cfg.SkipPrefixes
	base := otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		for _, prefix := range skip {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return false
			}
		}
		return true
	}))

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		annotateSpan(c, span)

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func annotateSpan(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String(RequestIDKey, requestID))
	}
	if code := GetErrorCode(c); code != "" {
		span.SetAttributes(attribute.String(telemetry.SpanAttrErrorCode, code))
	}

	resolved := GetSession(c)
	if resolved == nil || resolved.Session == nil {
		return
	}
	session := resolved.Session
	span.SetAttributes(
		attribute.String(telemetry.SpanAttrSessionID, session.ID),
		attribute.String(telemetry.SpanAttrLoginStep, session.Login.Step.String()),
	)
	if session.IsAuthenticated() {
		span.SetAttributes(attribute.String(telemetry.SpanAttrPhone, identity.MaskPhone(session.Phone)))
	}
}
