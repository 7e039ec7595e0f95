package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is what the HTTP layer learns about a request before handing it to
// the services
type scope struct {
	logger    *zap.Logger
	requestID string
	sessionID string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func (s scope) into(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeOf(ctx)
	s.logger = logger
	return s.into(ctx)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeOf(ctx).logger; l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID in ctx and attaches a logger that
// carries it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := logger.With(zap.String("request_id", requestID))
	s := scopeOf(ctx)
	s.logger, s.requestID = l, requestID
	return s.into(ctx), l
}

// WithSession records the session in ctx and attaches a logger carrying the
// session ID and, for logged-in sessions, the masked phone.
func WithSession(ctx context.Context, logger *zap.Logger, sessionID, maskedPhone string) (context.Context, *zap.Logger) {
	fields := []zap.Field{zap.String("session_id", sessionID)}
	if maskedPhone != "" {
		fields = append(fields, zap.String("phone", maskedPhone))
	}
	l := logger.With(fields...)
	s := scopeOf(ctx)
	s.logger, s.sessionID = l, sessionID
	return s.into(ctx), l
}

// GetRequestID returns the request ID recorded by WithRequestID
func GetRequestID(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// GetSessionID returns the session ID recorded by WithSession
func GetSessionID(ctx context.Context) string {
	return scopeOf(ctx).sessionID
}

// GetTraceID returns the trace ID of the span in ctx, or ""
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// WithTraceContext adds trace_id and span_id of the span in ctx to logger.
// Without a valid span logger is returned as is.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L returns the request-scoped logger of ctx with trace correlation.
//
//	logger.L(ctx).Info("cart resynced", zap.Int("items", n))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// WithLogger is L with a fallback for contexts that never passed through
// the HTTP middleware, such as the event bus worker.
func WithLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	l := scopeOf(ctx).logger
	if l == nil {
		l = fallback
	}
	if l == nil {
		l = zap.NewNop()
	}
	return WithTraceContext(ctx, l)
}
