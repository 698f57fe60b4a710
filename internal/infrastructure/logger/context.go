package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithContext returns a new context carrying logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRequestID stores the request ID on ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID stored on ctx, or ""
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the logger carried by ctx, or a no-op logger. The
// returned logger is annotated with the request ID and the active trace
// span when present.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok || l == nil {
		return zap.NewNop()
	}
	return Enrich(ctx, l)
}

// Enrich adds request_id, trace_id and span_id fields from ctx to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
