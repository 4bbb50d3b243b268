package logctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
)

type loggerKey struct{}

// With stores a request or event scoped logger on ctx.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the scoped logger, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr returns the scoped logger, then fallback, then a no-op logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	switch {
	case From(ctx) != nil:
		return From(ctx)
	case fallback != nil:
		return fallback
	default:
		return observability.NopLogger()
	}
}

// TraceFields returns trace_id and span_id when ctx carries a valid span context.
func TraceFields(ctx context.Context) []observability.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []observability.Field{
		observability.F("trace_id", sc.TraceID().String()),
		observability.F("span_id", sc.SpanID().String()),
	}
}
