package oteltrace

import (
	"context"

	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a tracer backed by the global OTel provider. Without an SDK provider
// installed (otel.SetTracerProvider) spans are non-recording but still propagate context.
func New(name string) observability.Tracer {
	if name == "" {
		name = "conciergerie-cordo"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
