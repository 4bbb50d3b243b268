package workerpresentation

import (
	"context"

	"github.com/google/uuid"

	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

// WithEventContext binds a logger for one event delivery: a fresh delivery_id, the
// event name, the order id and the trace ids carried by ctx, if any.
func WithEventContext(ctx context.Context, base observability.Logger, e domoutbox.Event, orderID string) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}
	fields := []observability.Field{
		observability.F("delivery_id", uuid.NewString()),
		observability.F("event", e.EventName()),
	}
	if orderID != "" {
		fields = append(fields, observability.F("order_id", orderID))
	}
	fields = append(fields, logctx.TraceFields(ctx)...)
	return logctx.With(ctx, base.With(fields...))
}
