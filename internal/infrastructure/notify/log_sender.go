package notify

import (
	"context"

	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

// LogSender writes messages to the structured log instead of delivering them.
type LogSender struct {
	log observability.Logger
}

func NewLogSender(tel observability.Observability) *LogSender {
	return &LogSender{log: observability.Or(tel).Logger().With(observability.F("component", "log_sender"))}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	logctx.FromOr(ctx, s.log).Info("notification_logged",
		observability.F("kind", m.Kind),
		observability.F("order_id", m.OrderID),
		observability.F("to", m.To),
		observability.F("subject", m.Subject),
		observability.F("body", m.Body),
	)
	return nil
}
