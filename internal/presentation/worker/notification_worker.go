package workerpresentation

import (
	"context"
	"fmt"

	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

const componentNotificationWorker = "notification_worker"

// Notifier is implemented by the notification service.
type Notifier interface {
	OrderPaid(ctx context.Context, o *domorder.Order)
	PaymentFailed(ctx context.Context, o *domorder.Order, reason string)
}

// NotificationWorker turns committed payment outcomes into customer and admin notices.
type NotificationWorker struct {
	subscriber domoutbox.Subscriber
	notifier   Notifier
	log        observability.Logger
}

func NewNotificationWorker(subscriber domoutbox.Subscriber, notifier Notifier, tel observability.Observability) *NotificationWorker {
	tel = observability.Or(tel)
	return &NotificationWorker{
		subscriber: subscriber,
		notifier:   notifier,
		log:        tel.Logger().With(observability.F("component", componentNotificationWorker)),
	}
}

func (w *NotificationWorker) Start() {
	w.subscriber.Subscribe(domorder.EventPaid, w.handleOrderPaid)
	w.subscriber.Subscribe(domorder.EventPaymentFailed, w.handlePaymentFailed)
}

func (w *NotificationWorker) handleOrderPaid(ctx context.Context, e domoutbox.Event) error {
	var evt domorder.PaidEvent
	switch v := e.(type) {
	case domorder.PaidEvent:
		evt = v
	case *domorder.PaidEvent:
		evt = *v
	default:
		return fmt.Errorf("notification worker: unexpected %T for %s", e, e.EventName())
	}
	if evt.Order == nil {
		return fmt.Errorf("notification worker: %s without order", e.EventName())
	}

	ctx = WithEventContext(ctx, logctx.FromOr(ctx, w.log), e, evt.Order.ID)
	w.notifier.OrderPaid(ctx, evt.Order)
	logctx.FromOr(ctx, w.log).Info("order_paid_notified")
	return nil
}

func (w *NotificationWorker) handlePaymentFailed(ctx context.Context, e domoutbox.Event) error {
	var evt domorder.PaymentFailedEvent
	switch v := e.(type) {
	case domorder.PaymentFailedEvent:
		evt = v
	case *domorder.PaymentFailedEvent:
		evt = *v
	default:
		return fmt.Errorf("notification worker: unexpected %T for %s", e, e.EventName())
	}
	if evt.Order == nil {
		return fmt.Errorf("notification worker: %s without order", e.EventName())
	}

	ctx = WithEventContext(ctx, logctx.FromOr(ctx, w.log), e, evt.Order.ID)
	w.notifier.PaymentFailed(ctx, evt.Order, evt.Reason)
	logctx.FromOr(ctx, w.log).Info("payment_failed_notified", observability.F("reason", evt.Reason))
	return nil
}
