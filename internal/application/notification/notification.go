package notification

import (
	"context"
	"fmt"
	"time"

	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

const (
	notificationService = "notification-service"
	defaultTimeout      = 10 * time.Second

	KindCustomerConfirmed     = "customer_confirmed"
	KindAdminNewOrder         = "admin_new_order"
	KindCustomerPaymentFailed = "customer_payment_failed"
)

// Dispatcher delivers order notifications. Callers treat every method as best effort.
type Dispatcher interface {
	NotifyCustomerConfirmed(ctx context.Context, o *domorder.Order) error
	NotifyAdminNewOrder(ctx context.Context, o *domorder.Order) error
	NotifyCustomerPaymentFailed(ctx context.Context, o *domorder.Order, reason string) error
}

// Service fans payment outcomes out to the dispatcher. Failures are logged and counted, never returned.
type Service struct {
	dispatcher Dispatcher
	timeout    time.Duration
	log        observability.Logger
	sent       observability.Counter // notifications_total{kind,outcome}
}

func NewService(dispatcher Dispatcher, timeout time.Duration, tel observability.Observability) *Service {
	tel = observability.Or(tel)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		dispatcher: dispatcher,
		timeout:    timeout,
		log:        tel.Logger().With(observability.F("service", notificationService)),
		sent:       tel.Metrics().Counter(observability.MNotificationsSent),
	}
}

// OrderPaid sends the customer confirmation and the admin notice.
func (s *Service) OrderPaid(ctx context.Context, o *domorder.Order) {
	s.send(ctx, KindCustomerConfirmed, o, func(ctx context.Context) error {
		return s.dispatcher.NotifyCustomerConfirmed(ctx, o)
	})
	s.send(ctx, KindAdminNewOrder, o, func(ctx context.Context) error {
		return s.dispatcher.NotifyAdminNewOrder(ctx, o)
	})
}

// PaymentFailed sends the customer failure notice with the provider reason, if any.
func (s *Service) PaymentFailed(ctx context.Context, o *domorder.Order, reason string) {
	s.send(ctx, KindCustomerPaymentFailed, o, func(ctx context.Context) error {
		return s.dispatcher.NotifyCustomerPaymentFailed(ctx, o, reason)
	})
}

func (s *Service) send(ctx context.Context, kind string, o *domorder.Order, call func(context.Context) error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("notification", kind),
		observability.F("order_id", o.ID),
	)
	if s.dispatcher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicError{r}
			}
		}()
		return call(ctx)
	}()
	if err != nil {
		s.sent.Add(1, observability.L("kind", kind), observability.L("outcome", "error"))
		logger.Error("notification_failed", observability.Err(err))
		return
	}
	s.sent.Add(1, observability.L("kind", kind), observability.L("outcome", "success"))
	logger.Info("notification_sent")
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("notification: dispatcher panic: %v", p.v) }
