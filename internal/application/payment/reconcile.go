package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	useCaseReconcile = "payment.reconcile"
	publishPeer      = "outbox"
	publishTimeout   = 300 * time.Millisecond
	ledgerTimeout    = 2 * time.Second
)

type ReconcileInput struct {
	Payload   []byte
	Signature string
}

type ReconcileResult struct {
	EventID string
	Kind    dompay.Kind
	OrderID string
	Status  domorder.Status
	// Changed is true only for the delivery that moved the order out of PENDING.
	Changed bool
	// Duplicate is true when the event id had already been processed.
	Duplicate bool
	// Ignored is true for event types and orders this service does not track.
	Ignored bool
}

// ReconcilePaymentUseCase applies verified provider events to order status. Notifications
// are triggered through published events after the transition commits.
type ReconcilePaymentUseCase struct {
	verifier  dompay.EventVerifier
	orders    domorder.Repository
	ledger    EventLedger
	publisher domoutbox.Publisher
	inst      *application.Instrument
	events    observability.Counter
}

func NewReconcilePaymentUseCase(
	verifier dompay.EventVerifier,
	orders domorder.Repository,
	ledger EventLedger,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *ReconcilePaymentUseCase {
	return &ReconcilePaymentUseCase{
		verifier:  verifier,
		orders:    orders,
		ledger:    ledger,
		publisher: publisher,
		inst:      application.NewInstrument(tel, paymentService, useCaseReconcile),
		events:    observability.Or(tel).Metrics().Counter(observability.MPaymentEvents),
	}
}

func (uc *ReconcilePaymentUseCase) Execute(ctx context.Context, cmd ReconcileInput) (_ *ReconcileResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "ReconcilePayment")
	defer func() { run.End(err) }()

	evt, err := uc.verifier.Verify(cmd.Payload, cmd.Signature)
	if err != nil {
		switch {
		case errors.Is(err, dompay.ErrUnauthenticated):
			run.Fail("SIGNATURE_INVALID")
		default:
			run.Fail("PAYLOAD_INVALID")
		}
		return nil, err
	}

	res := &ReconcileResult{EventID: evt.ID, Kind: evt.Kind, OrderID: evt.OrderID}
	defer func() {
		uc.events.Add(1, observability.L("kind", string(evt.Kind)), observability.L("result", eventResult(res, err)))
	}()
	run.With(
		observability.F("event_id", evt.ID),
		observability.F("event_type", evt.Type),
		observability.F("order_id", evt.OrderID),
	)
	run.Span().SetAttributes(
		attribute.String("payment.event_id", evt.ID),
		attribute.String("payment.event_type", evt.Type),
		attribute.String("order.id", evt.OrderID),
	)

	if evt.Kind == dompay.KindIgnored {
		run.Status("EVENT_IGNORED")
		res.Ignored = true
		return res, nil
	}
	if evt.OrderID == "" {
		run.Status("ORDER_ID_MISSING")
		res.Ignored = true
		return res, nil
	}

	claimed, err := uc.claim(ctx, evt.ID)
	if err != nil {
		run.Fail("LEDGER_FAILED")
		return nil, err
	}
	if !claimed {
		run.Status("DUPLICATE_EVENT")
		res.Duplicate = true
		return res, nil
	}
	defer func() {
		if err != nil {
			uc.release(ctx, run, evt.ID)
		}
	}()

	var changed bool
	var current domorder.Status
	o, err := uc.orders.Update(ctx, evt.OrderID, func(o *domorder.Order) (bool, error) {
		current = o.Status
		var terr error
		if evt.Kind == dompay.KindSucceeded {
			changed, terr = o.MarkPaid(evt.PaymentRef)
		} else {
			changed, terr = o.MarkFailed()
		}
		return changed, terr
	})
	switch {
	case errors.Is(err, domorder.ErrNotFound):
		// Sessions created by another environment share the webhook endpoint.
		run.Status("ORDER_UNKNOWN")
		res.Ignored = true
		return res, nil
	case errors.Is(err, domorder.ErrInvalidStateTransition):
		run.Fail("TRANSITION_REJECTED")
		run.Logger().Warn("payment_transition_rejected",
			observability.F("order_id", evt.OrderID),
			observability.F("order_status", string(current)),
			observability.F("event_kind", string(evt.Kind)),
		)
		return nil, fmt.Errorf("%w: order %s is %s", err, evt.OrderID, current)
	case err != nil:
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, err
	}

	res.Status = o.Status
	res.Changed = changed
	if !changed {
		run.Status("ALREADY_APPLIED")
		return res, nil
	}

	run.Span().AddEvent("order.status_changed", trace.WithAttributes(attribute.String("order.status", string(o.Status))))

	var e domoutbox.Event
	if evt.Kind == dompay.KindSucceeded {
		e = domorder.NewPaidEvent(o)
	} else {
		e = domorder.NewPaymentFailedEvent(o, evt.FailureReason)
	}
	if publishErr := uc.publish(ctx, run, e); publishErr != nil {
		run.Status("EVENT_PUBLISH_FAILED")
		run.With(observability.F("event_publish_error", publishErr.Error()))
	}
	return res, nil
}

func (uc *ReconcilePaymentUseCase) claim(ctx context.Context, eventID string) (bool, error) {
	if uc.ledger == nil || eventID == "" {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()
	return uc.ledger.Claim(ctx, eventID)
}

// release lets a provider retry of eventID be processed again.
func (uc *ReconcilePaymentUseCase) release(ctx context.Context, run *application.Run, eventID string) {
	if uc.ledger == nil || eventID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerTimeout)
	defer cancel()
	if err := uc.ledger.Release(ctx, eventID); err != nil {
		run.Logger().Warn("payment_event_release_failed",
			observability.F("event_id", eventID),
			observability.Err(err),
		)
	}
}

func (uc *ReconcilePaymentUseCase) publish(ctx context.Context, run *application.Run, e domoutbox.Event) error {
	if uc.publisher == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	start := time.Now()
	err := uc.publisher.Publish(pubCtx, e)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	run.External(publishPeer, e.EventName(), outcome, start)
	return err
}

func eventResult(res *ReconcileResult, err error) string {
	switch {
	case err != nil:
		return "rejected"
	case res.Duplicate:
		return "duplicate"
	case res.Ignored:
		return "ignored"
	case res.Changed:
		return "applied"
	default:
		return "noop"
	}
}
