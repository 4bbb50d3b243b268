package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService   = "payment-service"
	useCaseCheckout  = "payment.checkout"
	gatewayPeer      = "stripe"
	gatewayEndpoint  = "checkout.sessions.create"
	defaultCurrency  = "eur"
	defaultTimeout   = 10 * time.Second
	lineNameTemplate = "%s — %s"
)

type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	// Timeout bounds the provider call; zero means 10s.
	Timeout time.Duration
}

type InitiateCheckoutInput struct {
	OrderID string
}

type InitiateCheckoutResult struct {
	SessionID   string
	RedirectURL string
}

// InitiateCheckoutUseCase opens a hosted checkout session for a pending order.
// It records the session id on the order but never changes its status.
type InitiateCheckoutUseCase struct {
	orders  domorder.Repository
	gateway dompay.Gateway
	cfg     CheckoutConfig
	inst    *application.Instrument
}

func NewInitiateCheckoutUseCase(
	orders domorder.Repository,
	gateway dompay.Gateway,
	cfg CheckoutConfig,
	tel observability.Observability,
) *InitiateCheckoutUseCase {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.Currency = strings.ToLower(cfg.Currency)
	return &InitiateCheckoutUseCase{
		orders:  orders,
		gateway: gateway,
		cfg:     cfg,
		inst:    application.NewInstrument(tel, paymentService, useCaseCheckout),
	}
}

func (uc *InitiateCheckoutUseCase) Execute(ctx context.Context, cmd InitiateCheckoutInput) (_ *InitiateCheckoutResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "InitiateCheckout", attribute.String("order.id", cmd.OrderID))
	defer func() { run.End(err) }()
	run.With(observability.F("order_id", cmd.OrderID))

	o, err := uc.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, err
	}
	if !o.CanCheckout() {
		run.Fail("ORDER_NOT_PENDING")
		return nil, fmt.Errorf("%w: order %s is %s", domorder.ErrInvalidStateTransition, o.ID, o.Status)
	}

	req := BuildSessionRequest(o, uc.cfg)
	run.Span().SetAttributes(
		attribute.Int("payment.line_items", len(req.LineItems)),
		attribute.Int64("payment.amount_total", req.AmountTotal()),
	)

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	start := time.Now()
	session, err := uc.gateway.CreateCheckoutSession(callCtx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			outcome = "timeout"
			err = fmt.Errorf("%w: %w", dompay.ErrProvider, err)
		} else if !errors.Is(err, dompay.ErrRequestInvalid) && !errors.Is(err, dompay.ErrDeclined) && !errors.Is(err, dompay.ErrProvider) {
			err = fmt.Errorf("%w: %w", dompay.ErrProvider, err)
		}
		run.External(gatewayPeer, gatewayEndpoint, outcome, start)
		run.Fail("GATEWAY_FAILED")
		return nil, err
	}
	run.External(gatewayPeer, gatewayEndpoint, "success", start)
	run.With(observability.F("session_id", session.ID))

	// The redirect stands even if the reference cannot be stored.
	if _, attachErr := uc.orders.Update(ctx, o.ID, func(o *domorder.Order) (bool, error) {
		return o.AttachCheckoutSession(session.ID)
	}); attachErr != nil {
		run.Status("SESSION_ATTACH_FAILED")
		run.With(observability.F("session_attach_error", attachErr.Error()))
	}

	return &InitiateCheckoutResult{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// BuildSessionRequest renders one line item per order line, by pair position then line order.
func BuildSessionRequest(o *domorder.Order, cfg CheckoutConfig) dompay.SessionRequest {
	items := make([]dompay.LineItem, 0, o.LineCount())
	for _, p := range o.Pairs {
		for _, l := range p.Lines {
			items = append(items, dompay.LineItem{
				Name:       fmt.Sprintf(lineNameTemplate, l.ServiceName, p.ShoeType.Label()),
				UnitAmount: domorder.MinorUnits(l.UnitPrice),
				Quantity:   1,
			})
		}
	}
	return dompay.SessionRequest{
		OrderID:       o.ID,
		CustomerEmail: o.Customer.Email,
		Currency:      cfg.Currency,
		LineItems:     items,
		SuccessURL:    cfg.SuccessURL,
		CancelURL:     cfg.CancelURL,
	}
}
