package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
)

// Gateway creates Stripe Checkout sessions.
type Gateway struct {
	sessions session.Client
}

type GatewayOption func(*stripe.BackendConfig)

// WithBackendURL points the client at another API host, e.g. stripe-mock.
func WithBackendURL(url string) GatewayOption {
	return func(c *stripe.BackendConfig) { c.URL = stripe.String(url) }
}

func WithHTTPClient(hc *http.Client) GatewayOption {
	return func(c *stripe.BackendConfig) { c.HTTPClient = hc }
}

func NewGateway(secretKey string, opts ...GatewayOption) *Gateway {
	cfg := &stripe.BackendConfig{
		// Session creation is never retried.
		MaxNetworkRetries: stripe.Int64(0),
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &Gateway{sessions: session.Client{B: backend, Key: secretKey}}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req dompay.SessionRequest) (dompay.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		CustomerEmail:            stripe.String(req.CustomerEmail),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{dompay.MetadataOrderID: req.OrderID},
		},
	}
	params.Context = ctx
	params.AddMetadata(dompay.MetadataOrderID, req.OrderID)
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return dompay.Session{}, mapError(err)
	}
	return dompay.Session{ID: s.ID, URL: s.URL}, nil
}

func mapError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch se.Type {
		case stripe.ErrorTypeCard:
			return fmt.Errorf("%w: %s", dompay.ErrDeclined, se.Msg)
		case stripe.ErrorTypeInvalidRequest:
			return fmt.Errorf("%w: %s", dompay.ErrRequestInvalid, se.Msg)
		}
		return fmt.Errorf("%w: %s", dompay.ErrProvider, se.Msg)
	}
	return fmt.Errorf("%w: %w", dompay.ErrProvider, err)
}
