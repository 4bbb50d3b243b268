package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
)

// Verifier checks the Stripe-Signature header against the endpoint secret
// and normalizes payment intent events.
type Verifier struct {
	secret string
}

func NewVerifier(endpointSecret string) *Verifier {
	return &Verifier{secret: endpointSecret}
}

func (v *Verifier) Verify(payload []byte, signature string) (dompay.Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return dompay.Event{}, fmt.Errorf("%w: %w", dompay.ErrUnauthenticated, err)
		}
		return dompay.Event{}, fmt.Errorf("%w: %w", dompay.ErrInvalidPayload, err)
	}

	out := dompay.Event{ID: evt.ID, Type: string(evt.Type), Kind: dompay.KindIgnored}
	switch string(evt.Type) {
	case eventPaymentSucceeded:
		out.Kind = dompay.KindSucceeded
	case eventPaymentFailed:
		out.Kind = dompay.KindFailed
	default:
		return out, nil
	}
	if evt.Data == nil {
		return dompay.Event{}, fmt.Errorf("%w: event %s has no data", dompay.ErrInvalidPayload, evt.ID)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return dompay.Event{}, fmt.Errorf("%w: payment intent: %w", dompay.ErrInvalidPayload, err)
	}
	out.PaymentRef = pi.ID
	out.OrderID = pi.Metadata[dompay.MetadataOrderID]
	if pi.LastPaymentError != nil {
		out.FailureReason = pi.LastPaymentError.Msg
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
