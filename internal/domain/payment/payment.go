package payment

import (
	"context"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
)

var (
	ErrRequestInvalid  = errkind.New(errkind.External, "payment: request rejected by provider")
	ErrDeclined        = errkind.New(errkind.External, "payment: card declined")
	ErrProvider        = errkind.New(errkind.External, "payment: provider error")
	ErrUnauthenticated = errkind.New(errkind.Unauthenticated, "payment: invalid webhook signature")
	ErrInvalidPayload  = errkind.New(errkind.Validation, "payment: invalid webhook payload")
)

// MetadataOrderID is the metadata key binding a provider session or intent to an order.
const MetadataOrderID = "order_id"

// LineItem is one priced entry on the hosted checkout page. UnitAmount is in minor units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	OrderID       string
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	// SuccessURL may contain the provider's session id placeholder.
	SuccessURL string
	CancelURL  string
}

// AmountTotal sums every line item in minor units.
func (r SessionRequest) AmountTotal() int64 {
	var sum int64
	for _, li := range r.LineItems {
		sum += li.UnitAmount * li.Quantity
	}
	return sum
}

type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions. Implementations map provider failures
// onto ErrRequestInvalid, ErrDeclined and ErrProvider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
}

type Kind string

const (
	KindSucceeded Kind = "succeeded"
	KindFailed    Kind = "failed"
	KindIgnored   Kind = "ignored"
)

// Event is a provider notification normalized to what reconciliation needs.
type Event struct {
	ID            string
	Type          string
	Kind          Kind
	OrderID       string
	PaymentRef    string
	FailureReason string
}

// EventVerifier authenticates a raw webhook body and decodes it.
type EventVerifier interface {
	Verify(payload []byte, signature string) (Event, error)
}
