package order

import "time"

const (
	EventCreated       = "order.created"
	EventPaid          = "order.paid"
	EventPaymentFailed = "order.payment_failed"
)

// CreatedEvent is emitted once an order and its pairs and lines are committed.
type CreatedEvent struct {
	OrderID    string    `json:"order_id"`
	Email      string    `json:"email"`
	Total      string    `json:"total"`
	Pairs      int       `json:"pairs"`
	Lines      int       `json:"lines"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (CreatedEvent) EventName() string { return EventCreated }

func (e CreatedEvent) EventKey() string { return e.OrderID }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:    o.ID,
		Email:      o.Customer.Email,
		Total:      o.Total.StringFixed(2),
		Pairs:      len(o.Pairs),
		Lines:      o.LineCount(),
		OccurredAt: time.Now().UTC(),
	}
}

// PaidEvent is emitted after the PENDING→PAID transition commits. It carries a snapshot
// of the hydrated order so notification handlers do not have to reload it.
type PaidEvent struct {
	Order      *Order    `json:"order"`
	PaymentRef string    `json:"payment_ref"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (PaidEvent) EventName() string { return EventPaid }

func (e PaidEvent) EventKey() string { return e.Order.ID }

func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		Order:      o.Clone(),
		PaymentRef: o.PaymentRef,
		OccurredAt: time.Now().UTC(),
	}
}

// PaymentFailedEvent is emitted after the PENDING→FAILED transition commits.
type PaymentFailedEvent struct {
	Order      *Order    `json:"order"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (PaymentFailedEvent) EventName() string { return EventPaymentFailed }

func (e PaymentFailedEvent) EventKey() string { return e.Order.ID }

func NewPaymentFailedEvent(o *Order, reason string) PaymentFailedEvent {
	return PaymentFailedEvent{
		Order:      o.Clone(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
