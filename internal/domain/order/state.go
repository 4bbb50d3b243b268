package order

// OrderState implements the state pattern for payment outcome transitions.
// PAID and FAILED are terminal: re-applying the same outcome is a no-op,
// applying the opposite one is rejected.
type OrderState interface {
	Status() Status
	OnPaymentSucceeded(o *Order, paymentRef string) (OrderState, error)
	OnPaymentFailed(o *Order) (OrderState, error)
}

func stateOf(s Status) OrderState {
	switch s {
	case StatusPaid:
		return paidState{}
	case StatusFailed:
		return failedState{}
	default:
		return pendingState{}
	}
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnPaymentSucceeded(o *Order, paymentRef string) (OrderState, error) {
	o.PaymentRef = paymentRef
	return paidState{}, nil
}

func (pendingState) OnPaymentFailed(*Order) (OrderState, error) {
	return failedState{}, nil
}

type paidState struct{}

func (paidState) Status() Status { return StatusPaid }

func (paidState) OnPaymentSucceeded(*Order, string) (OrderState, error) {
	return paidState{}, nil
}

func (paidState) OnPaymentFailed(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type failedState struct{}

func (failedState) Status() Status { return StatusFailed }

func (failedState) OnPaymentSucceeded(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (failedState) OnPaymentFailed(*Order) (OrderState, error) {
	return failedState{}, nil
}
