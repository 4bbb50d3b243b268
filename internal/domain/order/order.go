package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errkind.New(errkind.NotFound, "order: not found")
	ErrConflict               = errkind.New(errkind.InvalidState, "order: already exists")
	ErrInvalidStateTransition = errkind.New(errkind.InvalidState, "order: invalid state transition")
	ErrMissingCustomerField   = errkind.New(errkind.Validation, "order: missing customer field")
	ErrNoPairs                = errkind.New(errkind.Validation, "order: at least one pair is required")
	ErrNoServices             = errkind.New(errkind.Validation, "order: pair has no service selected")
	ErrInvalidService         = errkind.New(errkind.Validation, "order: invalid service")
	ErrTotalMismatch          = errkind.New(errkind.InvalidState, "order: total does not match lines")
	ErrPositionGap            = errkind.New(errkind.InvalidState, "order: pair positions are not contiguous")
)

// Status is the single lifecycle enum shared by storage, checkout and webhook handling.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// Validate reports the first empty field in declaration order.
func (c Customer) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"company", c.Company},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingCustomerField, f.name)
		}
	}
	return nil
}

// Photo references an object previously written to the media store.
type Photo struct {
	URL  string
	Path string
}

// Line is one service applied to one pair. UnitPrice is the catalog price captured at creation.
type Line struct {
	ID          string
	PairID      string
	ServiceID   string
	ServiceName string
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

type Pair struct {
	ID          string
	OrderID     string
	ShoeType    catalog.ShoeType
	Photo       Photo
	Description string
	// Position is 1-based and contiguous within the order.
	Position  int
	CreatedAt time.Time
	Lines     []Line
}

// Subtotal sums the captured prices of the pair's lines.
func (p Pair) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range p.Lines {
		sum = sum.Add(l.UnitPrice)
	}
	return sum
}

// AddLine captures svc onto the pair. The service must be active and match the pair's shoe type.
func (p *Pair) AddLine(id string, svc catalog.Service, now time.Time) error {
	if !svc.Active {
		return fmt.Errorf("%w: %s is not active", ErrInvalidService, svc.ID)
	}
	if svc.ShoeType != p.ShoeType {
		return fmt.Errorf("%w: %s is for %s shoes, pair is %s", ErrInvalidService, svc.ID, svc.ShoeType, p.ShoeType)
	}
	p.Lines = append(p.Lines, Line{
		ID:          id,
		PairID:      p.ID,
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		UnitPrice:   svc.Price,
		CreatedAt:   now,
	})
	return nil
}

type Order struct {
	ID       string
	Customer Customer
	Status   Status
	Total    decimal.Decimal
	// PaymentRef holds the provider's payment confirmation id once paid.
	PaymentRef string
	// CheckoutSessionID is the last hosted checkout session opened for the order.
	CheckoutSessionID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Pairs             []Pair
}

// New starts a PENDING order with a zero total.
func New(id string, customer Customer, now time.Time) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Order{
		ID:        id,
		Customer:  customer,
		Status:    StatusPending,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddPair appends p at the next position and binds its lines to the order.
func (o *Order) AddPair(p Pair) {
	p.OrderID = o.ID
	p.Position = len(o.Pairs) + 1
	for i := range p.Lines {
		p.Lines[i].PairID = p.ID
	}
	o.Pairs = append(o.Pairs, p)
}

// LinesTotal re-derives the total from captured line prices.
func (o *Order) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range o.Pairs {
		sum = sum.Add(p.Subtotal())
	}
	return sum
}

// Recalculate sets Total to the sum of all captured line prices.
func (o *Order) Recalculate() {
	o.Total = o.LinesTotal()
}

// Validate checks the structural invariants that must hold before an order is persisted.
func (o *Order) Validate() error {
	if err := o.Customer.Validate(); err != nil {
		return err
	}
	if len(o.Pairs) == 0 {
		return ErrNoPairs
	}
	for i, p := range o.Pairs {
		if p.Position != i+1 {
			return fmt.Errorf("%w: pair %d has position %d", ErrPositionGap, i+1, p.Position)
		}
		if len(p.Lines) == 0 {
			return fmt.Errorf("%w: pair %d", ErrNoServices, p.Position)
		}
	}
	if !o.Total.Equal(o.LinesTotal()) {
		return fmt.Errorf("%w: total %s, lines %s", ErrTotalMismatch, o.Total, o.LinesTotal())
	}
	return nil
}

// LineCount returns the number of lines across all pairs.
func (o *Order) LineCount() int {
	n := 0
	for _, p := range o.Pairs {
		n += len(p.Lines)
	}
	return n
}

func (o *Order) CanCheckout() bool {
	return o.Status == StatusPending
}

// MarkPaid moves the order to PAID. changed is false when it already was.
func (o *Order) MarkPaid(paymentRef string) (changed bool, err error) {
	next, err := stateOf(o.Status).OnPaymentSucceeded(o, paymentRef)
	if err != nil {
		return false, err
	}
	return o.apply(next), nil
}

// MarkFailed moves the order to FAILED. changed is false when it already was.
func (o *Order) MarkFailed() (changed bool, err error) {
	next, err := stateOf(o.Status).OnPaymentFailed(o)
	if err != nil {
		return false, err
	}
	return o.apply(next), nil
}

// AttachCheckoutSession records the provider session opened for a pending order.
func (o *Order) AttachCheckoutSession(sessionID string) (changed bool, err error) {
	if !o.CanCheckout() {
		return false, fmt.Errorf("%w: order %s is %s", ErrInvalidStateTransition, o.ID, o.Status)
	}
	if sessionID == "" || sessionID == o.CheckoutSessionID {
		return false, nil
	}
	o.CheckoutSessionID = sessionID
	o.touch()
	return true, nil
}

func (o *Order) apply(next OrderState) bool {
	if next.Status() == o.Status {
		return false
	}
	o.Status = next.Status()
	o.touch()
	return true
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so callers never share pair/line slices with a repository.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Pairs = make([]Pair, len(o.Pairs))
	for i, p := range o.Pairs {
		c.Pairs[i] = p
		c.Pairs[i].Lines = append([]Line(nil), p.Lines...)
	}
	return &c
}

// MinorUnits converts a 2-decimal currency amount to integer minor units (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
