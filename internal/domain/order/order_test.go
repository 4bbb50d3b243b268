package order

import (
	"errors"
	"testing"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

var customer = Customer{Name: "Jeanne", Email: "jeanne@example.com", Phone: "0600000000", Company: "Acme"}

func svc(id, price string, t catalog.ShoeType, active bool) catalog.Service {
	return catalog.Service{ID: id, Name: "svc-" + id, Price: decimal.RequireFromString(price), ShoeType: t, Active: active}
}

func buildOrder(t *testing.T) *Order {
	t.Helper()
	now := time.Now()
	o, err := New("o1", customer, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := Pair{ID: "p1", ShoeType: catalog.ShoeTypeFemale, CreatedAt: now}
	if err := p.AddLine("l1", svc("a", "15.00", catalog.ShoeTypeFemale, true), now); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := p.AddLine("l2", svc("b", "22.00", catalog.ShoeTypeFemale, true), now); err != nil {
		t.Fatalf("add line: %v", err)
	}
	o.AddPair(p)
	o.Recalculate()
	return o
}

func TestNewOrderStartsPending(t *testing.T) {
	o, err := New("o1", customer, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", o.Status)
	}
	if !o.Total.IsZero() {
		t.Errorf("expected zero total, got %s", o.Total)
	}
}

func TestCustomerValidateReportsFirstMissingField(t *testing.T) {
	c := customer
	c.Phone = "  "
	c.Company = ""
	err := c.Validate()
	if !errors.Is(err, ErrMissingCustomerField) || !errors.Is(err, errkind.Validation) {
		t.Fatalf("expected missing field validation error, got %v", err)
	}
	if err.Error() != "order: missing customer field: phone" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTotalsAndPositions(t *testing.T) {
	o := buildOrder(t)

	if !o.Total.Equal(decimal.RequireFromString("37.00")) {
		t.Errorf("expected total 37.00, got %s", o.Total)
	}
	if o.Pairs[0].Position != 1 || o.Pairs[0].OrderID != "o1" {
		t.Errorf("unexpected pair binding: %+v", o.Pairs[0])
	}
	for _, l := range o.Pairs[0].Lines {
		if l.PairID != "p1" {
			t.Errorf("line %s not bound to pair", l.ID)
		}
	}
	if err := o.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
	if MinorUnits(o.Total) != 3700 {
		t.Errorf("expected 3700 minor units, got %d", MinorUnits(o.Total))
	}
}

func TestValidateDetectsBrokenInvariants(t *testing.T) {
	o := buildOrder(t)
	o.Total = decimal.NewFromInt(1)
	if err := o.Validate(); !errors.Is(err, ErrTotalMismatch) {
		t.Errorf("expected ErrTotalMismatch, got %v", err)
	}

	empty, _ := New("o2", customer, time.Now())
	if err := empty.Validate(); !errors.Is(err, ErrNoPairs) {
		t.Errorf("expected ErrNoPairs, got %v", err)
	}

	noLines, _ := New("o3", customer, time.Now())
	noLines.AddPair(Pair{ID: "p", ShoeType: catalog.ShoeTypeMale})
	if err := noLines.Validate(); !errors.Is(err, ErrNoServices) {
		t.Errorf("expected ErrNoServices, got %v", err)
	}
}

func TestAddLineRejectsMismatchAndInactive(t *testing.T) {
	p := Pair{ID: "p1", ShoeType: catalog.ShoeTypeFemale}
	if err := p.AddLine("l", svc("m", "10", catalog.ShoeTypeMale, true), time.Now()); !errors.Is(err, ErrInvalidService) {
		t.Errorf("expected ErrInvalidService for mismatch, got %v", err)
	}
	if err := p.AddLine("l", svc("f", "10", catalog.ShoeTypeFemale, false), time.Now()); !errors.Is(err, ErrInvalidService) {
		t.Errorf("expected ErrInvalidService for inactive, got %v", err)
	}
	if len(p.Lines) != 0 {
		t.Errorf("rejected lines must not be captured")
	}
}

func TestCapturedPriceIsACopy(t *testing.T) {
	s := svc("a", "15.00", catalog.ShoeTypeFemale, true)
	p := Pair{ID: "p1", ShoeType: catalog.ShoeTypeFemale}
	_ = p.AddLine("l", s, time.Now())
	s.Price = decimal.NewFromInt(99)
	if !p.Lines[0].UnitPrice.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("captured price changed with catalog: %s", p.Lines[0].UnitPrice)
	}
}

func TestPaymentTransitions(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		apply       func(*Order) (bool, error)
		want        Status
		wantChanged bool
		wantErr     error
	}{
		{"pending to paid", StatusPending, func(o *Order) (bool, error) { return o.MarkPaid("pi_1") }, StatusPaid, true, nil},
		{"pending to failed", StatusPending, func(o *Order) (bool, error) { return o.MarkFailed() }, StatusFailed, true, nil},
		{"paid again is no-op", StatusPaid, func(o *Order) (bool, error) { return o.MarkPaid("pi_2") }, StatusPaid, false, nil},
		{"failed again is no-op", StatusFailed, func(o *Order) (bool, error) { return o.MarkFailed() }, StatusFailed, false, nil},
		{"paid to failed rejected", StatusPaid, func(o *Order) (bool, error) { return o.MarkFailed() }, StatusPaid, false, ErrInvalidStateTransition},
		{"failed to paid rejected", StatusFailed, func(o *Order) (bool, error) { return o.MarkPaid("pi_3") }, StatusFailed, false, ErrInvalidStateTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := buildOrder(t)
			o.Status = tt.from
			changed, err := tt.apply(o)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if o.Status != tt.want {
				t.Errorf("status = %s, want %s", o.Status, tt.want)
			}
		})
	}
}

func TestMarkPaidKeepsFirstPaymentRef(t *testing.T) {
	o := buildOrder(t)
	_, _ = o.MarkPaid("pi_first")
	_, _ = o.MarkPaid("pi_second")
	if o.PaymentRef != "pi_first" {
		t.Errorf("expected pi_first, got %s", o.PaymentRef)
	}
}

func TestAttachCheckoutSession(t *testing.T) {
	o := buildOrder(t)
	if changed, err := o.AttachCheckoutSession("cs_1"); err != nil || !changed {
		t.Fatalf("first attach: changed=%v err=%v", changed, err)
	}
	if changed, _ := o.AttachCheckoutSession("cs_1"); changed {
		t.Error("same session reported as a change")
	}
	if changed, _ := o.AttachCheckoutSession("cs_2"); !changed || o.CheckoutSessionID != "cs_2" {
		t.Errorf("retry should replace the session, got %q", o.CheckoutSessionID)
	}

	_, _ = o.MarkPaid("pi_1")
	if _, err := o.AttachCheckoutSession("cs_3"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected invalid state on paid order, got %v", err)
	}
	if o.CheckoutSessionID != "cs_2" {
		t.Errorf("paid order session changed to %q", o.CheckoutSessionID)
	}
}

func TestCloneIsDeep(t *testing.T) {
	o := buildOrder(t)
	c := o.Clone()
	c.Pairs[0].Lines[0].UnitPrice = decimal.NewFromInt(1)
	c.Pairs[0].Description = "changed"
	if o.Pairs[0].Lines[0].UnitPrice.Equal(decimal.NewFromInt(1)) || o.Pairs[0].Description == "changed" {
		t.Error("clone shares state with original")
	}
}

func TestMinorUnitsRounds(t *testing.T) {
	cases := map[string]int64{"0": 0, "12.5": 1250, "19.99": 1999, "0.005": 1}
	for in, want := range cases {
		if got := MinorUnits(decimal.RequireFromString(in)); got != want {
			t.Errorf("MinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}
