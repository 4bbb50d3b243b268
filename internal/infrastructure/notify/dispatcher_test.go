package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/shopspring/decimal"
)

type captureSender struct {
	msgs []Message
	err  error
}

func (s *captureSender) Send(_ context.Context, m Message) error {
	s.msgs = append(s.msgs, m)
	return s.err
}

func sampleOrder(t *testing.T) *domorder.Order {
	t.Helper()
	now := time.Now()
	o, err := domorder.New("42", domorder.Customer{Name: "Jeanne", Email: "jeanne@example.com", Phone: "0600", Company: "Acme"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := domorder.Pair{ID: "p1", ShoeType: catalog.ShoeTypeFemale, Description: "talon abîmé", Photo: domorder.Photo{URL: "https://media/p1.jpg"}}
	_ = p.AddLine("l1", catalog.Service{ID: "s1", Name: "Talons", Price: decimal.RequireFromString("15"), ShoeType: catalog.ShoeTypeFemale, Active: true}, now)
	_ = p.AddLine("l2", catalog.Service{ID: "s2", Name: "Semelles", Price: decimal.RequireFromString("22"), ShoeType: catalog.ShoeTypeFemale, Active: true}, now)
	o.AddPair(p)
	o.Recalculate()
	o.PaymentRef = "pi_1"
	return o
}

func newDispatcher(t *testing.T, s Sender) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(Config{From: "contact@example.com", AdminEmail: "admin@example.com", SiteURL: "https://shop.example"}, s)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	return d
}

func TestCustomerConfirmation(t *testing.T) {
	s := &captureSender{}
	if err := newDispatcher(t, s).NotifyCustomerConfirmed(context.Background(), sampleOrder(t)); err != nil {
		t.Fatalf("notify: %v", err)
	}
	m := s.msgs[0]
	if m.To != "jeanne@example.com" || m.Subject != "Confirmation de commande #42 - Conciergerie Cordo" {
		t.Errorf("unexpected envelope: %+v", m)
	}
	for _, want := range []string{"Paire 1 (Female)", "Talons : 15.00 €", "Sous-total : 37.00 €", "Total : 37.00 €"} {
		if !strings.Contains(m.Body, want) {
			t.Errorf("body missing %q:\n%s", want, m.Body)
		}
	}
}

func TestAdminNotification(t *testing.T) {
	s := &captureSender{}
	if err := newDispatcher(t, s).NotifyAdminNewOrder(context.Background(), sampleOrder(t)); err != nil {
		t.Fatalf("notify: %v", err)
	}
	m := s.msgs[0]
	if m.To != "admin@example.com" || !strings.Contains(m.Subject, "Acme") {
		t.Errorf("unexpected envelope: %+v", m)
	}
	for _, want := range []string{"Entreprise : Acme", "Description : talon abîmé", "Photo : https://media/p1.jpg"} {
		if !strings.Contains(m.Body, want) {
			t.Errorf("body missing %q:\n%s", want, m.Body)
		}
	}
	if len(m.Links) != 1 {
		t.Errorf("expected photo link, got %v", m.Links)
	}
}

func TestPaymentFailedIncludesReasonWhenPresent(t *testing.T) {
	s := &captureSender{}
	d := newDispatcher(t, s)
	o := sampleOrder(t)

	_ = d.NotifyCustomerPaymentFailed(context.Background(), o, "Carte expirée")
	_ = d.NotifyCustomerPaymentFailed(context.Background(), o, "")

	if !strings.Contains(s.msgs[0].Body, "Raison : Carte expirée") {
		t.Errorf("reason missing:\n%s", s.msgs[0].Body)
	}
	if strings.Contains(s.msgs[1].Body, "Raison") {
		t.Errorf("empty reason rendered:\n%s", s.msgs[1].Body)
	}
}

func TestSendErrorsPropagate(t *testing.T) {
	s := &captureSender{err: errors.New("broker down")}
	if err := newDispatcher(t, s).NotifyCustomerConfirmed(context.Background(), sampleOrder(t)); err == nil {
		t.Error("expected sender error")
	}

	d, _ := NewDispatcher(Config{}, &captureSender{})
	if err := d.NotifyAdminNewOrder(context.Background(), sampleOrder(t)); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
}
