package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"text/template"

	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var ErrNoRecipient = errors.New("notify: no recipient")

// Message is a rendered email ready for a Sender.
type Message struct {
	Kind    string   `json:"kind"`
	OrderID string   `json:"order_id"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Links   []string `json:"links,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Config struct {
	From       string
	AdminEmail string
	SiteURL    string
	Brand      string
}

// Dispatcher renders order notifications from templates and hands them to a Sender.
type Dispatcher struct {
	cfg    Config
	sender Sender
	tmpl   *template.Template
}

func NewDispatcher(cfg Config, sender Sender) (*Dispatcher, error) {
	if cfg.Brand == "" {
		cfg.Brand = "Conciergerie Cordo"
	}
	tmpl, err := template.New("notify").Funcs(template.FuncMap{
		"money": func(v interface{ StringFixed(int32) string }) string { return v.StringFixed(2) + " €" },
		"inc":   func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("notify: parse templates: %w", err)
	}
	return &Dispatcher{cfg: cfg, sender: sender, tmpl: tmpl}, nil
}

type view struct {
	Config
	Order  *domorder.Order
	Reason string
}

func (d *Dispatcher) NotifyCustomerConfirmed(ctx context.Context, o *domorder.Order) error {
	return d.send(ctx, "customer_confirmed", o.Customer.Email, o, "", nil)
}

func (d *Dispatcher) NotifyAdminNewOrder(ctx context.Context, o *domorder.Order) error {
	var photos []string
	for _, p := range o.Pairs {
		if p.Photo.URL != "" {
			photos = append(photos, p.Photo.URL)
		}
	}
	return d.send(ctx, "admin_new_order", d.cfg.AdminEmail, o, "", photos)
}

func (d *Dispatcher) NotifyCustomerPaymentFailed(ctx context.Context, o *domorder.Order, reason string) error {
	return d.send(ctx, "customer_payment_failed", o.Customer.Email, o, reason, nil)
}

func (d *Dispatcher) send(ctx context.Context, kind, to string, o *domorder.Order, reason string, links []string) error {
	if to == "" {
		return fmt.Errorf("%w: %s", ErrNoRecipient, kind)
	}
	v := view{Config: d.cfg, Order: o, Reason: reason}
	subject, err := d.render(kind+".subject", v)
	if err != nil {
		return err
	}
	body, err := d.render(kind+".body", v)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, Message{
		Kind:    kind,
		OrderID: o.ID,
		From:    d.cfg.From,
		To:      to,
		Subject: subject,
		Body:    body,
		Links:   links,
	})
}

func (d *Dispatcher) render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}
