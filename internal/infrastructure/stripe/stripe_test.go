package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
	dompay "github.com/mathieu6700417/conciergeriecordo/internal/domain/payment"
)

const testSecret = "whsec_test"

func sign(t *testing.T, payload string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestVerifierSucceededEvent(t *testing.T) {
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded",
		"data":{"object":{"id":"pi_1","object":"payment_intent","metadata":{"order_id":"o1"}}}}`

	evt, err := NewVerifier(testSecret).Verify([]byte(payload), sign(t, payload))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if evt.ID != "evt_1" || evt.Kind != dompay.KindSucceeded || evt.OrderID != "o1" || evt.PaymentRef != "pi_1" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestVerifierFailedEventCarriesReason(t *testing.T) {
	payload := `{"id":"evt_2","object":"event","type":"payment_intent.payment_failed",
		"data":{"object":{"id":"pi_2","object":"payment_intent","metadata":{"order_id":"o2"},
		"last_payment_error":{"type":"card_error","message":"Your card was declined."}}}}`

	evt, err := NewVerifier(testSecret).Verify([]byte(payload), sign(t, payload))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if evt.Kind != dompay.KindFailed || evt.FailureReason != "Your card was declined." {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestVerifierIgnoresOtherTypes(t *testing.T) {
	payload := `{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`

	evt, err := NewVerifier(testSecret).Verify([]byte(payload), sign(t, payload))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if evt.Kind != dompay.KindIgnored || evt.Type != "customer.created" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestVerifierRejectsBadSignature(t *testing.T) {
	payload := `{"id":"evt_4","object":"event","type":"payment_intent.succeeded","data":{"object":{}}}`
	header := sign(t, payload)

	for name, sig := range map[string]string{
		"missing":  "",
		"garbage":  "not-a-header",
		"tampered": header,
	} {
		t.Run(name, func(t *testing.T) {
			body := payload
			if name == "tampered" {
				body = payload + " "
			}
			_, err := NewVerifier(testSecret).Verify([]byte(body), sig)
			if !errors.Is(err, dompay.ErrUnauthenticated) || !errors.Is(err, errkind.Unauthenticated) {
				t.Errorf("expected unauthenticated, got %v", err)
			}
		})
	}
}

func TestVerifierRejectsMalformedPayload(t *testing.T) {
	payload := `{"id":`
	_, err := NewVerifier(testSecret).Verify([]byte(payload), sign(t, payload))
	if !errors.Is(err, dompay.ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestGatewayCreatesSession(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{}
		for k, v := range r.PostForm {
			form[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.example/cs_test_1"}`))
	}))
	defer srv.Close()

	g := NewGateway("sk_test", WithBackendURL(srv.URL))
	s, err := g.CreateCheckoutSession(context.Background(), dompay.SessionRequest{
		OrderID:       "o1",
		CustomerEmail: "jeanne@example.com",
		Currency:      "eur",
		LineItems:     []dompay.LineItem{{Name: "Talons — Female", UnitAmount: 1500, Quantity: 1}},
		SuccessURL:    "https://shop.example/checkout?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://shop.example/checkout/cancel",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID != "cs_test_1" || s.URL != "https://checkout.example/cs_test_1" {
		t.Errorf("unexpected session %+v", s)
	}

	want := map[string]string{
		"mode":                                    "payment",
		"metadata[order_id]":                      "o1",
		"payment_intent_data[metadata][order_id]": "o1",
		"line_items[0][price_data][unit_amount]":  "1500",
		"line_items[0][price_data][currency]":     "eur",
		"line_items[0][quantity]":                 "1",
		"customer_email":                          "jeanne@example.com",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("%s = %q, want %q", k, form[k], v)
		}
	}
}

func TestGatewayMapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"card", http.StatusPaymentRequired, `{"error":{"type":"card_error","message":"declined"}}`, dompay.ErrDeclined},
		{"invalid request", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"bad"}}`, dompay.ErrRequestInvalid},
		{"api", http.StatusInternalServerError, `{"error":{"type":"api_error","message":"boom"}}`, dompay.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGateway("sk_test", WithBackendURL(srv.URL)).CreateCheckoutSession(context.Background(), dompay.SessionRequest{
				OrderID:   "o1",
				Currency:  "eur",
				LineItems: []dompay.LineItem{{Name: "x", UnitAmount: 100, Quantity: 1}},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGatewayTransportFailureIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGateway("sk_test", WithBackendURL(url)).CreateCheckoutSession(context.Background(), dompay.SessionRequest{OrderID: "o1"})
	if !errors.Is(err, dompay.ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
}
