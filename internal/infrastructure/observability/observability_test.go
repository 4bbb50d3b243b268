package observability

import (
	"testing"

	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability/prometrics"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProviderFallsBackToNop(t *testing.T) {
	p := New(nil, nil, nil, nil)
	if p.Tracer() == nil || p.Logger() == nil || p.Metrics() == nil {
		t.Fatal("expected non-nil ports")
	}
	// unknown keys must not panic
	p.Metrics().Counter("missing").Add(1)
	p.Metrics().Histogram("missing").Observe(1)
}

func TestProviderRoutesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.New(reg, "test").Standard()
	p := New(nil, nil, counters, histograms)

	p.Metrics().Counter(observability.MUsecaseRequests).Add(2,
		observability.L("use_case", "order.create"),
		observability.L("outcome", "success"),
	)

	got, err := testutil.GatherAndCount(reg, "test_usecase_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected one series, got %d", got)
	}
}

func TestStandardRegistersDomainInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.New(reg, "").Standard()
	p := New(nil, nil, counters, histograms)

	p.Metrics().Counter(observability.MPaymentEvents).Add(1,
		observability.L("kind", "succeeded"),
		observability.L("result", "applied"),
	)
	p.Metrics().Histogram(observability.MOrderTotal).Observe(37, observability.L("shoe_types", "FEMALE"))

	for _, name := range []string{"payment_events_total", "order_total_amount"} {
		got, err := testutil.GatherAndCount(reg, name)
		if err != nil {
			t.Fatalf("gather %s: %v", name, err)
		}
		if got != 1 {
			t.Errorf("%s: expected one series, got %d", name, got)
		}
	}
}
