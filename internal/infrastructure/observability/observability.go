package observability

import (
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
)

// New assembles the provider handed to every layer. Nil ports become no-ops and
// metric keys missing from the maps resolve to no-op instruments, so cmd/seed can
// run with a logger only.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	p := &provider{
		tracer: observability.NopTracer(),
		logger: observability.NopLogger(),
		metrics: instruments{
			counters:   withoutNil(counters),
			histograms: withoutNil(histograms),
		},
	}
	if tracer != nil {
		p.tracer = tracer
	}
	if logger != nil {
		p.logger = logger
	}
	return p
}

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }

type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(key observability.MetricKey) observability.Counter {
	if c, ok := m.counters[key]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(key observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[key]; ok {
		return h
	}
	return observability.NopHistogram()
}

// withoutNil copies in, dropping nil instruments.
func withoutNil[V any](in map[observability.MetricKey]V) map[observability.MetricKey]V {
	out := make(map[observability.MetricKey]V, len(in))
	for k, v := range in {
		if any(v) != nil {
			out[k] = v
		}
	}
	return out
}
