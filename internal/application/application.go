package application

import (
	"context"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// IDGenerator issues identifiers for orders, pairs, lines, services and photo owners.
type IDGenerator interface {
	NewID() string
}

const spanPrefix = "UC."

// Instrument holds the telemetry every use case reports: a span, RED metrics
// and one "use_case_done" log line.
type Instrument struct {
	useCase string
	tracer  observability.Tracer
	log     observability.Logger
	req     observability.Counter   // usecase_requests_total{use_case,outcome}
	dur     observability.Histogram // usecase_duration_seconds{use_case}
	extReq  observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extDur  observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstrument(tel observability.Observability, service, useCase string) *Instrument {
	tel = observability.Or(tel)
	m := tel.Metrics()
	return &Instrument{
		useCase: useCase,
		tracer:  tel.Tracer(),
		log:     tel.Logger().With(observability.F("service", service)),
		req:     m.Counter(observability.MUsecaseRequests),
		dur:     m.Histogram(observability.MUsecaseDuration),
		extReq:  m.Counter(observability.MExternalRequests),
		extDur:  m.Histogram(observability.MExternalRequestDuration),
	}
}

// Logger returns the service logger, without request scope.
func (i *Instrument) Logger() observability.Logger { return i.log }

// Run tracks one execution. Outcome and Status are reported when End is called.
type Run struct {
	inst    *Instrument
	ctx     context.Context
	span    trace.Span
	start   time.Time
	logger  observability.Logger
	outcome string
	status  string
	fields  []observability.Field
}

// Begin starts the span "UC.<spanName>" and binds the use case name on the request logger.
func (i *Instrument) Begin(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", i.useCase)}, attrs...)
	ctx, span := i.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	logger := logctx.FromOr(ctx, i.log).With(observability.F("use_case", i.useCase))
	return ctx, &Run{
		inst:    i,
		ctx:     ctx,
		span:    span,
		start:   time.Now(),
		logger:  logger,
		outcome: "success",
		status:  "OK",
	}
}

func (r *Run) Logger() observability.Logger { return r.logger }

func (r *Run) Span() trace.Span { return r.span }

// Fail marks the run as an error with a machine readable status.
func (r *Run) Fail(status string) {
	r.outcome, r.status = "error", status
}

// Status overrides the status text without changing the outcome.
func (r *Run) Status(status string) {
	r.status = status
}

// With adds fields to the final log line.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// External records one call to a collaborator.
func (r *Run) External(peer, endpoint, outcome string, started time.Time) {
	r.inst.extReq.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	r.inst.extDur.Observe(time.Since(started).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}

// End closes the span, records metrics and logs use_case_done.
func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.inst.req.Add(1,
		observability.L("use_case", r.inst.useCase),
		observability.L("outcome", r.outcome),
	)
	r.inst.dur.Observe(lat, observability.L("use_case", r.inst.useCase))

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}
	fields = append(fields, logctx.TraceFields(r.ctx)...)
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.Err(err))
	}
	r.logger.Info("use_case_done", fields...)
}
