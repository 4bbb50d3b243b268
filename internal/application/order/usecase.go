package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
	useCaseOrderGet    = "order.get"
	publishPeer        = "outbox"
	publishEndpoint    = domain.EventCreated
	publishTimeout     = 300 * time.Millisecond
)

var (
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = errors.New("order: repository failure")
)

type PhotoRef struct {
	URL  string
	Path string
}

type PairInput struct {
	ShoeType    string
	ServiceIDs  []string
	Photo       PhotoRef
	Description string
}

type CreateOrderInput struct {
	Customer domain.Customer
	Pairs    []PairInput
}

type CreateOrderResult struct {
	Order *domain.Order
}

// CreateOrderUseCase validates a nested order request and persists the whole graph at once.
type CreateOrderUseCase struct {
	repo        domain.Repository
	catalog     catalog.Repository
	idGenerator application.IDGenerator
	publisher   domoutbox.Publisher
	now         func() time.Time
	inst        *application.Instrument
	totals      observability.Histogram
}

func NewCreateOrderUseCase(
	repo domain.Repository,
	catalogRepo catalog.Repository,
	idGen application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		repo:        repo,
		catalog:     catalogRepo,
		idGenerator: idGen,
		publisher:   publisher,
		now:         time.Now,
		inst:        application.NewInstrument(tel, orderService, useCaseOrderCreate),
		totals:      observability.Or(tel).Metrics().Histogram(observability.MOrderTotal),
	}
}

type pairSpec struct {
	shoeType catalog.ShoeType
	ids      []string
	in       PairInput
}

// Execute validates in a fixed order and fails fast; nothing is written unless every check passes.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "CreateOrder",
		attribute.Int("order.pairs", len(cmd.Pairs)),
	)
	defer func() { run.End(err) }()

	if err := cmd.Customer.Validate(); err != nil {
		run.Fail("CUSTOMER_INVALID")
		return nil, err
	}
	if len(cmd.Pairs) == 0 {
		run.Fail("PAIRS_REQUIRED")
		return nil, domain.ErrNoPairs
	}

	specs := make([]pairSpec, 0, len(cmd.Pairs))
	var allIDs []string
	for i, p := range cmd.Pairs {
		t, perr := catalog.ParseShoeType(p.ShoeType)
		if perr != nil {
			run.Fail("SHOE_TYPE_INVALID")
			return nil, fmt.Errorf("pair %d: %w", i+1, perr)
		}
		ids := uniqueIDs(p.ServiceIDs)
		if len(ids) == 0 {
			run.Fail("SERVICES_REQUIRED")
			return nil, fmt.Errorf("%w: pair %d", domain.ErrNoServices, i+1)
		}
		specs = append(specs, pairSpec{shoeType: t, ids: ids, in: p})
		allIDs = append(allIDs, ids...)
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	// Read outside the create transaction: lines capture name and price as of this
	// lookup, so a service deactivated before the insert still prices the order.
	services, err := uc.catalog.FindByIDs(ctx, uniqueIDs(allIDs))
	if err != nil {
		run.Fail("CATALOG_LOOKUP_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	now := uc.now().UTC()
	entity, err := domain.New(uc.idGenerator.NewID(), cmd.Customer, now)
	if err != nil {
		run.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, err
	}
	for i, spec := range specs {
		pair := domain.Pair{
			ID:          uc.idGenerator.NewID(),
			ShoeType:    spec.shoeType,
			Photo:       domain.Photo{URL: strings.TrimSpace(spec.in.Photo.URL), Path: spec.in.Photo.Path},
			Description: strings.TrimSpace(spec.in.Description),
			CreatedAt:   now,
		}
		for _, id := range spec.ids {
			svc, ok := services[id]
			if !ok {
				run.Fail("SERVICE_INVALID")
				return nil, fmt.Errorf("%w: pair %d: unknown service %s", domain.ErrInvalidService, i+1, id)
			}
			if err := pair.AddLine(uc.idGenerator.NewID(), svc, now); err != nil {
				run.Fail("SERVICE_INVALID")
				return nil, fmt.Errorf("pair %d: %w", i+1, err)
			}
		}
		entity.AddPair(pair)
	}
	entity.Recalculate()
	if err := entity.Validate(); err != nil {
		run.Fail("ORDER_INVALID")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}
	if err := uc.repo.Create(ctx, entity); err != nil {
		run.Fail("REPO_CREATE_FAILED")
		return nil, wrapRepositoryError(err)
	}

	uc.totals.Observe(entity.Total.InexactFloat64(), observability.L("shoe_types", shoeTypesLabel(entity)))
	run.With(
		observability.F("order_id", entity.ID),
		observability.F("total", entity.Total.StringFixed(2)),
	)
	run.Span().SetAttributes(
		attribute.String("order.id", entity.ID),
		attribute.String("order.total", entity.Total.StringFixed(2)),
	)
	run.Span().AddEvent("order.created", trace.WithAttributes(attribute.Int("order.lines", entity.LineCount())))

	if publishErr := uc.publish(ctx, run, domain.NewCreatedEvent(entity)); publishErr != nil {
		run.Status("EVENT_PUBLISH_FAILED")
		run.With(observability.F("event_publish_error", publishErr.Error()))
	}

	return &CreateOrderResult{Order: entity.Clone()}, nil
}

func (uc *CreateOrderUseCase) publish(ctx context.Context, run *application.Run, e domoutbox.Event) error {
	if uc.publisher == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := uc.publisher.Publish(pubCtx, e)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case pubCtx.Err() != nil:
		outcome, err = "canceled", pubCtx.Err()
	}
	run.External(publishPeer, publishEndpoint, outcome, start)
	return err
}

// GetOrderUseCase loads one hydrated order.
type GetOrderUseCase struct {
	repo domain.Repository
	inst *application.Instrument
}

func NewGetOrderUseCase(repo domain.Repository, tel observability.Observability) *GetOrderUseCase {
	return &GetOrderUseCase{
		repo: repo,
		inst: application.NewInstrument(tel, orderService, useCaseOrderGet),
	}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, id string) (_ *domain.Order, err error) {
	ctx, run := uc.inst.Begin(ctx, "GetOrder", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	if strings.TrimSpace(id) == "" {
		run.Fail("ORDER_ID_REQUIRED")
		return nil, ErrNotFound
	}
	o, err := uc.repo.Get(ctx, id)
	if err != nil {
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}

// shoeTypesLabel is the single shoe type of the order, or MIXED.
func shoeTypesLabel(o *domain.Order) string {
	label := ""
	for _, p := range o.Pairs {
		switch {
		case label == "":
			label = string(p.ShoeType)
		case label != string(p.ShoeType):
			return "MIXED"
		}
	}
	return label
}
