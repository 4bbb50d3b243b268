package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService  = "catalog-service"
	useCaseListSvcs = "catalog.list"
)

type ListServicesInput struct {
	// ShoeType is matched case-insensitively; empty means every type.
	ShoeType string
}

type ListServicesResult struct {
	Services []domain.Service
}

type ListServicesUseCase struct {
	repo domain.Repository
	inst *application.Instrument
}

func NewListServicesUseCase(repo domain.Repository, tel observability.Observability) *ListServicesUseCase {
	return &ListServicesUseCase{
		repo: repo,
		inst: application.NewInstrument(tel, catalogService, useCaseListSvcs),
	}
}

// Execute returns active services sorted by shoe type then name.
func (uc *ListServicesUseCase) Execute(ctx context.Context, cmd ListServicesInput) (_ *ListServicesResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "ListServices", attribute.String("catalog.shoe_type", cmd.ShoeType))
	defer func() { run.End(err) }()

	var filter *domain.ShoeType
	if strings.TrimSpace(cmd.ShoeType) != "" {
		t, perr := domain.ParseShoeType(cmd.ShoeType)
		if perr != nil {
			run.Fail("SHOE_TYPE_INVALID")
			return nil, perr
		}
		filter = &t
	}

	services, err := uc.repo.ListActive(ctx, filter)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	sort.SliceStable(services, func(i, j int) bool {
		if services[i].ShoeType != services[j].ShoeType {
			return services[i].ShoeType < services[j].ShoeType
		}
		return services[i].Name < services[j].Name
	})
	run.With(observability.F("services", len(services)))
	return &ListServicesResult{Services: services}, nil
}
