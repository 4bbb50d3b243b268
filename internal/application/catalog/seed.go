package catalog

import (
	"context"
	"fmt"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseSeed = "catalog.seed"

// SeedEntry describes one service of a reference catalog.
type SeedEntry struct {
	Name          string
	Price         string
	ShoeType      domain.ShoeType
	Description   string
	ImageFilename string
}

type SeedCatalogInput struct {
	Entries []SeedEntry
}

type SeedCatalogResult struct {
	Services []domain.Service
}

// SeedCatalogUseCase makes the given entries the only active services. Existing rows
// are matched by (name, shoe type), so running it twice changes nothing.
type SeedCatalogUseCase struct {
	repo domain.Repository
	ids  application.IDGenerator
	inst *application.Instrument
}

func NewSeedCatalogUseCase(repo domain.Repository, ids application.IDGenerator, tel observability.Observability) *SeedCatalogUseCase {
	return &SeedCatalogUseCase{
		repo: repo,
		ids:  ids,
		inst: application.NewInstrument(tel, catalogService, useCaseSeed),
	}
}

func (uc *SeedCatalogUseCase) Execute(ctx context.Context, cmd SeedCatalogInput) (_ *SeedCatalogResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "SeedCatalog", attribute.Int("catalog.entries", len(cmd.Entries)))
	defer func() { run.End(err) }()

	// validate everything before touching the store
	services := make([]*domain.Service, 0, len(cmd.Entries))
	for _, e := range cmd.Entries {
		price, perr := decimal.NewFromString(e.Price)
		if perr != nil {
			run.Fail("PRICE_INVALID")
			return nil, fmt.Errorf("%w: %s: %q", domain.ErrInvalidPrice, e.Name, e.Price)
		}
		svc, verr := domain.NewService(uc.ids.NewID(), e.Name, price, e.ShoeType, e.Description)
		if verr != nil {
			run.Fail("ENTRY_INVALID")
			return nil, fmt.Errorf("%s: %w", e.Name, verr)
		}
		svc.ImageFilename = e.ImageFilename
		services = append(services, svc)
	}

	// Upsert before deactivating: a failure part way leaves the previous catalog active.
	out := make([]domain.Service, 0, len(services))
	keep := make([]string, 0, len(services))
	for _, svc := range services {
		if err := uc.repo.Upsert(ctx, svc); err != nil {
			run.Fail("REPO_UPSERT_FAILED")
			return nil, err
		}
		out = append(out, *svc)
		keep = append(keep, svc.ID)
	}
	if err := uc.repo.DeactivateExcept(ctx, keep); err != nil {
		run.Fail("REPO_DEACTIVATE_FAILED")
		return nil, err
	}
	run.With(observability.F("services", len(out)))
	return &SeedCatalogResult{Services: out}, nil
}

// DefaultCatalog is the reference price list of the workshop.
func DefaultCatalog() []SeedEntry {
	const (
		heelRubber = "Réparation et remplacement de la partie talon sur une chaussure de type basket pour compenser l'usure de la chaussure."
		padClassic = "Pose d'une semelle en caoutchouc antidérapante pour protéger et remédier à l'usure naturelle d'une chaussure. Pour chaussures de ville fines ou semelles cuir."
		padRubber  = "Pose d'une semelle en caoutchouc type gomme avec du relief sur la semelle existante qui est au contact du sol pour protéger la semelle des intempéries et tenir un rôle antidérapant, ou remédier à l'usure naturelle d'une chaussure"
		resole     = "Ressemelage complet sur une paire de basket grâce à une couche de caoutchouc avec des reliefs antidérapants. Utile pour remédier à l'usure importante de la paire."
		other      = "Autres réparations sur devis"
	)
	male, female := domain.ShoeTypeMale, domain.ShoeTypeFemale
	return []SeedEntry{
		{"Talon classique", "22.00", male, "Changement du talon sur une chaussure de ville homme", "talon-homme.png"},
		{"Talon gomme", "25.00", male, heelRubber, "talon-gomme.png"},
		{"Patin classique", "26.00", male, padClassic, "talon-patin-classique-homme.png"},
		{"Patin gomme", "30.00", male, padRubber, "patin-gomme.png"},
		{"Ressemelage complet Basket", "60.00", male, resole, "ressemelage-basket.png"},
		{"Autre (collage, couture, ...)", "0.00", male, other, ""},

		{"Talon aiguille", "12.00", female, "Changement des talons aiguilles sur une paire femme (ne comprend pas la remise en beauté de l'enrobage du talon s'il est très abimé - nous consulter.)", "talon-patin-classique-femme.png"},
		{"Talon classique", "15.00", female, "Remplacement du talon usé qui est au contact du sol.", "talon-femme.png"},
		{"Talon gomme", "23.00", female, heelRubber, "talon-gomme.png"},
		{"Patin", "22.00", female, padClassic, "talon-patin-classique-femme.png"},
		{"Patin gomme", "26.00", female, padRubber, "patin-gomme.png"},
		{"Ressemelage complet Basket", "50.00", female, resole, "ressemelage-basket.png"},
		{"Autre (collage, couture, ...)", "0.00", female, other, ""},
	}
}
