// Command seed loads the reference service catalog into Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appcatalog "github.com/mathieu6700417/conciergeriecordo/internal/application/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/config"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/id"
	obsinfra "github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability/zaplogger"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/postgres"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	zl, err := zaplogger.New(zaplogger.Options{Service: cfg.ServiceName + "-seed", Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	tel := obsinfra.New(nil, zl, nil, nil)
	logger := tel.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if _, err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	uc := appcatalog.NewSeedCatalogUseCase(postgres.NewCatalogRepository(pool), id.NewUUIDGenerator(), tel)
	res, err := uc.Execute(ctx, appcatalog.SeedCatalogInput{Entries: appcatalog.DefaultCatalog()})
	if err != nil {
		return err
	}
	for _, s := range res.Services {
		logger.Info("service_seeded",
			observability.F("name", s.Name),
			observability.F("shoe_type", string(s.ShoeType)),
			observability.F("price", s.Price.StringFixed(2)),
		)
	}
	logger.Info("catalog_seeded", observability.F("services", len(res.Services)))
	return nil
}
