package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	appcatalog "github.com/mathieu6700417/conciergeriecordo/internal/application/catalog"
	appmedia "github.com/mathieu6700417/conciergeriecordo/internal/application/media"
	"github.com/mathieu6700417/conciergeriecordo/internal/application/notification"
	apporder "github.com/mathieu6700417/conciergeriecordo/internal/application/order"
	apppayment "github.com/mathieu6700417/conciergeriecordo/internal/application/payment"
	"github.com/mathieu6700417/conciergeriecordo/internal/config"
	domcatalog "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/filestore"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/id"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/kafka"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/memory"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/notify"
	obsinfra "github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability/oteltrace"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability/prometrics"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/observability/zaplogger"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/postgres"
	redisinfra "github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/redis"
	stripeadapter "github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/stripe"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	httppresentation "github.com/mathieu6700417/conciergeriecordo/internal/presentation/http"
	workerpresentation "github.com/mathieu6700417/conciergeriecordo/internal/presentation/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := zaplogger.New(zaplogger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	shutdownTracing, err := oteltrace.Setup(context.Background(), cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint, cfg.TraceSampleRatio)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	counters, histograms := prometrics.New(nil, "").Standard()
	tel := obsinfra.New(oteltrace.New(cfg.ServiceName), zl, counters, histograms)
	systemLogger := tel.Logger().With(observability.F("component", "main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ids := id.NewUUIDGenerator()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		orders   domorder.Repository
		services domcatalog.Repository
		health   func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		systemLogger.Info("migrations_applied", observability.F("versions", applied))
		orders = postgres.NewOrderRepository(pool)
		services = postgres.NewCatalogRepository(pool)
		health = pingPool(pool)
	} else {
		systemLogger.Warn("storage_in_memory", observability.F("reason", "DATABASE_URL not set"))
		orders = memory.NewOrderRepository()
		if services, err = memoryCatalog(ctx, ids, tel); err != nil {
			return err
		}
	}

	var ledger apppayment.EventLedger
	if cfg.RedisAddr != "" {
		rdb, err := redisinfra.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		ledger = redisinfra.NewEventLedger(rdb, cfg.EventTTL)
		health = chainHealth(health, pingRedis(rdb))
	} else {
		systemLogger.Warn("event_ledger_in_memory", observability.F("reason", "REDIS_ADDR not set"))
		ledger = memory.NewEventLedger(cfg.EventTTL)
	}

	// Events: the in-process bus drives notifications; Kafka mirrors them when configured.
	bus := outbox.NewBus(tel)
	var publisher domoutbox.Publisher = bus
	var sender notify.Sender = notify.NewLogSender(tel)
	kc := kafka.NewClient(strings.Join(cfg.KafkaBrokers, ","))
	if kc.Enabled() {
		events, err := kafka.NewEventPublisher(kc, cfg.EventsTopic)
		if err != nil {
			return err
		}
		defer func() { _ = events.Close() }()
		publisher = outbox.Multi{bus, events}

		mail, err := kafka.NewMailSender(kc, cfg.MailTopic)
		if err != nil {
			return err
		}
		defer func() { _ = mail.Close() }()
		sender = mail
		systemLogger.Info("kafka_enabled", observability.F("brokers", cfg.KafkaBrokers))
	}

	dispatcher, err := notify.NewDispatcher(notify.Config{
		From:       cfg.FromEmail,
		AdminEmail: cfg.AdminEmail,
		SiteURL:    cfg.PublicBaseURL,
		Brand:      cfg.Brand,
	}, sender)
	if err != nil {
		return err
	}
	workerpresentation.NewNotificationWorker(bus, notification.NewService(dispatcher, cfg.NotifyTimeout, tel), tel).Start()

	bus.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		bus.Stop(stopCtx)
	}()

	media, err := filestore.New(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return err
	}

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		systemLogger.Warn("stripe_not_configured", observability.F("reason", "STRIPE_SECRET_KEY or STRIPE_WEBHOOK_SECRET not set"))
	}

	handler := httppresentation.NewHandler(httppresentation.UseCases{
		ListServices: appcatalog.NewListServicesUseCase(services, tel),
		UploadPhoto:  appmedia.NewUploadPhotoUseCase(media, ids, 0, tel),
		CreateOrder:  apporder.NewCreateOrderUseCase(orders, services, ids, publisher, tel),
		GetOrder:     apporder.NewGetOrderUseCase(orders, tel),
		Checkout: apppayment.NewInitiateCheckoutUseCase(orders, stripeadapter.NewGateway(cfg.StripeSecretKey), apppayment.CheckoutConfig{
			Currency:   cfg.Currency,
			SuccessURL: cfg.SuccessURL(),
			CancelURL:  cfg.CancelURL(),
			Timeout:    cfg.PaymentTimeout,
		}, tel),
		Reconcile: apppayment.NewReconcilePaymentUseCase(
			stripeadapter.NewVerifier(cfg.StripeWebhookSecret), orders, ledger, publisher, tel,
		),
	}, httppresentation.Options{
		Metrics:  promhttp.Handler(),
		MediaDir: media.Root(),
		Health:   health,
	}, tel.Logger(), tel)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			systemLogger.Error("http_server_error", observability.Err(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.Err(err))
		return err
	}
	systemLogger.Info("http_server_stopped")
	return nil
}

// memoryCatalog returns an in-memory catalog seeded with the default price list.
func memoryCatalog(ctx context.Context, ids application.IDGenerator, tel observability.Observability) (*memory.CatalogRepository, error) {
	repo := memory.NewCatalogRepository()
	seed := appcatalog.NewSeedCatalogUseCase(repo, ids, tel)
	if _, err := seed.Execute(ctx, appcatalog.SeedCatalogInput{Entries: appcatalog.DefaultCatalog()}); err != nil {
		return nil, fmt.Errorf("seed in-memory catalog: %w", err)
	}
	return repo, nil
}

func pingPool(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

func pingRedis(rdb *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

func chainHealth(checks ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
