package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/shopspring/decimal"
)

func getPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Open(ctx, url)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	if _, err := Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func seedServices(t *testing.T, repo *CatalogRepository) (catalog.Service, catalog.Service) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	a := &catalog.Service{Name: "Talons " + suffix, Price: decimal.RequireFromString("15.00"), ShoeType: catalog.ShoeTypeFemale, Active: true}
	b := &catalog.Service{Name: "Semelles " + suffix, Price: decimal.RequireFromString("22.00"), ShoeType: catalog.ShoeTypeFemale, Active: true}
	for _, s := range []*catalog.Service{a, b} {
		if err := repo.Upsert(ctx, s); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	return *a, *b
}

func newOrder(t *testing.T, services ...catalog.Service) *domain.Order {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	o, err := domain.New(uuid.NewString(), domain.Customer{Name: "J", Email: "j@example.com", Phone: "06", Company: "Acme"}, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := domain.Pair{ID: uuid.NewString(), ShoeType: catalog.ShoeTypeFemale, Description: "heel", CreatedAt: now}
	for _, s := range services {
		if err := p.AddLine(uuid.NewString(), s, now); err != nil {
			t.Fatalf("add line: %v", err)
		}
	}
	o.AddPair(p)
	o.Recalculate()
	return o
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()

	applied, err := Migrate(context.Background(), pool)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing to apply, got %v", applied)
	}
}

func TestCatalogUpsertByNameAndShoeType(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()
	repo := NewCatalogRepository(pool)
	ctx := context.Background()

	a, _ := seedServices(t, repo)
	again := &catalog.Service{Name: a.Name, Price: decimal.RequireFromString("18.50"), ShoeType: a.ShoeType, Active: true}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if again.ID != a.ID {
		t.Errorf("expected id %s to be reused, got %s", a.ID, again.ID)
	}

	found, err := repo.FindByIDs(ctx, []string{a.ID, "missing"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || !found[a.ID].Price.Equal(decimal.RequireFromString("18.50")) {
		t.Errorf("unexpected lookup: %+v", found)
	}
}

func TestOrderRoundTrip(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()
	a, b := seedServices(t, NewCatalogRepository(pool))
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	o := newOrder(t, a, b)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, o); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate id, got %v", err)
	}

	got, err := repo.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("loaded order breaks invariants: %v", err)
	}
	if !got.Total.Equal(decimal.RequireFromString("37.00")) || got.LineCount() != 2 {
		t.Errorf("unexpected order: total %s lines %d", got.Total, got.LineCount())
	}
	if got.Pairs[0].Lines[0].ServiceID != a.ID {
		t.Errorf("lines out of creation order")
	}

	if _, err := repo.Get(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderCreateRollsBackOnFailure(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()
	a, _ := seedServices(t, NewCatalogRepository(pool))
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	o := newOrder(t, a)
	o.Pairs[0].Lines[0].ServiceID = "does-not-exist"
	if err := repo.Create(ctx, o); err == nil {
		t.Fatal("expected foreign key failure")
	}
	if _, err := repo.Get(ctx, o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("partial order visible after rollback: %v", err)
	}
}

func TestOrderUpdateSerializesTransitions(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()
	a, _ := seedServices(t, NewCatalogRepository(pool))
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	o := newOrder(t, a)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		mu      sync.Mutex
		changes int
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, o.ID, func(o *domain.Order) (bool, error) {
				changed, err := o.MarkPaid("pi_1")
				if changed {
					mu.Lock()
					changes++
					mu.Unlock()
				}
				return changed, err
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	if changes != 1 {
		t.Errorf("expected exactly one transition, got %d", changes)
	}
	got, _ := repo.Get(ctx, o.ID)
	if got.Status != domain.StatusPaid || got.PaymentRef != "pi_1" {
		t.Errorf("unexpected state %s %s", got.Status, got.PaymentRef)
	}
}

func TestOrderUpdateStoresCheckoutSession(t *testing.T) {
	pool := getPool(t)
	defer pool.Close()
	a, _ := seedServices(t, NewCatalogRepository(pool))
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	o := newOrder(t, a)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Update(ctx, o.ID, func(o *domain.Order) (bool, error) {
		return o.AttachCheckoutSession("cs_test_1")
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CheckoutSessionID != "cs_test_1" || got.Status != domain.StatusPending {
		t.Errorf("unexpected state %s %q", got.Status, got.CheckoutSessionID)
	}
}
