package catalog

import (
	"context"
	"errors"
	"testing"

	domain "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

func newRepo() *memory.CatalogRepository {
	mk := func(id, name string, t domain.ShoeType, active bool) domain.Service {
		return domain.Service{ID: id, Name: name, Price: decimal.NewFromInt(10), ShoeType: t, Active: active}
	}
	return memory.NewCatalogRepository(
		mk("1", "Semelles", domain.ShoeTypeMale, true),
		mk("2", "Cirage", domain.ShoeTypeMale, true),
		mk("3", "Talons", domain.ShoeTypeFemale, true),
		mk("4", "Patins", domain.ShoeTypeFemale, false),
	)
}

func TestListServicesSortsActive(t *testing.T) {
	uc := NewListServicesUseCase(newRepo(), nil)

	res, err := uc.Execute(context.Background(), ListServicesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, s := range res.Services {
		names = append(names, s.Name)
	}
	want := []string{"Talons", "Cirage", "Semelles"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestListServicesFiltersByShoeType(t *testing.T) {
	uc := NewListServicesUseCase(newRepo(), nil)

	res, err := uc.Execute(context.Background(), ListServicesInput{ShoeType: "female"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Services) != 1 || res.Services[0].ID != "3" {
		t.Errorf("unexpected services: %+v", res.Services)
	}

	if _, err := uc.Execute(context.Background(), ListServicesInput{ShoeType: "child"}); !errors.Is(err, domain.ErrInvalidShoeType) {
		t.Errorf("expected ErrInvalidShoeType, got %v", err)
	}
}
