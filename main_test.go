package main

import (
	"context"
	"testing"

	appcatalog "github.com/mathieu6700417/conciergeriecordo/internal/application/catalog"
	apporder "github.com/mathieu6700417/conciergeriecordo/internal/application/order"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/id"
	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/memory"
)

func TestMemoryCatalogAcceptsOrders(t *testing.T) {
	ctx := context.Background()
	ids := id.NewUUIDGenerator()

	services, err := memoryCatalog(ctx, ids, nil)
	if err != nil {
		t.Fatalf("memory catalog: %v", err)
	}
	listed, err := appcatalog.NewListServicesUseCase(services, nil).Execute(ctx, appcatalog.ListServicesInput{ShoeType: "FEMALE"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed.Services) != 7 {
		t.Fatalf("expected 7 female services, got %d", len(listed.Services))
	}

	create := apporder.NewCreateOrderUseCase(memory.NewOrderRepository(), services, ids, nil, nil)
	res, err := create.Execute(ctx, apporder.CreateOrderInput{
		Customer: domorder.Customer{Name: "Jeanne", Email: "jeanne@example.com", Phone: "0600000000", Company: "Atelier"},
		Pairs: []apporder.PairInput{{
			ShoeType:   "FEMALE",
			ServiceIDs: []string{listed.Services[0].ID},
		}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !res.Order.Total.Equal(listed.Services[0].Price) {
		t.Errorf("total = %s, want %s", res.Order.Total, listed.Services[0].Price)
	}
}
