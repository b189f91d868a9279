package main

import (
	"context" // Context for store writes

	"mobile_sale/internal/config"     // Custom import path (Config)
	"mobile_sale/internal/domain"     // Custom import path (Records)
	"mobile_sale/internal/repository" // Custom import path (Datasets)
	"mobile_sale/internal/store"      // Custom import path (Backends)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for dataset seeding. Populates the local datasets with
// the demo customers, products and orders used for a first run.
func main() {
	cfg := config.LoadConfig() // Load configuration

	local, err := store.NewLocalBackend(cfg.DataDir) // Seeding targets the local variant
	if err != nil {
		logrus.Fatalf("failed to open local store: %v", err)
	}
	repo := repository.NewRepository(local, true)
	ctx := context.Background()

	// Demo customers, owner-tagged; Thai names exercise the multi-byte path
	customers := []domain.Customer{
		{Name: "บริษัท ก จำกัด", Address: "123 กทม.", Owner: "sale01"},
		{Name: "ร้าน ข ขายดี", Address: "456 เชียงใหม่", Owner: "sale02"},
		{Name: "ลูกค้าทั่วไป", Address: "789 ภูเก็ต", Owner: "sale01"},
	}
	for _, c := range customers {
		if err := repo.AddCustomer(ctx, c); err != nil {
			logrus.Fatalf("seed customer %q: %v", c.Name, err)
		}
	}

	// Demo catalog, shared across users
	products := []domain.Product{
		{SKU: "A-001", Name: "สินค้า A", Price: 100},
		{SKU: "B-001", Name: "สินค้า B", Price: 200},
		{SKU: "C-001", Name: "สินค้า C", Price: 500},
	}
	for _, p := range products {
		if err := repo.AddProduct(ctx, p); err != nil {
			logrus.Fatalf("seed product %q: %v", p.Name, err)
		}
	}

	// Two historical orders so the counter continues at ORD-003
	orders := []domain.Order{
		{
			OrderID: "ORD-001", Date: "2023-10-01", Customer: "บริษัท ก จำกัด",
			Lines: []domain.OrderLine{{Product: "สินค้า A", Quantity: 10, UnitPrice: 100}},
			Total: 1000, Owner: "sale01",
		},
		{
			OrderID: "ORD-002", Date: "2023-10-02", Customer: "ร้าน ข ขายดี",
			Lines: []domain.OrderLine{{Product: "สินค้า C", Quantity: 5, UnitPrice: 500}},
			Total: 2500, Owner: "sale02",
		},
	}
	for _, o := range orders {
		if err := repo.AppendOrder(ctx, o); err != nil {
			logrus.Fatalf("seed order %q: %v", o.OrderID, err)
		}
	}

	logrus.Info("Seeding completed.") // Log successful seeding
}
