package main

import (
	"context"
	"errors"
	"log"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/pkg/database"

	"github.com/shopspring/decimal"
)

type demoProduct struct {
	sku, name    string
	price, cost  string
	openingStock int
}

var demoProducts = []demoProduct{
	{"WIDGET-1", "Widget", "4.50", "2.00", 10},
	{"GADGET-1", "Gadget", "12.00", "7.25", 25},
	{"CABLE-USB-C", "USB-C Cable 1m", "3.99", "1.10", 100},
	{"BATTERY-AA4", "AA Battery 4-pack", "5.49", "2.80", 5},
}

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	ledger := service.NewLedgerService(db, productRepo, repository.NewTransactionRepo(db), nil, nil)
	inventory := service.NewInventoryService(db, productRepo, repository.NewCategoryRepo(db), ledger, nil, nil)

	// 3. System user
	admin, err := userRepo.FindByEmail(ctx, "admin@example.com")
	if errors.Is(err, apperr.ErrNotFound) {
		admin = &model.User{Email: "admin@example.com", FullName: "Store Administrator", IsActive: true}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("❌ Failed to create admin user: %v", err)
		}
		log.Printf("✅ Admin user created: %s (%s)", admin.Email, admin.ID)
	} else if err != nil {
		log.Fatalf("❌ Failed to look up admin user: %v", err)
	}
	actor := service.Actor{ID: admin.ID, Name: admin.FullName, Email: admin.Email}

	// 4. Default category
	category := findOrCreateCategory(ctx, inventory, "General")

	// 5. Demo products with opening stock booked through the ledger
	for _, p := range demoProducts {
		if _, err := productRepo.FindBySKU(ctx, p.sku); err == nil {
			log.Printf("Skipping %s, already present", p.sku)
			continue
		}

		created, err := inventory.CreateProduct(ctx, &service.CreateProductRequest{
			SKU:          p.sku,
			Name:         p.name,
			CategoryID:   &category.ID,
			Price:        decimal.RequireFromString(p.price),
			CostPrice:    decimal.RequireFromString(p.cost),
			OpeningStock: p.openingStock,
		}, actor)
		if err != nil {
			log.Fatalf("❌ Failed to seed %s: %v", p.sku, err)
		}
		log.Printf("✅ %s seeded with %d units", created.SKU, created.CurrentStock)
	}
}

func findOrCreateCategory(ctx context.Context, inventory service.InventoryService, name string) *model.Category {
	categories, err := inventory.GetCategories(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to list categories: %v", err)
	}
	for i := range categories {
		if categories[i].Name == name {
			return &categories[i]
		}
	}

	category, err := inventory.CreateCategory(ctx, &service.CategoryRequest{Name: name, Description: "Default category"})
	if err != nil {
		log.Fatalf("❌ Failed to create category: %v", err)
	}
	log.Printf("✅ Category %q created", name)
	return category
}
