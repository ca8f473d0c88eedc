// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB creates a migrated in-memory SQLite database for testing
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every pooled connection would get its own empty :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts an active user to act as cashier / creator
func CreateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email, FullName: "Test " + email, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProduct inserts a product with the given stock directly, bypassing the ledger
func CreateProduct(t *testing.T, db *gorm.DB, sku string, stock int, price string) *model.Product {
	t.Helper()

	product := &model.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		CurrentStock:      stock,
		Price:             decimal.RequireFromString(price),
		CostPrice:         decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		LowStockThreshold: model.DefaultLowStockThreshold,
		IsActive:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// Deactivate flips is_active off; gorm skips false on create because of the column default
func Deactivate(t *testing.T, db *gorm.DB, id uuid.UUID) {
	t.Helper()

	if err := db.Model(&model.Product{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate product: %v", err)
	}
}
