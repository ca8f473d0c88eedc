package service

import (
	"context"
	"testing"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductWithOpeningStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	category, err := e.inventory.CreateCategory(ctx, &CategoryRequest{Name: "Hardware"})
	require.NoError(t, err)

	product, err := e.inventory.CreateProduct(ctx, &CreateProductRequest{
		SKU:          "NEW-1",
		Name:         "New thing",
		CategoryID:   &category.ID,
		Price:        money("9.99"),
		CostPrice:    money("4.00"),
		OpeningStock: 25,
	}, e.cashier)
	require.NoError(t, err)

	assert.Equal(t, 25, product.CurrentStock)
	assert.Equal(t, model.DefaultLowStockThreshold, product.LowStockThreshold)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Hardware", product.Category.Name)
	assert.Equal(t, e.cashier.ID.String(), product.CreatedBy)

	rows := e.ledgerOf(t, product.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TxPurchase, rows[0].TransactionType)
	assert.Equal(t, 0, rows[0].PreviousStock)
	assert.Equal(t, 25, rows[0].NewStock)
	assert.True(t, money("100.00").Equal(rows[0].TotalAmount.Decimal))
}

func TestCreateProductWithoutOpeningStockHasNoLedger(t *testing.T) {
	e := newEnv(t)

	product, err := e.inventory.CreateProduct(context.Background(), &CreateProductRequest{
		SKU: "EMPTY-1", Name: "Empty", Price: money("1.00"),
	}, e.cashier)
	require.NoError(t, err)

	assert.Equal(t, 0, product.CurrentStock)
	assert.Empty(t, e.ledgerOf(t, product.ID))
}

func TestCreateProductKeepsZeroThreshold(t *testing.T) {
	e := newEnv(t)
	zero := 0

	created, err := e.inventory.CreateProduct(context.Background(), &CreateProductRequest{
		SKU: "Z-1", Name: "Never reorder", Price: money("1.00"), LowStockThreshold: &zero, OpeningStock: 1,
	}, e.cashier)
	require.NoError(t, err)

	stored, err := e.products.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LowStockThreshold)
	assert.False(t, stored.IsLowStock())
	assert.Equal(t, "Adequate Stock", stored.StockStatus())
}

func TestCreateProductErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.CreateProduct(t, e.db, "TAKEN", 1, "1.00")

	_, err := e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "TAKEN", Name: "Dup", Price: money("1")}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "", Name: "No SKU"}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "NEG", Name: "Neg", Price: money("-1")}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "NEG-OPEN", Name: "Neg", OpeningStock: -3}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	missing := uuid.New()
	_, err = e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "ORPHAN", Name: "Orphan", CategoryID: &missing, OpeningStock: 5}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.products.FindBySKU(ctx, "ORPHAN")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, int64(0), e.count(t, &model.StockTransaction{}))
}

func TestUpdateProductLeavesStockAlone(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "UPD-1", 7, "2.00")

	name := "Renamed"
	price := money("2.50")
	threshold := 3
	updated, err := e.inventory.UpdateProduct(context.Background(), p.ID, &UpdateProductRequest{
		Name:              &name,
		Price:             &price,
		LowStockThreshold: &threshold,
	}, e.cashier)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "UPD-1", updated.SKU)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 3, updated.LowStockThreshold)
	assert.Equal(t, 7, updated.CurrentStock)
	assert.False(t, updated.IsLowStock())
	assert.Empty(t, e.ledgerOf(t, p.ID))

	_, err = e.inventory.UpdateProduct(context.Background(), uuid.New(), &UpdateProductRequest{Name: &name}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	negative := decimal.NewFromInt(-5)
	_, err = e.inventory.UpdateProduct(context.Background(), p.ID, &UpdateProductRequest{CostPrice: &negative}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeactivateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "DEA-1", 2, "1.00")
	testutil.CreateProduct(t, e.db, "DEA-2", 2, "1.00")

	require.NoError(t, e.inventory.DeactivateProduct(ctx, p.ID, e.cashier))

	active, err := e.inventory.GetProducts(ctx, repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "DEA-2", active[0].SKU)

	all, err := e.inventory.GetProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, e.inventory.DeactivateProduct(ctx, uuid.New(), e.cashier), apperr.ErrNotFound)
}

func TestProductFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	category, err := e.inventory.CreateCategory(ctx, &CategoryRequest{Name: "Cables"})
	require.NoError(t, err)

	_, err = e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "CAB-1", Name: "Cable", CategoryID: &category.ID, OpeningStock: 50}, e.cashier)
	require.NoError(t, err)
	testutil.CreateProduct(t, e.db, "LOW-1", 4, "1.00")

	low, err := e.inventory.GetProducts(ctx, repository.ProductFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "LOW-1", low[0].SKU)

	inCategory, err := e.inventory.GetProducts(ctx, repository.ProductFilter{CategoryID: &category.ID})
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, "CAB-1", inCategory[0].SKU)
}

func TestCategoryLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	category, err := e.inventory.CreateCategory(ctx, &CategoryRequest{Name: "Snacks", Description: "Food"})
	require.NoError(t, err)

	_, err = e.inventory.CreateCategory(ctx, &CategoryRequest{Name: "Snacks"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.inventory.CreateCategory(ctx, &CategoryRequest{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := e.inventory.UpdateCategory(ctx, category.ID, &CategoryRequest{Name: "Snacks & Drinks"})
	require.NoError(t, err)
	assert.Equal(t, "Snacks & Drinks", updated.Name)

	_, err = e.inventory.UpdateCategory(ctx, uuid.New(), &CategoryRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	product, err := e.inventory.CreateProduct(ctx, &CreateProductRequest{SKU: "CHIPS", Name: "Chips", CategoryID: &category.ID}, e.cashier)
	require.NoError(t, err)

	require.NoError(t, e.inventory.DeleteCategory(ctx, category.ID))
	assert.ErrorIs(t, e.inventory.DeleteCategory(ctx, category.ID), apperr.ErrNotFound)

	reloaded, err := e.inventory.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)

	categories, err := e.inventory.GetCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
