package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go-inventory-pos/internal/apperr"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransactionPurchase(t *testing.T) {
	e := newEnv(t)
	widget := testutil.CreateProduct(t, e.db, "WIDGET-1", 10, "4.00")

	entry, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       widget.ID,
		TransactionType: model.TxPurchase,
		Quantity:        5,
		UnitPrice:       decimal.NewNullDecimal(decimal.RequireFromString("2.00")),
	}, e.cashier)
	require.NoError(t, err)

	assert.Equal(t, 10, entry.PreviousStock)
	assert.Equal(t, 15, entry.NewStock)
	require.True(t, entry.TotalAmount.Valid)
	assert.True(t, decimal.RequireFromString("10.00").Equal(entry.TotalAmount.Decimal))
	assert.Equal(t, 15, e.stock(t, widget.ID))
	assert.Equal(t, &e.cashier.ID, entry.CreatedByID)

	assert.Equal(t, 1, e.events.count("stock_update"))
	assert.Equal(t, 1, e.cache.invalidated)
}

func TestApplyTransactionDirection(t *testing.T) {
	tests := []struct {
		txType model.TransactionType
		want   int
	}{
		{model.TxPurchase, 23},
		{model.TxReturn, 23},
		{model.TxSale, 17},
		{model.TxAdjustment, 17},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			e := newEnv(t)
			p := testutil.CreateProduct(t, e.db, "DIR-1", 20, "1.00")

			entry, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
				ProductID:       p.ID,
				TransactionType: tt.txType,
				Quantity:        3,
			}, Actor{})
			require.NoError(t, err)

			assert.Equal(t, 20, entry.PreviousStock)
			assert.Equal(t, tt.want, entry.NewStock)
			assert.Equal(t, tt.want, e.stock(t, p.ID))
			assert.False(t, entry.UnitPrice.Valid)
			assert.False(t, entry.TotalAmount.Valid)
			assert.Nil(t, entry.CreatedByID)
		})
	}
}

func TestApplyTransactionValidation(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "VAL-1", 5, "1.00")

	tests := []struct {
		name string
		req  ApplyTransactionRequest
	}{
		{"zero quantity", ApplyTransactionRequest{ProductID: p.ID, TransactionType: model.TxPurchase, Quantity: 0}},
		{"negative quantity", ApplyTransactionRequest{ProductID: p.ID, TransactionType: model.TxPurchase, Quantity: -2}},
		{"unknown type", ApplyTransactionRequest{ProductID: p.ID, TransactionType: "gift", Quantity: 1}},
		{"negative price", ApplyTransactionRequest{ProductID: p.ID, TransactionType: model.TxPurchase, Quantity: 1,
			UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(-1))}},
		{"missing product id", ApplyTransactionRequest{TransactionType: model.TxPurchase, Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.ApplyTransaction(context.Background(), &tt.req, e.cashier)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	assert.Equal(t, 5, e.stock(t, p.ID))
	assert.Equal(t, int64(0), e.count(t, &model.StockTransaction{}))
}

func TestApplyTransactionUnknownProduct(t *testing.T) {
	e := newEnv(t)
	missing := uuid.New()

	_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       missing,
		TransactionType: model.TxPurchase,
		Quantity:        1,
	}, e.cashier)

	require.ErrorIs(t, err, apperr.ErrNotFound)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, missing.String(), appErr.Entity)
}

func TestApplyTransactionRejectsNegativeStock(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "NEG-1", 2, "1.00")

	_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       p.ID,
		TransactionType: model.TxAdjustment,
		Quantity:        3,
	}, e.cashier)

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 2, e.stock(t, p.ID))
	assert.Equal(t, int64(0), e.count(t, &model.StockTransaction{}), "ledger row must roll back with the stock write")
	assert.Equal(t, 0, e.events.count("stock_update"))
}

func TestApplyTransactionPreviousStockOverride(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "PREV-1", 8, "1.00")

	stale := 5
	_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       p.ID,
		TransactionType: model.TxPurchase,
		Quantity:        1,
		PreviousStock:   &stale,
	}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 8, e.stock(t, p.ID))

	current := 8
	entry, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       p.ID,
		TransactionType: model.TxPurchase,
		Quantity:        1,
		PreviousStock:   &current,
	}, e.cashier)
	require.NoError(t, err)
	assert.Equal(t, 9, entry.NewStock)
}

func TestApplyTransactionLowStockEvent(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "LOW-1", 12, "1.00")

	_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
		ProductID:       p.ID,
		TransactionType: model.TxSale,
		Quantity:        2,
	}, e.cashier)
	require.NoError(t, err)

	assert.Equal(t, 1, e.events.count("low_stock"), "stock 10 is at the default threshold")
}

func TestLedgerStaysConsistentOverRandomSequence(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "INV-1", 0, "1.00")
	rng := rand.New(rand.NewSource(42))

	expected := 0
	for i := 0; i < 60; i++ {
		txType := model.TransactionTypes[rng.Intn(len(model.TransactionTypes))]
		qty := rng.Intn(7) + 1

		_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
			ProductID:       p.ID,
			TransactionType: txType,
			Quantity:        qty,
		}, e.cashier)

		if expected+txType.Delta(qty) < 0 {
			require.ErrorIs(t, err, apperr.ErrConflict)
			continue
		}
		require.NoError(t, err)
		expected += txType.Delta(qty)
	}

	rows := e.ledgerOf(t, p.ID)
	require.NotEmpty(t, rows)

	running := 0
	for _, row := range rows {
		assert.Equal(t, running, row.PreviousStock)
		assert.Equal(t, row.PreviousStock+row.TransactionType.Delta(row.Quantity), row.NewStock)
		assert.GreaterOrEqual(t, row.NewStock, 0)
		running = row.NewStock
	}
	assert.Equal(t, expected, running)
	assert.Equal(t, rows[len(rows)-1].NewStock, e.stock(t, p.ID))
}

func TestRestock(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "RST-1", 3, "1.00")

	refreshed, err := e.ledger.Restock(context.Background(), &RestockRequest{
		ProductID: p.ID,
		Quantity:  12,
		UnitPrice: decimal.RequireFromString("0.75"),
		Notes:     "Supplier delivery",
	}, e.cashier)
	require.NoError(t, err)
	assert.Equal(t, 15, refreshed.CurrentStock)

	rows := e.ledgerOf(t, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TxPurchase, rows[0].TransactionType)
	assert.Equal(t, "Supplier delivery", rows[0].Notes)
	assert.True(t, decimal.RequireFromString("9.00").Equal(rows[0].TotalAmount.Decimal))

	_, err = e.ledger.Restock(context.Background(), &RestockRequest{ProductID: p.ID, Quantity: 0}, e.cashier)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetTransactionsNewestFirst(t *testing.T) {
	e := newEnv(t)
	a := testutil.CreateProduct(t, e.db, "LST-A", 0, "1.00")
	b := testutil.CreateProduct(t, e.db, "LST-B", 0, "1.00")

	for _, id := range []uuid.UUID{a.ID, b.ID, a.ID} {
		_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
			ProductID: id, TransactionType: model.TxPurchase, Quantity: 1,
		}, e.cashier)
		require.NoError(t, err)
	}

	all, err := e.ledger.GetTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := e.ledger.GetTransactions(context.Background(), &a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, 2, onlyA[0].NewStock)
	assert.Equal(t, 1, onlyA[1].NewStock)
	assert.Equal(t, "LST-A", onlyA[0].Product.SKU)
	assert.Equal(t, "Test cashier@example.com", onlyA[0].CreatorName())

	found, err := e.ledger.GetTransactionByID(context.Background(), onlyA[1].ID)
	require.NoError(t, err)
	assert.Equal(t, onlyA[1].ID, found.ID)

	_, err = e.ledger.GetTransactionByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLedgerSequenceBreaksTimestampTies(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateProduct(t, e.db, "TIE-1", 0, "1.00")

	for i := 0; i < 3; i++ {
		_, err := e.ledger.ApplyTransaction(context.Background(), &ApplyTransactionRequest{
			ProductID: p.ID, TransactionType: model.TxPurchase, Quantity: 1,
		}, e.cashier)
		require.NoError(t, err)
	}

	// Same instant for every row, as repeated cart lines can get
	same := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, e.db.Model(&model.StockTransaction{}).Where("product_id = ?", p.ID).Update("created_at", same).Error)

	rows, err := e.ledger.GetTransactions(context.Background(), &p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, want := range []int64{3, 2, 1} {
		assert.Equal(t, want, rows[i].Sequence)
		assert.Equal(t, int(want), rows[i].NewStock)
	}
}
