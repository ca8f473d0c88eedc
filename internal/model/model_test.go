package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = ParseDateRange("2026-10-01", "2026-10-16")
	require.NoError(t, err)
	start, end := r.Bounds()
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), end)

	for _, bad := range [][2]string{{"2026-10-01", ""}, {"01/10/2026", "2026-10-16"}, {"2026-10-16", "2026-10-01"}} {
		_, err := ParseDateRange(bad[0], bad[1])
		assert.Error(t, err, "%v", bad)
	}
}

func TestTransactionTypeDelta(t *testing.T) {
	assert.Equal(t, -4, TxSale.Delta(4))
	assert.Equal(t, -4, TxAdjustment.Delta(4))
	assert.Equal(t, 4, TxPurchase.Delta(4))
	assert.Equal(t, 4, TxReturn.Delta(4))

	assert.True(t, TxReturn.Valid())
	assert.False(t, TransactionType("transfer").Valid())
}

func TestProductStockStatus(t *testing.T) {
	p := Product{CurrentStock: 10, LowStockThreshold: 10}
	assert.True(t, p.IsLowStock())
	assert.Equal(t, "Low Stock", p.StockStatus())

	p.CurrentStock = 11
	assert.False(t, p.IsLowStock())
	assert.Equal(t, "Adequate Stock", p.ToResponse().StockStatus)
}
