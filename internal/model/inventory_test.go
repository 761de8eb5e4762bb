package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStockStatusFor(t *testing.T) {
	assert.Equal(t, StockOutOfStock, StockStatusFor(0, 5))
	assert.Equal(t, StockOutOfStock, StockStatusFor(-1, 5))
	assert.Equal(t, StockLowStock, StockStatusFor(5, 5))
	assert.Equal(t, StockInStock, StockStatusFor(6, 5))
}

func TestInventoryRecord_ApplyDeltaFloorsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := InventoryRecord{CurrentStock: 3, MinStock: 1}

	assert.Zero(t, r.ApplyDelta(-2, now))
	assert.Equal(t, 1, r.CurrentStock)
	assert.Equal(t, StockLowStock, r.Status)
	assert.Equal(t, now, r.LastUpdated)

	assert.Equal(t, 4, r.ApplyDelta(-5, now))
	assert.Equal(t, 0, r.CurrentStock)
	assert.Equal(t, StockOutOfStock, r.Status)
}
