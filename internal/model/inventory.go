package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus enum constants
const (
	StockInStock    = "in-stock"
	StockLowStock   = "low-stock"
	StockOutOfStock = "out-of-stock"
)

// DefaultMaxStock seeds InventoryRecord.MaxStock for new records.
const DefaultMaxStock = 100

// InventoryRecord is derived 1:1 from a product catalog item.
type InventoryRecord struct {
	ID           int64           `json:"id"`
	ItemID       int64           `json:"itemId"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"currentStock"`
	MinStock     int             `json:"minStock"`
	MaxStock     int             `json:"maxStock"`
	Status       string          `json:"status"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// StockStatusFor classifies a stock level against its minimum.
func StockStatusFor(current, minStock int) string {
	switch {
	case current <= 0:
		return StockOutOfStock
	case current <= minStock:
		return StockLowStock
	default:
		return StockInStock
	}
}

// ApplyDelta adds delta to the stock, flooring at zero, and refreshes the
// status. It returns the part of a negative delta that could not be taken.
func (r *InventoryRecord) ApplyDelta(delta int, now time.Time) (shortfall int) {
	next := r.CurrentStock + delta
	if next < 0 {
		shortfall = -next
		next = 0
	}
	r.CurrentStock = next
	r.Status = StockStatusFor(r.CurrentStock, r.MinStock)
	r.LastUpdated = now
	return shortfall
}
