package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType enum constants
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
)

// Item is a catalog entry. Barcode uniqueness is checked by the caller at
// create/edit time, not by the repository.
type Item struct {
	ID            int64           `json:"id"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	ItemType      string          `json:"itemType"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	RetailPrice   decimal.Decimal `json:"retailPrice"`
	StockQuantity int             `json:"stockQuantity"` // always 0 for services
	MinStockLevel int             `json:"minStockLevel"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsService reports whether the item is a non-stocked service.
func (i Item) IsService() bool {
	return i.ItemType == ItemTypeService
}
