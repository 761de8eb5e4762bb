package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateItemRequest struct {
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name" binding:"required"`
	ItemType      string          `json:"itemType" binding:"omitempty,oneof=product service"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	RetailPrice   decimal.Decimal `json:"retailPrice"`
	StockQuantity int             `json:"stockQuantity" binding:"gte=0"`
	MinStockLevel int             `json:"minStockLevel" binding:"gte=0"`
}

// UpdateItemRequest merges every non-nil field into the stored item.
type UpdateItemRequest struct {
	Barcode       *string          `json:"barcode"`
	Name          *string          `json:"name" binding:"omitempty,min=1"`
	ItemType      *string          `json:"itemType" binding:"omitempty,oneof=product service"`
	Category      *string          `json:"category"`
	Description   *string          `json:"description"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	RetailPrice   *decimal.Decimal `json:"retailPrice"`
	StockQuantity *int             `json:"stockQuantity" binding:"omitempty,gte=0"`
	MinStockLevel *int             `json:"minStockLevel" binding:"omitempty,gte=0"`
}

// --- Interface ---

type CatalogService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, search string) []model.Item
	ResolveItem(ctx context.Context, query string) (*model.Item, error)
}

type catalogService struct {
	items     repository.ItemRepository
	inventory InventoryService
	activity  ActivityService
	txManager storage.TransactionManager
}

func NewCatalogService(
	items repository.ItemRepository,
	inventory InventoryService,
	activity ActivityService,
	txManager storage.TransactionManager,
) CatalogService {
	return &catalogService{
		items:     items,
		inventory: inventory,
		activity:  activity,
		txManager: txManager,
	}
}

// --- Implementation ---

func (s *catalogService) CreateItem(ctx context.Context, req CreateItemRequest) (*model.Item, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := validatePrices(req.PurchasePrice, req.RetailPrice); err != nil {
		return nil, err
	}

	item := model.Item{
		Barcode:       strings.TrimSpace(req.Barcode),
		Name:          strings.TrimSpace(req.Name),
		ItemType:      req.ItemType,
		Category:      req.Category,
		Description:   req.Description,
		PurchasePrice: req.PurchasePrice,
		RetailPrice:   req.RetailPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	}
	if item.ItemType == "" {
		item.ItemType = model.ItemTypeProduct
	}
	if item.IsService() {
		item.StockQuantity = 0
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureBarcodeFree(txCtx, item.Barcode, 0); err != nil {
			return err
		}
		if err := s.items.Create(txCtx, &item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		s.inventory.SyncFromCatalog(txCtx)

		if !item.IsService() && item.StockQuantity > 0 {
			s.activity.Append(txCtx, model.ActivityRecord{
				Type:     model.ActivityInitial,
				ItemName: item.Name,
				Quantity: item.StockQuantity,
				Price:    item.PurchasePrice,
				Total:    model.Round2(item.PurchasePrice.Mul(decimalFromInt(item.StockQuantity))),
				Details:  model.ActivityDetails{Note: "Initial stock"},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*model.Item, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var purchase, retail decimal.Decimal
	if req.PurchasePrice != nil {
		purchase = *req.PurchasePrice
	}
	if req.RetailPrice != nil {
		retail = *req.RetailPrice
	}
	if err := validatePrices(purchase, retail); err != nil {
		return nil, err
	}

	var updated *model.Item
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Barcode != nil {
			if err := s.ensureBarcodeFree(txCtx, strings.TrimSpace(*req.Barcode), id); err != nil {
				return err
			}
		}

		item, err := s.items.Update(txCtx, id, func(it *model.Item) {
			if req.Barcode != nil && strings.TrimSpace(*req.Barcode) != "" {
				it.Barcode = strings.TrimSpace(*req.Barcode)
			}
			if req.Name != nil {
				it.Name = strings.TrimSpace(*req.Name)
			}
			if req.ItemType != nil {
				it.ItemType = *req.ItemType
			}
			if req.Category != nil {
				it.Category = *req.Category
			}
			if req.Description != nil {
				it.Description = *req.Description
			}
			if req.PurchasePrice != nil {
				it.PurchasePrice = *req.PurchasePrice
			}
			if req.RetailPrice != nil {
				it.RetailPrice = *req.RetailPrice
			}
			if req.StockQuantity != nil {
				it.StockQuantity = *req.StockQuantity
			}
			if req.MinStockLevel != nil {
				it.MinStockLevel = *req.MinStockLevel
			}
			if it.IsService() {
				it.StockQuantity = 0
			}
		})
		if err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		updated = item
		s.inventory.SyncFromCatalog(txCtx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteItem(ctx context.Context, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.items.Delete(txCtx, id); err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		s.inventory.SyncFromCatalog(txCtx)
		return nil
	})
}

func (s *catalogService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return item, nil
}

func (s *catalogService) ListItems(ctx context.Context, search string) []model.Item {
	return s.items.Search(ctx, search)
}

// ResolveItem finds the catalog entry a document row refers to.
func (s *catalogService) ResolveItem(ctx context.Context, query string) (*model.Item, error) {
	item, err := s.items.FindByNameOrBarcode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", query, err)
	}
	return item, nil
}

// ensureBarcodeFree rejects a barcode that belongs to another item. An empty
// barcode is always free; one is generated on create.
func (s *catalogService) ensureBarcodeFree(ctx context.Context, barcode string, selfID int64) error {
	if barcode == "" {
		return nil
	}
	existing, err := s.items.FindByBarcode(ctx, barcode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return newValidationError("barcode", "Barcode is already used by "+existing.Name)
	}
	return nil
}

func validatePrices(purchase, retail decimal.Decimal) error {
	if purchase.IsNegative() {
		return newValidationError("purchasePrice", "Purchase price cannot be negative")
	}
	if retail.IsNegative() {
		return newValidationError("retailPrice", "Retail price cannot be negative")
	}
	return nil
}
