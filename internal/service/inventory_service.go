package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"posledger/internal/logger"
	"posledger/internal/metrics"
	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"
)

// AdjustStockRequest is a manual stock correction.
type AdjustStockRequest struct {
	ItemName string `json:"itemName" binding:"required"`
	Delta    int    `json:"delta" binding:"required"`
	Note     string `json:"note"`
}

// StockChange is the payload of stock.changed notifications.
type StockChange struct {
	ItemName     string `json:"itemName"`
	Delta        int    `json:"delta"`
	CurrentStock int    `json:"currentStock"`
	Status       string `json:"status"`
	Shortfall    int    `json:"shortfall,omitempty"`
}

type InventoryService interface {
	SyncFromCatalog(ctx context.Context) bool
	AdjustStock(ctx context.Context, itemName string, delta int) (model.InventoryRecord, int, error)
	ManualAdjust(ctx context.Context, req AdjustStockRequest) (model.InventoryRecord, error)
	Get(ctx context.Context, itemName string) (model.InventoryRecord, error)
	List(ctx context.Context) []model.InventoryRecord
	LowStock(ctx context.Context) []model.InventoryRecord
}

type inventoryService struct {
	repo      repository.InventoryRepository
	items     repository.ItemRepository
	activity  ActivityService
	txManager storage.TransactionManager
	notifier  Notifier
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewInventoryService(
	repo repository.InventoryRepository,
	items repository.ItemRepository,
	activity ActivityService,
	txManager storage.TransactionManager,
	notifier Notifier,
	m *metrics.Metrics,
) InventoryService {
	return &inventoryService{
		repo:      repo,
		items:     items,
		activity:  activity,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		metrics:   m,
		now:       time.Now,
	}
}

// SyncFromCatalog creates records for new products, refreshes descriptive
// fields that drifted and prunes records whose product is gone. It reports
// whether anything changed; a second call in a row is a no-op.
func (s *inventoryService) SyncFromCatalog(ctx context.Context) bool {
	products := make(map[int64]model.Item)
	var order []int64
	for _, it := range s.items.List(ctx) {
		if it.IsService() {
			continue
		}
		products[it.ID] = it
		order = append(order, it.ID)
	}

	changed, _ := s.repo.Mutate(ctx, func(records []model.InventoryRecord) ([]model.InventoryRecord, bool, error) {
		now := s.now()
		changed := false
		seen := make(map[int64]int, len(records))

		for i := range records {
			rec := &records[i]
			if rec.ItemID == 0 {
				for _, id := range order {
					if strings.EqualFold(products[id].Name, rec.Name) {
						rec.ItemID = id
						changed = true
						break
					}
				}
			}
			if _, dup := seen[rec.ItemID]; !dup {
				seen[rec.ItemID] = i
			}
		}

		for _, id := range order {
			p := products[id]
			if i, ok := seen[id]; ok {
				rec := &records[i]
				if rec.Name != p.Name || rec.Category != p.Category || rec.SKU != p.Barcode ||
					!rec.Cost.Equal(p.PurchasePrice) || !rec.Price.Equal(p.RetailPrice) {
					rec.Name = p.Name
					rec.Category = p.Category
					rec.SKU = p.Barcode
					rec.Cost = p.PurchasePrice
					rec.Price = p.RetailPrice
					rec.LastUpdated = now
					changed = true
				}
				continue
			}
			records = append(records, model.InventoryRecord{
				ID:           p.ID,
				ItemID:       p.ID,
				SKU:          p.Barcode,
				Name:         p.Name,
				Category:     p.Category,
				Cost:         p.PurchasePrice,
				Price:        p.RetailPrice,
				CurrentStock: p.StockQuantity,
				MinStock:     p.MinStockLevel,
				MaxStock:     model.DefaultMaxStock,
				Status:       model.StockStatusFor(p.StockQuantity, p.MinStockLevel),
				LastUpdated:  now,
			})
			seen[id] = len(records) - 1
			changed = true
		}

		kept := records[:0]
		for i, rec := range records {
			if _, ok := products[rec.ItemID]; ok && seen[rec.ItemID] == i {
				kept = append(kept, rec)
				continue
			}
			changed = true
		}
		return kept, changed, nil
	})

	if changed {
		logger.Debug(ctx).Msg("inventory synchronised from catalog")
	}
	return changed
}

// AdjustStock applies delta to the named record, flooring at zero. The
// second return value is the part of a negative delta that was not in stock.
func (s *inventoryService) AdjustStock(ctx context.Context, itemName string, delta int) (model.InventoryRecord, int, error) {
	var out model.InventoryRecord
	var shortfall int

	_, err := s.repo.Mutate(ctx, func(records []model.InventoryRecord) ([]model.InventoryRecord, bool, error) {
		for i := range records {
			if strings.EqualFold(records[i].Name, itemName) {
				shortfall = records[i].ApplyDelta(delta, s.now())
				out = records[i]
				return records, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
	if err != nil {
		return model.InventoryRecord{}, 0, fmt.Errorf("inventory record %q: %w", itemName, err)
	}

	s.metrics.StockShortfall(shortfall)
	s.notifier.Notify(EventStockChanged, StockChange{
		ItemName:     out.Name,
		Delta:        delta,
		CurrentStock: out.CurrentStock,
		Status:       out.Status,
		Shortfall:    shortfall,
	})
	return out, shortfall, nil
}

func (s *inventoryService) ManualAdjust(ctx context.Context, req AdjustStockRequest) (model.InventoryRecord, error) {
	if err := validateStruct(req); err != nil {
		return model.InventoryRecord{}, err
	}

	var out model.InventoryRecord
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rec, _, err := s.AdjustStock(txCtx, req.ItemName, req.Delta)
		if err != nil {
			return err
		}
		out = rec
		s.activity.Append(txCtx, model.ActivityRecord{
			Type:     model.ActivityAdjustment,
			ItemName: rec.Name,
			Quantity: req.Delta,
			Price:    rec.Cost,
			Total:    model.Round2(rec.Cost.Mul(decimalFromInt(req.Delta))),
			Details:  model.ActivityDetails{Note: req.Note},
		})
		return nil
	})
	return out, err
}

func (s *inventoryService) Get(ctx context.Context, itemName string) (model.InventoryRecord, error) {
	return s.repo.FindByName(ctx, itemName)
}

func (s *inventoryService) List(ctx context.Context) []model.InventoryRecord {
	return s.repo.List(ctx)
}

// LowStock returns the low-stock and out-of-stock records.
func (s *inventoryService) LowStock(ctx context.Context) []model.InventoryRecord {
	out := make([]model.InventoryRecord, 0)
	for _, rec := range s.repo.List(ctx) {
		if model.StockStatusFor(rec.CurrentStock, rec.MinStock) != model.StockInStock {
			out = append(out, rec)
		}
	}
	return out
}
