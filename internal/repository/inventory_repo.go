package repository

import (
	"context"
	"strings"
	"sync"

	"posledger/internal/model"
	"posledger/internal/storage"
)

// InventoryMutator edits the record slice in place (or returns a new one)
// and reports whether anything changed.
type InventoryMutator func(records []model.InventoryRecord) ([]model.InventoryRecord, bool, error)

type InventoryRepository interface {
	List(ctx context.Context) []model.InventoryRecord
	FindByName(ctx context.Context, name string) (model.InventoryRecord, error)
	Mutate(ctx context.Context, fn InventoryMutator) (bool, error)
	Reload(ctx context.Context)
}

type inventoryRepository struct {
	mu    sync.RWMutex
	coll  *storage.Collection[[]model.InventoryRecord]
	cache []model.InventoryRecord
}

func NewInventoryRepository(ctx context.Context, store storage.Store, onErr storage.WriteErrorHandler) InventoryRepository {
	r := &inventoryRepository{coll: storage.NewCollection[[]model.InventoryRecord](store, storage.KeyInventory, onErr)}
	r.Reload(ctx)
	return r
}

func (r *inventoryRepository) Reload(ctx context.Context) {
	records := r.coll.Load(ctx)
	if records == nil {
		records = []model.InventoryRecord{}
	}

	r.mu.Lock()
	r.cache = records
	r.mu.Unlock()
}

func (r *inventoryRepository) List(ctx context.Context) []model.InventoryRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.InventoryRecord{}, r.cache...)
}

func (r *inventoryRepository) FindByName(ctx context.Context, name string) (model.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.cache {
		if strings.EqualFold(rec.Name, name) {
			return rec, nil
		}
	}
	return model.InventoryRecord{}, ErrNotFound
}

// Mutate hands a copy of the records to fn and persists the result only
// when fn reports a change.
func (r *inventoryRepository) Mutate(ctx context.Context, fn InventoryMutator) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := append([]model.InventoryRecord{}, r.cache...)
	next, changed, err := fn(work)
	if err != nil || !changed {
		return false, err
	}
	r.cache = next
	r.coll.Save(ctx, r.cache)
	return true, nil
}
