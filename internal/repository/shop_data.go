package repository

import (
	"context"
	"sync"

	"posledger/internal/logger"
	"posledger/internal/model"
	"posledger/internal/storage"
)

// ShopDataStore caches the shop_data object shared by the item and customer
// repositories. Every write persists the whole object.
type ShopDataStore struct {
	mu   sync.RWMutex
	coll *storage.Collection[model.ShopData]
	data model.ShopData
}

func NewShopDataStore(ctx context.Context, store storage.Store, onErr storage.WriteErrorHandler) *ShopDataStore {
	s := &ShopDataStore{coll: storage.NewCollection[model.ShopData](store, storage.KeyShopData, onErr)}
	s.load(ctx)
	return s
}

// Reload re-reads shop_data, reconciling legacy customer balances.
func (s *ShopDataStore) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
}

func (s *ShopDataStore) load(ctx context.Context) {
	data := s.coll.Load(ctx)
	data.Normalize()

	reconciled := 0
	for _, c := range data.Customers {
		if c.Reconcile() {
			reconciled++
		}
	}
	s.data = data

	if reconciled > 0 {
		logger.Info(ctx).Int("customers", reconciled).Msg("reconciled stored customer balances")
		s.coll.Save(ctx, s.data)
	}
}

func (s *ShopDataStore) read(fn func(d *model.ShopData)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// write runs fn under the write lock and persists when it succeeds. fn must
// validate before it mutates.
func (s *ShopDataStore) write(ctx context.Context, fn func(d *model.ShopData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.data); err != nil {
		return err
	}
	s.coll.Save(ctx, s.data)
	return nil
}
