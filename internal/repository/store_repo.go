package repository

import (
	"context"
	"strings"
	"sync"

	"posledger/internal/model"
	"posledger/internal/storage"
)

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	Delete(ctx context.Context, id int64) error
	FindByName(ctx context.Context, name string) (model.Store, error)
	List(ctx context.Context) []model.Store
	Reload(ctx context.Context)
}

type storeRepository struct {
	mu    sync.RWMutex
	coll  *storage.Collection[[]model.Store]
	cache []model.Store
}

func NewStoreRepository(ctx context.Context, store storage.Store, onErr storage.WriteErrorHandler) StoreRepository {
	r := &storeRepository{coll: storage.NewCollection[[]model.Store](store, storage.KeyStores, onErr)}
	r.Reload(ctx)
	return r
}

func (r *storeRepository) Reload(ctx context.Context) {
	stores := r.coll.Load(ctx)
	if stores == nil {
		stores = []model.Store{}
	}

	r.mu.Lock()
	r.cache = stores
	r.mu.Unlock()
}

// Create assigns max(id)+1 and rejects a name already in use.
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var maxID int64
	for _, s := range r.cache {
		if strings.EqualFold(s.Name, store.Name) {
			return ErrDuplicate
		}
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	store.ID = maxID + 1
	r.cache = append(r.cache, *store)
	r.coll.Save(ctx, r.cache)
	return nil
}

func (r *storeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.cache {
		if s.ID == id {
			r.cache = append(r.cache[:i:i], r.cache[i+1:]...)
			r.coll.Save(ctx, r.cache)
			return nil
		}
	}
	return ErrNotFound
}

func (r *storeRepository) FindByName(ctx context.Context, name string) (model.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.cache {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return model.Store{}, ErrNotFound
}

func (r *storeRepository) List(ctx context.Context) []model.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Store{}, r.cache...)
}
