package repository

import (
	"context"
	"sync"

	"posledger/internal/model"
	"posledger/internal/storage"
)

type ActivityRepository interface {
	Append(ctx context.Context, records ...model.ActivityRecord)
	List(ctx context.Context) []model.ActivityRecord
	Reload(ctx context.Context)
}

type activityRepository struct {
	mu    sync.RWMutex
	coll  *storage.Collection[[]model.ActivityRecord]
	cache []model.ActivityRecord
}

func NewActivityRepository(ctx context.Context, store storage.Store, onErr storage.WriteErrorHandler) ActivityRepository {
	r := &activityRepository{coll: storage.NewCollection[[]model.ActivityRecord](store, storage.KeyActivity, onErr)}
	r.Reload(ctx)
	return r
}

func (r *activityRepository) Reload(ctx context.Context) {
	records := r.coll.Load(ctx)
	if records == nil {
		records = []model.ActivityRecord{}
	}

	r.mu.Lock()
	r.cache = records
	r.mu.Unlock()
}

func (r *activityRepository) Append(ctx context.Context, records ...model.ActivityRecord) {
	if len(records) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = append(r.cache, records...)
	r.coll.Save(ctx, r.cache)
}

func (r *activityRepository) List(ctx context.Context) []model.ActivityRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ActivityRecord{}, r.cache...)
}
