package storage

import (
	"context"
	"errors"
	"time"

	"posledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore keeps every key as one row of the kv_entries table. Writes
// join the transaction started by the gorm TransactionManager, if any.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry
	if err := GetDB(ctx, s.db).First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *gormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}
	return GetDB(ctx, s.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return GetDB(ctx, s.db).Where("key = ?", key).Delete(&model.KVEntry{}).Error
}

func (s *gormStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := GetDB(ctx, s.db).Model(&model.KVEntry{}).Order("key asc").Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
