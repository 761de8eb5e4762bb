package model

import "time"

// KVEntry is one namespaced key of the persisted state when the SQL backend
// is used. The value is the whole JSON-serialised collection.
type KVEntry struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }
