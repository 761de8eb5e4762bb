package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record id, name or index is absent.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Reloader is implemented by every repository that caches a persisted
// collection in memory. Reload discards the cache and reads the store again.
type Reloader interface {
	Reload(ctx context.Context)
}
