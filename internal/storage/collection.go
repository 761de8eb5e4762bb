package storage

import (
	"context"
	"encoding/json"
	"errors"

	"posledger/internal/logger"
)

// Collection is a typed, whole-value JSON view over a single key.
type Collection[T any] struct {
	store Store
	key   string
	onErr WriteErrorHandler
}

// NewCollection binds key in store. A nil onErr logs write failures.
func NewCollection[T any](store Store, key string, onErr WriteErrorHandler) *Collection[T] {
	if onErr == nil {
		onErr = LogWriteError
	}
	return &Collection[T]{store: store, key: key, onErr: onErr}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored value. A missing key, a read failure or malformed
// JSON all yield the zero value; only the last two are logged.
func (c *Collection[T]) Load(ctx context.Context) T {
	var v T
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.Warn(ctx).Err(err).Str("key", c.key).Msg("failed to read collection, starting empty")
		}
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn(ctx).Err(err).Str("key", c.key).Msg("malformed collection JSON, starting empty")
		var zero T
		return zero
	}
	return v
}

// Save persists v. Failures go to the write-error handler; the return value
// only tells whether the write reached the store.
func (c *Collection[T]) Save(ctx context.Context, v T) bool {
	raw, err := json.Marshal(v)
	if err == nil {
		err = c.store.Set(ctx, c.key, raw)
	}
	if err != nil {
		c.onErr(ctx, c.key, err)
		return false
	}
	return true
}

// Delete removes the key. Failures are reported like Save failures.
func (c *Collection[T]) Delete(ctx context.Context) bool {
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.onErr(ctx, c.key, err)
		return false
	}
	return true
}
