package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"posledger/internal/logger"

	"github.com/bsm/redislock"
)

const (
	lockTTL     = 30 * time.Second
	lockBackoff = 50 * time.Millisecond
	lockRetries = 40
)

type redisTxManager struct {
	mu      sync.Mutex
	locker  *redislock.Client
	lockKey string
}

// NewRedisTransactionManager serialises mutations in-process and, best
// effort, across processes sharing the same Redis prefix. When the lock
// cannot be obtained the callback still runs; last writer wins.
func NewRedisTransactionManager(locker *redislock.Client, prefix string) TransactionManager {
	return &redisTxManager{locker: locker, lockKey: prefix + "lock"}
}

func (t *redisTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, err := t.locker.Obtain(ctx, t.lockKey, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockBackoff), lockRetries),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained):
		logger.Warn(ctx).Str("lock", t.lockKey).Msg("could not obtain redis lock; proceeding without it")
		lock = nil
	case err != nil:
		logger.Warn(ctx).Err(err).Str("lock", t.lockKey).Msg("error obtaining redis lock; proceeding without it")
		lock = nil
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logger.Warn(ctx).Err(err).Str("lock", t.lockKey).Msg("failed to release redis lock")
			}
		}()
	}

	return fn(context.WithValue(ctx, txKey, localTx{}))
}
