package storage

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "storage_tx"

type localTx struct{}

// TransactionManager serialises compound mutations. Calls made with a
// context that is already inside RunInTx join the running transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type localTxManager struct {
	mu sync.Mutex
}

// NewLocalTransactionManager serialises mutations in-process. Used with the
// memory and Redis stores, which have no multi-key transactions.
func NewLocalTransactionManager() TransactionManager {
	return &localTxManager{}
}

func (t *localTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(context.WithValue(ctx, txKey, localTx{}))
}

type gormTxManager struct {
	mu    sync.Mutex
	db    *gorm.DB
	onErr WriteErrorHandler
}

// NewGormTransactionManager additionally wraps each callback in a SQL
// transaction so that every key written by it commits together. A failed
// commit is reported to onErr; the callback's own error is returned as is.
func NewGormTransactionManager(db *gorm.DB, onErr WriteErrorHandler) TransactionManager {
	if onErr == nil {
		onErr = LogWriteError
	}
	return &gormTxManager{db: db, onErr: onErr}
}

func (t *gormTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var fnErr error
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(context.WithValue(ctx, txKey, tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		t.onErr(ctx, "transaction", err)
	}
	return nil
}

// InTx reports whether ctx belongs to a running RunInTx callback.
func InTx(ctx context.Context) bool {
	return ctx.Value(txKey) != nil
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
