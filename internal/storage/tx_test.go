package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTransactionManager_NestedJoins(t *testing.T) {
	tm := NewLocalTransactionManager()
	ctx := context.Background()
	assert.False(t, InTx(ctx))

	calls := 0
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		assert.True(t, InTx(txCtx))
		calls++
		return tm.RunInTx(txCtx, func(inner context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLocalTransactionManager_ReturnsCallbackError(t *testing.T) {
	tm := NewLocalTransactionManager()
	boom := errors.New("boom")

	err := tm.RunInTx(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestLocalTransactionManager_Serialises(t *testing.T) {
	tm := NewLocalTransactionManager()
	var wg sync.WaitGroup
	active, maxActive := 0, 0
	var mu sync.Mutex

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tm.RunInTx(context.Background(), func(context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}
