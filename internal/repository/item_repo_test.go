package repository

import (
	"context"
	"testing"

	"posledger/internal/model"
	"posledger/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemRepo(t *testing.T) (ItemRepository, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewItemRepository(NewShopDataStore(context.Background(), store, nil)), store
}

func TestItemRepository_CreateAssignsIDAndBarcode(t *testing.T) {
	ctx := context.Background()
	repo, _ := newItemRepo(t)

	a := &model.Item{Name: "Widget"}
	b := &model.Item{Name: "Gadget", Barcode: "123"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, "ITM-000001", a.Barcode)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, "123", b.Barcode)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestItemRepository_FindByNameOrBarcodePrefersBarcode(t *testing.T) {
	ctx := context.Background()
	repo, _ := newItemRepo(t)

	require.NoError(t, repo.Create(ctx, &model.Item{Name: "Widget", Barcode: "W1"}))
	require.NoError(t, repo.Create(ctx, &model.Item{Name: "w1", Barcode: "X9"}))

	it, err := repo.FindByNameOrBarcode(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", it.Name)

	it, err = repo.FindByNameOrBarcode(ctx, "  WIDGET ")
	require.NoError(t, err)
	assert.Equal(t, "W1", it.Barcode)

	_, err = repo.FindByNameOrBarcode(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByNameOrBarcode(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, store := newItemRepo(t)

	item := &model.Item{Name: "Widget"}
	require.NoError(t, repo.Create(ctx, item))

	updated, err := repo.Update(ctx, item.ID, func(it *model.Item) {
		it.Name = "Widget Pro"
		it.ID = 99
	})
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "Widget Pro", updated.Name)

	_, err = repo.Update(ctx, 42, func(*model.Item) {})
	assert.ErrorIs(t, err, ErrNotFound)

	// state survives a fresh load from the same store
	reloaded := NewItemRepository(NewShopDataStore(ctx, store, nil))
	got, err := reloaded.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", got.Name)

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), ErrNotFound)
}

func TestItemRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo, _ := newItemRepo(t)
	require.NoError(t, repo.Create(ctx, &model.Item{Name: "Blue Widget"}))
	require.NoError(t, repo.Create(ctx, &model.Item{Name: "Bolt", Description: "steel widget fastener"}))
	require.NoError(t, repo.Create(ctx, &model.Item{Name: "Nut"}))

	assert.Len(t, repo.Search(ctx, "widget"), 2)
	assert.Len(t, repo.Search(ctx, ""), 3)
	assert.Empty(t, repo.Search(ctx, "gear"))
}
