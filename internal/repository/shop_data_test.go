package repository

import (
	"context"
	"encoding/json"
	"testing"

	"posledger/internal/model"
	"posledger/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopDataStore_ReconcilesLegacyBalanceOnLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyShopData, []byte(`{
		"customers": {"1": {"id": 1, "name": "Alice", "totalDebt": "100", "totalPaid": "0", "currentBalance": "60"}}
	}`)))

	shop := NewShopDataStore(ctx, store, nil)
	customers := NewCustomerRepository(shop)

	c, err := customers.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(c.CurrentBalance()))
	assert.True(t, decimal.NewFromInt(40).Equal(c.TotalPaid))
	assert.Nil(t, c.LegacyBalance)

	raw, err := store.Get(ctx, storage.KeyShopData)
	require.NoError(t, err)
	var persisted model.ShopData
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Nil(t, persisted.Customers[1].LegacyBalance)
	assert.Equal(t, int64(2), persisted.Settings.NextCustomerID)
}

func TestShopDataStore_ReloadSeesReplacedData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	shop := NewShopDataStore(ctx, store, nil)
	items := NewItemRepository(shop)

	require.NoError(t, items.Create(ctx, &model.Item{Name: "Widget"}))
	require.NoError(t, store.Delete(ctx, storage.KeyShopData))

	shop.Reload(ctx)
	assert.Empty(t, items.List(ctx))
}
