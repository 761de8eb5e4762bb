package service

import (
	"context"
	"encoding/json"
	"testing"

	"posledger/internal/model"
	"posledger/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_ExportClearImport(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 5)
	alice := s.addCustomer(t, "Alice")
	_, err := invoiceFor(t, s, &alice, model.PaymentOnAccount, widgets(2)).Save(ctx)
	require.NoError(t, err)

	editor := NewEditor(s.documents, model.KindInvoice)
	_, err = editor.Open(ctx, 0)
	require.NoError(t, err)

	backup := s.backup(editor)
	bundle, err := backup.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, BundleVersion, bundle.Version)
	assert.Contains(t, bundle.Data, storage.KeyShopData)
	assert.Contains(t, bundle.Data, storage.KeyInvoices)
	assert.Contains(t, bundle.Data, storage.KeyInventory)

	require.NoError(t, backup.ClearAll(ctx))
	assert.Empty(t, s.catalog.ListItems(ctx, ""))
	assert.Empty(t, s.inventory.List(ctx))
	assert.Zero(t, s.documents.Count(ctx, model.KindInvoice))
	assert.Equal(t, -1, editor.CurrentIndex())
	keys, err := s.store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// round-trip through JSON the way a downloaded file would
	raw, err := json.Marshal(bundle)
	require.NoError(t, err)
	var restored Bundle
	require.NoError(t, json.Unmarshal(raw, &restored))
	restored.Data["someone_elses_key"] = json.RawMessage(`{}`)

	res, err := backup.Import(ctx, restored)
	require.NoError(t, err)
	assert.Contains(t, res.Imported, storage.KeyShopData)
	assert.Equal(t, []string{"someone_elses_key"}, res.Ignored)

	assert.Equal(t, 3, s.stock(t, "Widget"))
	assert.True(t, dec("200").Equal(s.balance(t, alice)))
	assert.Equal(t, 1, s.documents.Count(ctx, model.KindInvoice))

	d, err := editor.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", d.DocumentNumber)
}

func TestBackup_ImportRejectsBadBundles(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 5)
	backup := s.backup()

	_, err := backup.Import(ctx, Bundle{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = backup.Import(ctx, Bundle{Data: map[string]json.RawMessage{
		storage.KeyShopData: json.RawMessage(`{"items":`),
	}})
	assert.ErrorIs(t, err, ErrValidation)

	// nothing was replaced
	assert.Len(t, s.catalog.ListItems(ctx, ""), 1)
}

func TestBackup_ImportLeavesMissingKeysAlone(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 5)

	res, err := s.backup().Import(ctx, Bundle{Data: map[string]json.RawMessage{
		storage.KeyExchangeRate: json.RawMessage(`"1500"`),
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{storage.KeyExchangeRate}, res.Imported)
	assert.True(t, dec("1500").Equal(s.settings.ExchangeRate(ctx)))
	assert.Len(t, s.catalog.ListItems(ctx, ""), 1)
}
