package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, KeyInvoices)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, KeyInvoices, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, KeyActivity, []byte(`[1]`)))

	got, err := s.Get(ctx, KeyInvoices)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyActivity, KeyInvoices}, keys)

	require.NoError(t, s.Delete(ctx, KeyInvoices))
	_, err = s.Get(ctx, KeyInvoices)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	raw := []byte(`"a"`)
	require.NoError(t, s.Set(ctx, "k", raw))
	raw[1] = 'b'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(got))
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey(KeyShopData))
	assert.True(t, IsKnownKey(KeyExchangeRate))
	assert.False(t, IsKnownKey("session_user"))
}
