package service

import (
	"context"
	"testing"

	"posledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveDocs saves n documents of kind with one widget each.
func saveDocs(t *testing.T, s *shop, kind model.DocumentKind, n int) *Editor {
	t.Helper()
	ctx := context.Background()
	e := NewEditor(s.documents, kind)
	for i := 0; i < n; i++ {
		_, err := e.NewDraft(ctx)
		require.NoError(t, err)
		if kind == model.KindTransfer {
			_, err = e.SetHeader(ctx, HeaderPatch{FromStore: ptr("Main"), ToStore: ptr("Branch")})
			require.NoError(t, err)
		}
		_, err = e.AddRow(ctx, widgets(1))
		require.NoError(t, err)
		_, err = e.Save(ctx)
		require.NoError(t, err)
	}
	return e
}

func TestStepIndex(t *testing.T) {
	tests := []struct {
		kind    model.DocumentKind
		current int
		step    int
		n       int
		want    int
	}{
		{model.KindInvoice, -1, 1, 3, 0},
		{model.KindInvoice, 2, 1, 3, -1},
		{model.KindInvoice, -1, -1, 3, 2},
		{model.KindInvoice, 0, -1, 3, -1},
		{model.KindReturn, 1, 1, 3, 2},
		{model.KindTransfer, 2, 1, 3, 0},
		{model.KindTransfer, 0, -1, 3, 2},
		{model.KindTransfer, -1, 1, 3, 0},
		{model.KindTransfer, -1, -1, 3, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stepIndex(tt.kind, tt.current, tt.step, tt.n), "%s from %d step %d", tt.kind, tt.current, tt.step)
	}
}

func TestEditor_InvoiceNavigationCyclesThroughNewDraft(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 50)
	e := saveDocs(t, s, model.KindInvoice, 2)

	draft, err := e.NewDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0003", draft.DocumentNumber)
	assert.Equal(t, -1, e.CurrentIndex())

	d, err := e.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", d.DocumentNumber)

	d, err = e.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", d.DocumentNumber)

	// back to the parked draft; its number is not consumed again
	d, err = e.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, e.CurrentIndex())
	assert.Equal(t, "INV-0003", d.DocumentNumber)

	d, err = e.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CurrentIndex())
	assert.Equal(t, "INV-0002", d.DocumentNumber)
}

func TestEditor_TransferNavigationSkipsNewDraft(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 50)
	e := saveDocs(t, s, model.KindTransfer, 2)
	assert.Equal(t, 1, e.CurrentIndex())

	d, err := e.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, e.CurrentIndex())
	assert.Equal(t, "TRF-0001", d.DocumentNumber)

	_, err = e.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CurrentIndex())

	_, err = e.Open(ctx, -1)
	require.NoError(t, err)
	_, err = e.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CurrentIndex())
}

func TestEditor_NavigationWithNothingSaved(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindReturn)

	d, err := e.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, e.CurrentIndex())
	assert.Equal(t, "RET-0001", d.DocumentNumber)

	d, err = e.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RET-0001", d.DocumentNumber)
}

func TestEditor_NavigationBusy(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)

	e.navigating.Store(true)
	_, err := e.Next(ctx)
	assert.ErrorIs(t, err, ErrNavigationBusy)
	_, err = e.Open(ctx, 0)
	assert.ErrorIs(t, err, ErrNavigationBusy)

	e.navigating.Store(false)
	_, err = e.Next(ctx)
	assert.NoError(t, err)
}

func TestEditor_OpenOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 50)
	e := saveDocs(t, s, model.KindInvoice, 1)

	_, err := e.Open(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, e.CurrentIndex())
}

func TestEditor_NewDraftReusesUntouchedDraft(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)

	a, err := e.NewDraft(ctx)
	require.NoError(t, err)
	b, err := e.NewDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.DocumentNumber, b.DocumentNumber)
	assert.True(t, dec("1400").Equal(b.ExchangeRate))

	_, err = e.AddRow(ctx, widgets(1))
	require.NoError(t, err)
	c, err := e.NewDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", c.DocumentNumber)
}

func TestEditor_RowEditing(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)

	d, err := e.AddRow(ctx, widgets(2))
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(d.Total))

	d, err = e.UpdateRow(ctx, 0, RowPatch{UnitPrice: ptr(dec("12.5"))})
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(d.Items[0].LineTotal))

	_, err = e.UpdateRow(ctx, 4, RowPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.AddRow(ctx, RowInput{ItemName: "x", UnitPrice: dec("-1")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.AddRow(ctx, RowInput{ItemName: "x", Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)

	d, err = e.RemoveRow(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, d.Items)
	assert.True(t, d.Total.IsZero())
}

func TestEditor_RowLimit(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)

	for i := 0; i < model.MaxDocumentRows; i++ {
		_, err := e.AddRow(ctx, RowInput{ItemName: "x", Quantity: 1})
		require.NoError(t, err)
	}
	_, err := e.AddRow(ctx, RowInput{ItemName: "x", Quantity: 1})
	assert.ErrorIs(t, err, ErrRowLimit)
}

func TestEditor_SwitchCurrencyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)

	_, err := e.AddRow(ctx, RowInput{ItemName: "Widget", Quantity: 1, UnitPrice: dec("19.99")})
	require.NoError(t, err)
	_, err = e.SetHeader(ctx, HeaderPatch{DiscountValue: ptr(dec("5"))})
	require.NoError(t, err)

	d, err := e.SwitchCurrency(ctx, model.CurrencyIQD)
	require.NoError(t, err)
	assert.True(t, dec("27986").Equal(d.Items[0].UnitPrice))
	assert.True(t, dec("7000").Equal(d.DiscountValue))

	d, err = e.SwitchCurrency(ctx, model.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, dec("19.99").Equal(d.Items[0].UnitPrice))
	assert.True(t, dec("5").Equal(d.DiscountValue))

	_, err = e.SwitchCurrency(ctx, "EUR")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditor_DraftRateFollowsSettingUntilPriced(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 5)
	e := NewEditor(s.documents, model.KindInvoice)

	d, err := e.NewDraft(ctx)
	require.NoError(t, err)
	require.True(t, dec("1400").Equal(d.ExchangeRate))

	require.NoError(t, s.settings.SetExchangeRate(ctx, dec("1500")))
	d, err = e.SwitchCurrency(ctx, model.CurrencyIQD)
	require.NoError(t, err)
	assert.True(t, dec("1500").Equal(d.ExchangeRate))

	_, err = e.AddRow(ctx, RowInput{Quantity: 1})
	require.NoError(t, err)
	d, err = e.ResolveRow(ctx, 0, "widget")
	require.NoError(t, err)
	assert.True(t, dec("150000").Equal(d.Items[0].UnitPrice))

	require.NoError(t, s.settings.SetExchangeRate(ctx, dec("1600")))
	d, err = e.SwitchCurrency(ctx, model.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, dec("1500").Equal(d.ExchangeRate), "a priced draft keeps its rate")
	assert.True(t, dec("100").Equal(d.Items[0].UnitPrice))
}

func TestEditor_ResolveRowUnknownItem(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	e := NewEditor(s.documents, model.KindInvoice)
	_, err := e.AddRow(ctx, RowInput{})
	require.NoError(t, err)

	_, err = e.ResolveRow(ctx, 0, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditor_ReloadResetsSession(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.addProduct(t, "Widget", "100", 50)
	e := saveDocs(t, s, model.KindInvoice, 1)

	e.Reload(ctx)
	assert.Equal(t, -1, e.CurrentIndex())
	d, err := e.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", d.DocumentNumber)
}
