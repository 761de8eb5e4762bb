package handler

import (
	"net/http"
	"testing"

	"posledger/internal/model"
	"posledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShop(t *testing.T, router http.Handler) {
	t.Helper()
	decode[model.Item](t, do(t, router, http.MethodPost, "/api/items", map[string]any{
		"name": "Widget", "retailPrice": "100", "stockQuantity": 5,
	}), http.StatusCreated)
	decode[service.CustomerView](t, do(t, router, http.MethodPost, "/api/customers", map[string]any{"name": "Alice"}), http.StatusCreated)
}

func TestDocumentHandler_InvoiceFlow(t *testing.T) {
	router := newTestRouter(t)
	seedShop(t, router)

	draft := decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/draft", nil), http.StatusOK)
	assert.Equal(t, -1, draft.Index)
	assert.Equal(t, "INV-0001", draft.Document.DocumentNumber)

	decode[draftResponse](t, do(t, router, http.MethodPut, "/api/invoices/draft", map[string]any{"customerId": 1}), http.StatusOK)
	decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/draft/rows", map[string]any{"quantity": 2}), http.StatusOK)
	draft = decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/draft/rows/0/resolve", map[string]any{"query": "widget"}), http.StatusOK)
	require.Len(t, draft.Document.Items, 1)
	assert.True(t, decimal.NewFromInt(200).Equal(draft.Document.Total))

	res := decode[service.SaveResult](t, do(t, router, http.MethodPost, "/api/invoices/draft/save", nil), http.StatusOK)
	assert.True(t, res.Created)
	assert.Equal(t, "Alice", res.Document.CustomerName)

	bal := decode[service.BalanceInfo](t, do(t, router, http.MethodGet, "/api/customers/1/balance", nil), http.StatusOK)
	assert.True(t, decimal.NewFromInt(200).Equal(bal.CurrentBalance))

	rec := decode[model.InventoryRecord](t, do(t, router, http.MethodGet, "/api/inventory/items/Widget", nil), http.StatusOK)
	assert.Equal(t, 3, rec.CurrentStock)

	list := decode[paged[model.Document]](t, do(t, router, http.MethodGet, "/api/invoices", nil), http.StatusOK)
	assert.Len(t, list.Items, 1)

	doc := decode[model.Document](t, do(t, router, http.MethodGet, "/api/invoices/by-number/INV-0001", nil), http.StatusOK)
	assert.Equal(t, "INV-0001", doc.DocumentNumber)
	errorOf(t, do(t, router, http.MethodGet, "/api/returns/by-number/INV-0001", nil), http.StatusNotFound)
}

func TestDocumentHandler_NavigationAndValidation(t *testing.T) {
	router := newTestRouter(t)
	seedShop(t, router)

	msg := errorOf(t, do(t, router, http.MethodPost, "/api/invoices/draft/save", nil), http.StatusBadRequest)
	assert.Equal(t, "Add at least one item with a quantity", msg)

	decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/draft/rows", map[string]any{"itemName": "Widget", "quantity": 1, "unitPrice": "100"}), http.StatusOK)
	decode[service.SaveResult](t, do(t, router, http.MethodPost, "/api/invoices/draft/save", nil), http.StatusOK)
	decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/draft", nil), http.StatusOK)

	next := decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/navigate/next", nil), http.StatusOK)
	assert.Equal(t, 0, next.Index)
	assert.Equal(t, "INV-0001", next.Document.DocumentNumber)

	prev := decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/navigate/previous", nil), http.StatusOK)
	assert.Equal(t, -1, prev.Index)
	assert.Equal(t, "INV-0002", prev.Document.DocumentNumber)

	opened := decode[draftResponse](t, do(t, router, http.MethodPost, "/api/invoices/open/0", nil), http.StatusOK)
	assert.Equal(t, 0, opened.Index)
	errorOf(t, do(t, router, http.MethodPost, "/api/invoices/open/7", nil), http.StatusNotFound)
	errorOf(t, do(t, router, http.MethodPost, "/api/invoices/open/-2", nil), http.StatusBadRequest)

	errorOf(t, do(t, router, http.MethodPut, "/api/invoices/draft", map[string]any{"paymentMethod": "barter"}), http.StatusBadRequest)
	errorOf(t, do(t, router, http.MethodPost, "/api/invoices/draft/currency", map[string]any{"currency": "EUR"}), http.StatusBadRequest)
	errorOf(t, do(t, router, http.MethodDelete, "/api/invoices/draft/rows/9", nil), http.StatusNotFound)
}

func TestDocumentHandler_TransferRequiresStores(t *testing.T) {
	router := newTestRouter(t)
	seedShop(t, router)

	decode[draftResponse](t, do(t, router, http.MethodPost, "/api/transfers/draft/rows", map[string]any{"itemName": "Widget", "quantity": 1}), http.StatusOK)
	msg := errorOf(t, do(t, router, http.MethodPost, "/api/transfers/draft/save", nil), http.StatusBadRequest)
	assert.Equal(t, "Select both the source and the destination store", msg)

	decode[draftResponse](t, do(t, router, http.MethodPut, "/api/transfers/draft", map[string]any{"fromStore": "Main", "toStore": "Branch"}), http.StatusOK)
	res := decode[service.SaveResult](t, do(t, router, http.MethodPost, "/api/transfers/draft/save", nil), http.StatusOK)
	assert.Equal(t, "TRF-0001", res.Document.DocumentNumber)
}
