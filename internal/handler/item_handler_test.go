package handler

import (
	"net/http"
	"testing"

	"posledger/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestItemHandler_CRUD(t *testing.T) {
	router := newTestRouter(t)

	created := decode[model.Item](t, do(t, router, http.MethodPost, "/api/items", map[string]any{
		"name": "Widget", "retailPrice": "100", "purchasePrice": "60", "stockQuantity": 5,
	}), http.StatusCreated)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "ITM-000001", created.Barcode)

	got := decode[model.Item](t, do(t, router, http.MethodGet, "/api/items/1", nil), http.StatusOK)
	assert.Equal(t, "Widget", got.Name)

	updated := decode[model.Item](t, do(t, router, http.MethodPut, "/api/items/1", map[string]any{"name": "Widget XL"}), http.StatusOK)
	assert.Equal(t, "Widget XL", updated.Name)
	assert.Equal(t, 5, updated.StockQuantity)

	list := decode[paged[model.Item]](t, do(t, router, http.MethodGet, "/api/items?search=xl", nil), http.StatusOK)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)

	decode[any](t, do(t, router, http.MethodDelete, "/api/items/1", nil), http.StatusOK)
	errorOf(t, do(t, router, http.MethodGet, "/api/items/1", nil), http.StatusNotFound)
}

func TestItemHandler_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	errorOf(t, do(t, router, http.MethodPost, "/api/items", map[string]any{"retailPrice": "1"}), http.StatusBadRequest)
	errorOf(t, do(t, router, http.MethodPost, "/api/items", "{oops"), http.StatusBadRequest)
	errorOf(t, do(t, router, http.MethodGet, "/api/items/abc", nil), http.StatusBadRequest)

	decode[model.Item](t, do(t, router, http.MethodPost, "/api/items", map[string]any{"name": "A", "barcode": "1"}), http.StatusCreated)
	msg := errorOf(t, do(t, router, http.MethodPost, "/api/items", map[string]any{"name": "B", "barcode": "1"}), http.StatusBadRequest)
	assert.Equal(t, "Barcode is already used by A", msg)
}
