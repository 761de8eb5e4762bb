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

func TestCustomerHandler_LedgerFlow(t *testing.T) {
	router := newTestRouter(t)

	c := decode[service.CustomerView](t, do(t, router, http.MethodPost, "/api/customers", map[string]any{"name": "Alice"}), http.StatusCreated)
	require.Equal(t, int64(1), c.ID)

	b := decode[service.BalanceInfo](t, do(t, router, http.MethodPost, "/api/customers/1/debts", map[string]any{"amount": "120"}), http.StatusOK)
	assert.True(t, decimal.NewFromInt(120).Equal(b.CurrentBalance))

	msg := errorOf(t, do(t, router, http.MethodDelete, "/api/customers/1", nil), http.StatusConflict)
	assert.Contains(t, msg, "outstanding balance")

	msg = errorOf(t, do(t, router, http.MethodPost, "/api/customers/1/settle", map[string]any{"amount": "200"}), http.StatusBadRequest)
	assert.Equal(t, "Payment amount cannot exceed current balance", msg)

	p := decode[service.PaymentResult](t, do(t, router, http.MethodPost, "/api/customers/1/payments", map[string]any{"amount": "150"}), http.StatusOK)
	assert.True(t, decimal.NewFromInt(30).Equal(p.CreditAmount))
	assert.True(t, decimal.NewFromInt(-30).Equal(p.NewBalance))

	txns := decode[[]model.LedgerTransaction](t, do(t, router, http.MethodGet, "/api/customers/1/statement", nil), http.StatusOK)
	assert.Len(t, txns, 2)

	view := decode[service.CustomerView](t, do(t, router, http.MethodGet, "/api/customers/1", nil), http.StatusOK)
	assert.True(t, decimal.NewFromInt(-30).Equal(view.CurrentBalance))

	errorOf(t, do(t, router, http.MethodDelete, "/api/customers/1", nil), http.StatusConflict)
	b = decode[service.BalanceInfo](t, do(t, router, http.MethodPost, "/api/customers/1/debts", map[string]any{"amount": "30"}), http.StatusOK)
	require.True(t, b.CurrentBalance.IsZero())

	decode[any](t, do(t, router, http.MethodDelete, "/api/customers/1", nil), http.StatusOK)
	errorOf(t, do(t, router, http.MethodGet, "/api/customers/1/balance", nil), http.StatusNotFound)
}

func TestCustomerHandler_ListAndUpdate(t *testing.T) {
	router := newTestRouter(t)
	decode[service.CustomerView](t, do(t, router, http.MethodPost, "/api/customers", map[string]any{"name": "Alice"}), http.StatusCreated)
	decode[service.CustomerView](t, do(t, router, http.MethodPost, "/api/customers", map[string]any{"name": "Bob"}), http.StatusCreated)

	updated := decode[service.CustomerView](t, do(t, router, http.MethodPut, "/api/customers/2", map[string]any{"location": "Basra"}), http.StatusOK)
	assert.Equal(t, "Bob", updated.Name)

	list := decode[paged[service.CustomerView]](t, do(t, router, http.MethodGet, "/api/customers?search=basra", nil), http.StatusOK)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Bob", list.Items[0].Name)

	list = decode[paged[service.CustomerView]](t, do(t, router, http.MethodGet, "/api/customers?limit=1&page=2", nil), http.StatusOK)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(2), list.Pagination.Total)

	errorOf(t, do(t, router, http.MethodPost, "/api/customers/1/debts", map[string]any{"amount": "-1"}), http.StatusBadRequest)
}
