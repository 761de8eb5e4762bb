package repository

import (
	"context"

	"posledger/internal/storage"

	"github.com/shopspring/decimal"
)

// SettingsRepository holds scalar settings. Only the exchange rate is
// persisted today.
type SettingsRepository interface {
	ExchangeRate(ctx context.Context) decimal.Decimal
	SetExchangeRate(ctx context.Context, rate decimal.Decimal)
}

type settingsRepository struct {
	rate *storage.Collection[decimal.Decimal]
}

func NewSettingsRepository(store storage.Store, onErr storage.WriteErrorHandler) SettingsRepository {
	return &settingsRepository{rate: storage.NewCollection[decimal.Decimal](store, storage.KeyExchangeRate, onErr)}
}

// ExchangeRate returns the stored IQD-per-USD rate, or zero when unset or
// unreadable.
func (r *settingsRepository) ExchangeRate(ctx context.Context) decimal.Decimal {
	return r.rate.Load(ctx)
}

func (r *settingsRepository) SetExchangeRate(ctx context.Context, rate decimal.Decimal) {
	r.rate.Save(ctx, rate)
}
