package service

import (
	"context"

	"posledger/internal/repository"

	"github.com/shopspring/decimal"
)

type SettingsService interface {
	ExchangeRate(ctx context.Context) decimal.Decimal
	SetExchangeRate(ctx context.Context, rate decimal.Decimal) error
}

type settingsService struct {
	repo        repository.SettingsRepository
	defaultRate decimal.Decimal
}

func NewSettingsService(repo repository.SettingsRepository, defaultRate decimal.Decimal) SettingsService {
	if !defaultRate.IsPositive() {
		defaultRate = DefaultExchangeRate
	}
	return &settingsService{repo: repo, defaultRate: defaultRate}
}

// ExchangeRate returns the persisted IQD-per-USD rate, or the default when
// it is unset or not positive.
func (s *settingsService) ExchangeRate(ctx context.Context) decimal.Decimal {
	rate := s.repo.ExchangeRate(ctx)
	if !rate.IsPositive() {
		return s.defaultRate
	}
	return rate
}

func (s *settingsService) SetExchangeRate(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return newValidationError("rate", "Exchange rate must be greater than zero")
	}
	s.repo.SetExchangeRate(ctx, rate)
	return nil
}
