package service

import (
	"posledger/internal/model"

	"github.com/shopspring/decimal"
)

// Direction selects which way Convert applies the IQD-per-USD rate.
type Direction int

const (
	ToSecondary Direction = iota // USD -> IQD
	ToPrimary                    // IQD -> USD
)

// DefaultExchangeRate is used whenever no valid rate is configured.
var DefaultExchangeRate = decimal.NewFromInt(1400)

// Convert applies rate to amount and rounds to cents.
func Convert(amount, rate decimal.Decimal, dir Direction) decimal.Decimal {
	rate = NormalizeRate(rate)
	if dir == ToPrimary {
		return model.Round2(amount.Div(rate))
	}
	return model.Round2(amount.Mul(rate))
}

// NormalizeRate replaces a non-positive rate with DefaultExchangeRate.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return DefaultExchangeRate
	}
	return rate
}

// ConvertBetween converts amount from one currency to another. Same-currency
// conversions return the amount unchanged.
func ConvertBetween(amount decimal.Decimal, from, to string, rate decimal.Decimal) decimal.Decimal {
	switch {
	case from == to:
		return amount
	case from == model.CurrencyUSD && to == model.CurrencyIQD:
		return Convert(amount, rate, ToSecondary)
	case from == model.CurrencyIQD && to == model.CurrencyUSD:
		return Convert(amount, rate, ToPrimary)
	default:
		return amount
	}
}

// toPrimary converts an amount in currency to USD.
func toPrimary(amount decimal.Decimal, currency string, rate decimal.Decimal) decimal.Decimal {
	return ConvertBetween(amount, currency, model.CurrencyUSD, rate)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

var hundred = decimal.NewFromInt(100)
