package model

import "github.com/shopspring/decimal"

// Currencies a document can be priced in. USD is the primary currency that
// the catalog, the ledger and the activity log are kept in.
const (
	CurrencyUSD = "USD"
	CurrencyIQD = "IQD"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary amount to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsValidCurrency reports whether c is one of the supported currencies.
func IsValidCurrency(c string) bool {
	return c == CurrencyUSD || c == CurrencyIQD
}
