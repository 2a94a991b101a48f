package model

import "time"

// RateSource indicates how an exchange rate entered the rate table.
type RateSource string

// Rate sources. A manual entry always shadows an auto-fetched one for the
// same (pair, date) key.
const (
	RateSourceAuto   RateSource = "auto"
	RateSourceManual RateSource = "manual"
)

// ExchangeRate is the conversion rate for a currency pair on a specific date.
// At most one rate per (pair, date, source) is effective at any time.
type ExchangeRate struct {
	ID           string     `json:"id"`
	CurrencyPair string     `json:"currencyPair"`
	Date         time.Time  `json:"date"`
	Rate         float64    `json:"rate"`
	Source       RateSource `json:"source"`
	IsManual     bool       `json:"isManual"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// RateScope identifies which slice of a date's transactions a rate override
// applies to. It is a closed set; every switch over it must handle all three
// values so a newly added currency class cannot be silently ignored.
type RateScope string

// Rate override scopes.
const (
	ScopeUSD       RateScope = "USD"
	ScopeEUR       RateScope = "EUR"
	ScopeBulkOther RateScope = "OTHER"
)

// Valid reports whether the scope is one of the known values.
func (s RateScope) Valid() bool {
	switch s {
	case ScopeUSD, ScopeEUR, ScopeBulkOther:
		return true
	}
	return false
}

// CurrencyPair returns the rate-table pair key an override under this scope
// is stored against. Bulk-other overrides share a single synthetic pair.
func (s RateScope) CurrencyPair() string {
	switch s {
	case ScopeUSD:
		return "USD/" + ReportingCurrency
	case ScopeEUR:
		return "EUR/" + ReportingCurrency
	case ScopeBulkOther:
		return "OTHER/" + ReportingCurrency
	}
	return ""
}

// PairForCurrency returns the rate-table pair key used to convert the given
// (normalized) currency into the reporting currency. Currencies outside the
// designated majors resolve through the shared bulk-other pair.
func PairForCurrency(currency string) string {
	switch NormalizeCurrency(currency) {
	case "USD":
		return ScopeUSD.CurrencyPair()
	case "EUR":
		return ScopeEUR.CurrencyPair()
	default:
		return ScopeBulkOther.CurrencyPair()
	}
}
