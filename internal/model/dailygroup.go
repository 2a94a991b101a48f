package model

import "time"

// AggregationWarning records a transaction that could not be converted into
// the reporting currency. Unconvertible transactions contribute zero to the
// converted total instead of failing the whole date; warnings surface them
// for operator attention.
type AggregationWarning struct {
	TransactionID string `json:"transactionId"`
	Currency      string `json:"currency"`
	Reason        string `json:"reason"`
}

// DailyGroup is the aggregation unit for one calendar date. It is derived
// data: recomputed fresh from the current transaction set and rate table on
// every change, never partially updated.
type DailyGroup struct {
	Date time.Time `json:"date"`

	// NativeTotal is the signed sum of reporting-currency transactions.
	NativeTotal float64 `json:"nativeTotal"`

	// ConvertedTotal is the signed sum of all non-reporting-currency
	// transactions converted into the reporting currency.
	ConvertedTotal float64 `json:"convertedTotal"`

	// AuthoritativeNetBalance is the server-side daily balance when the
	// reconciliation fetch returned one for this date. Nil means the fetch
	// did not cover this date; zero is a real balance.
	AuthoritativeNetBalance *float64 `json:"authoritativeNetBalance,omitempty"`

	// PerCurrency maps currency code to its signed converted sum.
	PerCurrency map[string]float64 `json:"perCurrency"`

	// AverageRates maps currency code to the mean exchange rate actually
	// applied to that currency's transactions on this date.
	AverageRates map[string]float64 `json:"averageRates"`

	Warnings []AggregationWarning `json:"warnings,omitempty"`
}

// LocalTotal is the locally computed daily total: native reporting-currency
// sum plus all converted sums.
func (g DailyGroup) LocalTotal() float64 {
	return g.NativeTotal + g.ConvertedTotal
}

// DisplayTotal is the value surfaced to the user: the authoritative net
// balance when present, otherwise the local computation as a fallback.
func (g DailyGroup) DisplayTotal() float64 {
	if g.AuthoritativeNetBalance != nil {
		return *g.AuthoritativeNetBalance
	}
	return g.LocalTotal()
}
