package model

// Granularity selects the period size for breakdown reporting.
type Granularity string

// Period granularities.
const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
	GranularityAnnual  Granularity = "annual"
)

// Valid reports whether the granularity is one of the known values.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityMonthly, GranularityAnnual:
		return true
	}
	return false
}

// FinancialPeriodData is a snapshot of aggregated totals for one period.
// Every numeric field is a pointer so "not yet loaded" (nil) stays distinct
// from "loaded, value is zero" (pointer to 0). A period with genuinely zero
// activity must never be overwritten by a stale non-zero fallback.
type FinancialPeriodData struct {
	Period string `json:"period"`

	TotalDepositsTL     *float64 `json:"totalDepositsTl,omitempty"`
	TotalWithdrawalsTL  *float64 `json:"totalWithdrawalsTl,omitempty"`
	TotalDepositsUSD    *float64 `json:"totalDepositsUsd,omitempty"`
	TotalWithdrawalsUSD *float64 `json:"totalWithdrawalsUsd,omitempty"`

	BankTL       *float64 `json:"bankTl,omitempty"`
	CreditCardTL *float64 `json:"creditCardTl,omitempty"`
	TetherUSD    *float64 `json:"tetherUsd,omitempty"`

	TransactionCount *int `json:"transactionCount,omitempty"`

	// NetCashTL is deposits minus withdrawals in the reporting currency.
	// It is derived whenever both operands are present, never taken from a
	// fallback that lacks the same derivation.
	NetCashTL  *float64 `json:"netCashTl,omitempty"`
	NetCashUSD *float64 `json:"netCashUsd,omitempty"`
}

// Float64Ptr returns a pointer to v. Convenience for building period
// snapshots and test fixtures.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
