package model

import "time"

// Category classifies a transaction's direction of cash flow.
type Category string

// Transaction categories. The stored amount is always non-negative; the
// category determines the sign applied at aggregation time.
const (
	CategoryDeposit    Category = "DEP"
	CategoryWithdrawal Category = "WD"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	return c == CategoryDeposit || c == CategoryWithdrawal
}

// Sign returns the multiplier applied to the transaction amount when it is
// folded into daily or period totals: +1 for deposits, -1 for withdrawals.
func (c Category) Sign() float64 {
	if c == CategoryWithdrawal {
		return -1
	}
	return 1
}

// Channel is the payment channel a transaction moved through.
type Channel string

// Payment channels.
const (
	ChannelBank       Channel = "bank"
	ChannelCreditCard Channel = "credit_card"
	ChannelTether     Channel = "tether"
)

// Valid reports whether the channel is one of the known values.
func (ch Channel) Valid() bool {
	switch ch {
	case ChannelBank, ChannelCreditCard, ChannelTether:
		return true
	}
	return false
}

// Transaction represents one financial movement captured by the
// transaction-entry workflow. Amount is stored in the source currency and is
// never negated in place; sign is applied only during aggregation.
type Transaction struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Category        Category  `json:"category"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	PSP             string    `json:"psp,omitempty"`
	Channel         Channel   `json:"channel,omitempty"`
	ExchangeRate    float64   `json:"exchangeRate,omitempty"`
	ConvertedAmount float64   `json:"convertedAmount,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// ReportingCurrency is the currency every other currency is converted into
// for aggregation and reporting.
const ReportingCurrency = "TRY"

// NormalizeCurrency maps legacy currency aliases onto their ISO codes.
// Older captures used "TL" for Turkish lira.
func NormalizeCurrency(code string) string {
	if code == "TL" {
		return ReportingCurrency
	}
	return code
}

// SignedAmount returns the transaction amount with the category sign applied,
// in the source currency.
func (t Transaction) SignedAmount() float64 {
	return t.Category.Sign() * t.Amount
}
