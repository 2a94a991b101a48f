package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	// Simple creation with defaults
//	tx := testutil.NewTransaction().Build(t, db)
//
//	// Customized transaction
//	tx := testutil.NewTransaction().
//	    WithDate("2024-06-01").
//	    WithCategory(model.CategoryWithdrawal).
//	    WithAmount(50).
//	    WithCurrency("TRY").
//	    Build(t, db)
type TransactionBuilder struct {
	ID              string
	Date            string
	Category        model.Category
	Amount          float64
	Currency        string
	PSP             string
	Channel         model.Channel
	ExchangeRate    float64
	ConvertedAmount float64
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		ID:       MakeID(),
		Date:     "2024-06-01",
		Category: model.CategoryDeposit,
		Amount:   100,
		Currency: "USD",
		PSP:      "TestPSP",
		Channel:  model.ChannelBank,
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithDate sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// WithCategory sets the transaction category.
func (b *TransactionBuilder) WithCategory(category model.Category) *TransactionBuilder {
	b.Category = category
	return b
}

// WithAmount sets the source-currency amount.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.Amount = amount
	return b
}

// WithCurrency sets the source currency.
func (b *TransactionBuilder) WithCurrency(currency string) *TransactionBuilder {
	b.Currency = currency
	return b
}

// WithPSP sets the payment service provider.
func (b *TransactionBuilder) WithPSP(psp string) *TransactionBuilder {
	b.PSP = psp
	return b
}

// WithChannel sets the payment channel.
func (b *TransactionBuilder) WithChannel(channel model.Channel) *TransactionBuilder {
	b.Channel = channel
	return b
}

// WithExchangeRate sets the capture-time exchange rate.
func (b *TransactionBuilder) WithExchangeRate(rate float64) *TransactionBuilder {
	b.ExchangeRate = rate
	return b
}

// WithConvertedAmount sets the precomputed converted amount.
func (b *TransactionBuilder) WithConvertedAmount(amount float64) *TransactionBuilder {
	b.ConvertedAmount = amount
	return b
}

// Build inserts the transaction and returns the created model.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		t.Fatalf("Invalid test transaction date: %v", err)
	}

	query := `
		INSERT INTO psp_transaction (id, date, category, amount, currency, psp, channel, exchange_rate, converted_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, b.ID, b.Date, string(b.Category), b.Amount,
		model.NormalizeCurrency(b.Currency), b.PSP, string(b.Channel), b.ExchangeRate, b.ConvertedAmount)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:              b.ID,
		Date:            date.UTC(),
		Category:        b.Category,
		Amount:          b.Amount,
		Currency:        model.NormalizeCurrency(b.Currency),
		PSP:             b.PSP,
		Channel:         b.Channel,
		ExchangeRate:    b.ExchangeRate,
		ConvertedAmount: b.ConvertedAmount,
	}
}

// RateBuilder provides a fluent interface for creating stored exchange rates.
//
// Example usage:
//
//	rate := testutil.NewRate().
//	    WithPair("USD/TRY").
//	    WithDate("2024-06-01").
//	    WithRate(32.5).
//	    Manual().
//	    Build(t, db)
type RateBuilder struct {
	ID     string
	Pair   string
	Date   string
	Rate   float64
	Source model.RateSource
}

// NewRate creates a RateBuilder with sensible defaults.
func NewRate() *RateBuilder {
	return &RateBuilder{
		ID:     MakeID(),
		Pair:   "USD/TRY",
		Date:   "2024-06-01",
		Rate:   30,
		Source: model.RateSourceAuto,
	}
}

// WithPair sets the currency pair.
func (b *RateBuilder) WithPair(pair string) *RateBuilder {
	b.Pair = pair
	return b
}

// WithDate sets the rate date (YYYY-MM-DD).
func (b *RateBuilder) WithDate(date string) *RateBuilder {
	b.Date = date
	return b
}

// WithRate sets the rate value.
func (b *RateBuilder) WithRate(rate float64) *RateBuilder {
	b.Rate = rate
	return b
}

// Manual marks the rate as a manual override.
func (b *RateBuilder) Manual() *RateBuilder {
	b.Source = model.RateSourceManual
	return b
}

// Build inserts the rate and returns the created model.
func (b *RateBuilder) Build(t *testing.T, db *sql.DB) model.ExchangeRate {
	t.Helper()

	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		t.Fatalf("Invalid test rate date: %v", err)
	}

	query := `
		INSERT INTO exchange_rate (id, currency_pair, date, rate, source)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, b.ID, b.Pair, b.Date, b.Rate, string(b.Source))
	if err != nil {
		t.Fatalf("Failed to create test rate: %v", err)
	}

	return model.ExchangeRate{
		ID:           b.ID,
		CurrencyPair: b.Pair,
		Date:         date.UTC(),
		Rate:         b.Rate,
		Source:       b.Source,
	}
}

// AllocationBuilder provides a fluent interface for creating stored PSP
// allocations.
type AllocationBuilder struct {
	ID     string
	PSP    string
	Date   string
	Amount float64
}

// NewAllocation creates an AllocationBuilder with sensible defaults.
func NewAllocation() *AllocationBuilder {
	return &AllocationBuilder{
		ID:     MakeID(),
		PSP:    "TestPSP",
		Date:   "2024-06-01",
		Amount: 0,
	}
}

// WithPSP sets the payment service provider.
func (b *AllocationBuilder) WithPSP(psp string) *AllocationBuilder {
	b.PSP = psp
	return b
}

// WithDate sets the allocation date (YYYY-MM-DD).
func (b *AllocationBuilder) WithDate(date string) *AllocationBuilder {
	b.Date = date
	return b
}

// WithAmount sets the allocated amount.
func (b *AllocationBuilder) WithAmount(amount float64) *AllocationBuilder {
	b.Amount = amount
	return b
}

// Build inserts the allocation.
func (b *AllocationBuilder) Build(t *testing.T, db *sql.DB) {
	t.Helper()

	query := `
		INSERT INTO psp_allocation (id, psp, date, allocated_amount)
		VALUES (?, ?, ?, ?)
	`

	if _, err := db.Exec(query, b.ID, b.PSP, b.Date, b.Amount); err != nil {
		t.Fatalf("Failed to create test allocation: %v", err)
	}
}

// SnapshotBuilder provides a fluent interface for creating period snapshots.
// Nil fields stay NULL in the database, mirroring a partially loaded
// snapshot.
type SnapshotBuilder struct {
	ID          string
	Granularity model.Granularity
	Period      string
	Data        model.FinancialPeriodData
}

// NewSnapshot creates a SnapshotBuilder with sensible defaults.
func NewSnapshot() *SnapshotBuilder {
	return &SnapshotBuilder{
		ID:          MakeID(),
		Granularity: model.GranularityDaily,
		Period:      "2024-06-01",
	}
}

// WithGranularity sets the snapshot granularity.
func (b *SnapshotBuilder) WithGranularity(g model.Granularity) *SnapshotBuilder {
	b.Granularity = g
	return b
}

// WithPeriod sets the period key.
func (b *SnapshotBuilder) WithPeriod(period string) *SnapshotBuilder {
	b.Period = period
	return b
}

// WithData sets the snapshot fields; nil pointers stay NULL.
func (b *SnapshotBuilder) WithData(data model.FinancialPeriodData) *SnapshotBuilder {
	b.Data = data
	return b
}

// Build inserts the snapshot.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) {
	t.Helper()

	query := `
		INSERT INTO period_snapshot (
			id, granularity, period,
			total_deposits_tl, total_withdrawals_tl,
			total_deposits_usd, total_withdrawals_usd,
			bank_tl, credit_card_tl, tether_usd, transaction_count
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, string(b.Granularity), b.Period,
		nullableFloat(b.Data.TotalDepositsTL), nullableFloat(b.Data.TotalWithdrawalsTL),
		nullableFloat(b.Data.TotalDepositsUSD), nullableFloat(b.Data.TotalWithdrawalsUSD),
		nullableFloat(b.Data.BankTL), nullableFloat(b.Data.CreditCardTL),
		nullableFloat(b.Data.TetherUSD), nullableInt(b.Data.TransactionCount))
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
