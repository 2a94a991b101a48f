package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// TransactionRepository provides data access methods for the psp_transaction
// table. It returns transactions in insertion order within a date so the
// aggregation layer receives an ordered, pre-filtered window.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, date, category, amount, currency, psp, channel, exchange_rate, converted_amount, created_at`

// GetTransactionsByDateRange retrieves all transactions with a date between
// startDate and endDate inclusive, ordered by date then insertion time.
func (r *TransactionRepository) GetTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM psp_transaction
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query psp_transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetTransactionsForDate retrieves all transactions for a single calendar date.
func (r *TransactionRepository) GetTransactionsForDate(ctx context.Context, date time.Time) ([]model.Transaction, error) {
	return r.GetTransactionsByDateRange(ctx, date, date)
}

// GetTransaction retrieves a single transaction by its ID.
func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM psp_transaction WHERE id = ?`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query psp_transaction table: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(transactions) == 0 {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return transactions[0], nil
}

// InsertTransaction persists a new transaction.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO psp_transaction (id, date, category, amount, currency, psp, channel, exchange_rate, converted_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Date.Format("2006-01-02"),
		string(t.Category),
		t.Amount,
		t.Currency,
		nullString(t.PSP),
		nullString(string(t.Channel)),
		nullFloat(t.ExchangeRate),
		nullFloat(t.ConvertedAmount),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// UpdateTransaction persists changes to an existing transaction.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		UPDATE psp_transaction
		SET date = ?, category = ?, amount = ?, currency = ?, psp = ?, channel = ?, exchange_rate = ?, converted_amount = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Date.Format("2006-01-02"),
		string(t.Category),
		t.Amount,
		t.Currency,
		nullString(t.PSP),
		nullString(string(t.Channel)),
		nullFloat(t.ExchangeRate),
		nullFloat(t.ConvertedAmount),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// GetPeriodTotals computes live per-period aggregates for the breakdown
// report directly from the transaction table. Every field of the returned
// rows is present (zero when there was no matching activity), which is what
// distinguishes computed data from a not-yet-loaded snapshot.
func (r *TransactionRepository) GetPeriodTotals(ctx context.Context, granularity model.Granularity, startDate, endDate time.Time) (map[string]model.FinancialPeriodData, error) {
	var periodExpr string
	switch granularity {
	case model.GranularityDaily:
		periodExpr = `strftime('%Y-%m-%d', date)`
	case model.GranularityMonthly:
		periodExpr = `strftime('%Y-%m', date)`
	case model.GranularityAnnual:
		periodExpr = `strftime('%Y', date)`
	default:
		return nil, apperrors.ErrInvalidGranularity
	}

	query := `
		SELECT ` + periodExpr + ` AS period,
			SUM(CASE WHEN category = 'DEP' AND currency IN ('TRY', 'TL') THEN amount ELSE 0 END),
			SUM(CASE WHEN category = 'WD' AND currency IN ('TRY', 'TL') THEN amount ELSE 0 END),
			SUM(CASE WHEN category = 'DEP' AND currency = 'USD' THEN amount ELSE 0 END),
			SUM(CASE WHEN category = 'WD' AND currency = 'USD' THEN amount ELSE 0 END),
			SUM(CASE WHEN channel = 'bank' AND currency IN ('TRY', 'TL') THEN amount * (CASE WHEN category = 'WD' THEN -1 ELSE 1 END) ELSE 0 END),
			SUM(CASE WHEN channel = 'credit_card' AND currency IN ('TRY', 'TL') THEN amount * (CASE WHEN category = 'WD' THEN -1 ELSE 1 END) ELSE 0 END),
			SUM(CASE WHEN channel = 'tether' AND currency = 'USD' THEN amount * (CASE WHEN category = 'WD' THEN -1 ELSE 1 END) ELSE 0 END),
			COUNT(*)
		FROM psp_transaction
		WHERE date >= ? AND date <= ?
		GROUP BY period
		ORDER BY period ASC
	`

	rows, err := r.db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query period totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]model.FinancialPeriodData)
	for rows.Next() {
		var period string
		var depTL, wdTL, depUSD, wdUSD, bankTL, ccTL, tetherUSD float64
		var count int

		if err := rows.Scan(&period, &depTL, &wdTL, &depUSD, &wdUSD, &bankTL, &ccTL, &tetherUSD, &count); err != nil {
			return nil, fmt.Errorf("failed to scan period totals: %w", err)
		}

		totals[period] = model.FinancialPeriodData{
			Period:              period,
			TotalDepositsTL:     model.Float64Ptr(depTL),
			TotalWithdrawalsTL:  model.Float64Ptr(wdTL),
			TotalDepositsUSD:    model.Float64Ptr(depUSD),
			TotalWithdrawalsUSD: model.Float64Ptr(wdUSD),
			BankTL:              model.Float64Ptr(bankTL),
			CreditCardTL:        model.Float64Ptr(ccTL),
			TetherUSD:           model.Float64Ptr(tetherUSD),
			TransactionCount:    model.IntPtr(count),
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period totals: %w", err)
	}
	return totals, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction

	for rows.Next() {
		var t model.Transaction
		var dateStr, createdAtStr string
		var psp, channel sql.NullString
		var exchangeRate, convertedAmount sql.NullFloat64

		err := rows.Scan(
			&t.ID,
			&dateStr,
			&t.Category,
			&t.Amount,
			&t.Currency,
			&psp,
			&channel,
			&exchangeRate,
			&convertedAmount,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan psp_transaction results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		t.PSP = psp.String
		t.Channel = model.Channel(channel.String)
		t.ExchangeRate = exchangeRate.Float64
		t.ConvertedAmount = convertedAmount.Float64

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating psp_transaction table: %w", err)
	}
	return transactions, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}
