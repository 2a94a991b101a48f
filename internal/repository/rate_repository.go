package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// RateRepository provides data access methods for the exchange_rate table.
// It implements rates.Store so the in-memory rate table can hydrate from and
// persist to the database.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new RateRepository with the provided database connection.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// UpsertRate inserts a rate or replaces the existing one for the same
// (currency_pair, date, source). Overrides replace the active value; prior
// versions are not retained.
func (r *RateRepository) UpsertRate(ctx context.Context, rate model.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rate (id, currency_pair, date, rate, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (currency_pair, date, source) DO UPDATE SET rate = excluded.rate
	`

	id := rate.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		rate.CurrencyPair,
		rate.Date.Format("2006-01-02"),
		rate.Rate,
		string(rate.Source),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// GetAllRates returns every stored rate, used to hydrate the rate table at startup.
func (r *RateRepository) GetAllRates(ctx context.Context) ([]model.ExchangeRate, error) {
	query := `SELECT id, currency_pair, date, rate, source, created_at FROM exchange_rate`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

// GetRatesByDateRange returns stored rates with a date between startDate and
// endDate inclusive, ordered by date then pair.
func (r *RateRepository) GetRatesByDateRange(ctx context.Context, startDate, endDate time.Time) ([]model.ExchangeRate, error) {
	query := `
		SELECT id, currency_pair, date, rate, source, created_at
		FROM exchange_rate
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, currency_pair ASC
	`

	rows, err := r.db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

func scanRates(rows *sql.Rows) ([]model.ExchangeRate, error) {
	var rates []model.ExchangeRate

	for rows.Next() {
		var rate model.ExchangeRate
		var dateStr, createdAtStr string

		if err := rows.Scan(&rate.ID, &rate.CurrencyPair, &dateStr, &rate.Rate, &rate.Source, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan exchange_rate results: %w", err)
		}

		var err error
		rate.Date, err = ParseTime(dateStr)
		if err != nil || rate.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		rate.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		rate.IsManual = rate.Source == model.RateSourceManual

		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}
	return rates, nil
}
