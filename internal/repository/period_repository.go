package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// PeriodRepository provides data access methods for the period_snapshot
// table. Snapshots are possibly-partial: any NULL column means that field
// was never loaded for the period, which is distinct from a stored zero.
type PeriodRepository struct {
	db *sql.DB
}

// NewPeriodRepository creates a new PeriodRepository with the provided database connection.
func NewPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// UpsertSnapshot stores a period snapshot, replacing any existing row for
// the same (granularity, period). Nil fields are stored as NULL.
func (r *PeriodRepository) UpsertSnapshot(ctx context.Context, granularity model.Granularity, snapshot model.FinancialPeriodData) error {
	query := `
		INSERT INTO period_snapshot (
			id, granularity, period,
			total_deposits_tl, total_withdrawals_tl, total_deposits_usd, total_withdrawals_usd,
			bank_tl, credit_card_tl, tether_usd, transaction_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (granularity, period) DO UPDATE SET
			total_deposits_tl = excluded.total_deposits_tl,
			total_withdrawals_tl = excluded.total_withdrawals_tl,
			total_deposits_usd = excluded.total_deposits_usd,
			total_withdrawals_usd = excluded.total_withdrawals_usd,
			bank_tl = excluded.bank_tl,
			credit_card_tl = excluded.credit_card_tl,
			tether_usd = excluded.tether_usd,
			transaction_count = excluded.transaction_count
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		string(granularity),
		snapshot.Period,
		nullableFloat(snapshot.TotalDepositsTL),
		nullableFloat(snapshot.TotalWithdrawalsTL),
		nullableFloat(snapshot.TotalDepositsUSD),
		nullableFloat(snapshot.TotalWithdrawalsUSD),
		nullableFloat(snapshot.BankTL),
		nullableFloat(snapshot.CreditCardTL),
		nullableFloat(snapshot.TetherUSD),
		nullableInt(snapshot.TransactionCount),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert period snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the stored snapshot for one (granularity, period).
func (r *PeriodRepository) GetSnapshot(ctx context.Context, granularity model.Granularity, period string) (model.FinancialPeriodData, error) {
	snapshots, err := r.getSnapshots(ctx, `granularity = ? AND period = ?`, string(granularity), period)
	if err != nil {
		return model.FinancialPeriodData{}, err
	}
	if len(snapshots) == 0 {
		return model.FinancialPeriodData{}, apperrors.ErrPeriodSnapshotNotFound
	}
	return snapshots[0], nil
}

// GetSnapshots returns stored snapshots for a granularity keyed by period,
// limited to periods between startPeriod and endPeriod inclusive (period
// keys sort lexicographically in date order).
func (r *PeriodRepository) GetSnapshots(ctx context.Context, granularity model.Granularity, startPeriod, endPeriod string) (map[string]model.FinancialPeriodData, error) {
	snapshots, err := r.getSnapshots(ctx, `granularity = ? AND period >= ? AND period <= ?`, string(granularity), startPeriod, endPeriod)
	if err != nil {
		return nil, err
	}

	byPeriod := make(map[string]model.FinancialPeriodData, len(snapshots))
	for _, s := range snapshots {
		byPeriod[s.Period] = s
	}
	return byPeriod, nil
}

func (r *PeriodRepository) getSnapshots(ctx context.Context, where string, args ...interface{}) ([]model.FinancialPeriodData, error) {
	query := `
		SELECT period,
			total_deposits_tl, total_withdrawals_tl, total_deposits_usd, total_withdrawals_usd,
			bank_tl, credit_card_tl, tether_usd, transaction_count
		FROM period_snapshot
		WHERE ` + where + `
		ORDER BY period ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query period_snapshot table: %w", err)
	}
	defer rows.Close()

	var snapshots []model.FinancialPeriodData
	for rows.Next() {
		var s model.FinancialPeriodData
		var depTL, wdTL, depUSD, wdUSD, bankTL, ccTL, tetherUSD sql.NullFloat64
		var count sql.NullInt64

		if err := rows.Scan(&s.Period, &depTL, &wdTL, &depUSD, &wdUSD, &bankTL, &ccTL, &tetherUSD, &count); err != nil {
			return nil, fmt.Errorf("failed to scan period_snapshot results: %w", err)
		}

		s.TotalDepositsTL = floatPtrFromNull(depTL)
		s.TotalWithdrawalsTL = floatPtrFromNull(wdTL)
		s.TotalDepositsUSD = floatPtrFromNull(depUSD)
		s.TotalWithdrawalsUSD = floatPtrFromNull(wdUSD)
		s.BankTL = floatPtrFromNull(bankTL)
		s.CreditCardTL = floatPtrFromNull(ccTL)
		s.TetherUSD = floatPtrFromNull(tetherUSD)
		if count.Valid {
			s.TransactionCount = model.IntPtr(int(count.Int64))
		}

		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period_snapshot table: %w", err)
	}
	return snapshots, nil
}

// PeriodKey formats a time as the snapshot period key for a granularity.
func PeriodKey(granularity model.Granularity, t time.Time) string {
	switch granularity {
	case model.GranularityMonthly:
		return t.UTC().Format("2006-01")
	case model.GranularityAnnual:
		return t.UTC().Format("2006")
	default:
		return t.UTC().Format("2006-01-02")
	}
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func floatPtrFromNull(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return model.Float64Ptr(f.Float64)
}
