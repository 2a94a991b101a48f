package service

import (
	"context"
	"sort"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/validation"
)

// PeriodService reconciles daily/monthly/annual period totals from
// possibly-partial sources: live aggregates computed from the transaction
// table and stored snapshots that may only cover some fields.
type PeriodService struct {
	transactionRepo *repository.TransactionRepository
	periodRepo      *repository.PeriodRepository
}

// NewPeriodService creates a new PeriodService with the provided repository dependencies.
func NewPeriodService(
	transactionRepo *repository.TransactionRepository,
	periodRepo *repository.PeriodRepository,
) *PeriodService {
	return &PeriodService{
		transactionRepo: transactionRepo,
		periodRepo:      periodRepo,
	}
}

// mergeFloat prefers base whenever it is loaded -- including when it is
// exactly 0 -- then fallback, then a loaded zero. A period with genuinely
// zero activity must never be overwritten by a stale non-zero fallback.
func mergeFloat(base, fallback *float64) *float64 {
	if base != nil {
		return base
	}
	if fallback != nil {
		return fallback
	}
	return model.Float64Ptr(0)
}

func mergeInt(base, fallback *int) *int {
	if base != nil {
		return base
	}
	if fallback != nil {
		return fallback
	}
	return model.IntPtr(0)
}

// Merge combines a base period snapshot with a fallback, field by field.
// Net cash is derived from deposits minus withdrawals whenever the base
// carries both operands; only when the base lacks that derivation does the
// net-cash field itself participate in the field-by-field merge.
func Merge(base, fallback model.FinancialPeriodData) model.FinancialPeriodData {
	merged := model.FinancialPeriodData{Period: base.Period}
	if merged.Period == "" {
		merged.Period = fallback.Period
	}

	merged.TotalDepositsTL = mergeFloat(base.TotalDepositsTL, fallback.TotalDepositsTL)
	merged.TotalWithdrawalsTL = mergeFloat(base.TotalWithdrawalsTL, fallback.TotalWithdrawalsTL)
	merged.TotalDepositsUSD = mergeFloat(base.TotalDepositsUSD, fallback.TotalDepositsUSD)
	merged.TotalWithdrawalsUSD = mergeFloat(base.TotalWithdrawalsUSD, fallback.TotalWithdrawalsUSD)
	merged.BankTL = mergeFloat(base.BankTL, fallback.BankTL)
	merged.CreditCardTL = mergeFloat(base.CreditCardTL, fallback.CreditCardTL)
	merged.TetherUSD = mergeFloat(base.TetherUSD, fallback.TetherUSD)
	merged.TransactionCount = mergeInt(base.TransactionCount, fallback.TransactionCount)

	if base.TotalDepositsTL != nil && base.TotalWithdrawalsTL != nil {
		merged.NetCashTL = model.Float64Ptr(*merged.TotalDepositsTL - *merged.TotalWithdrawalsTL)
	} else {
		merged.NetCashTL = mergeFloat(base.NetCashTL, fallback.NetCashTL)
	}

	if base.TotalDepositsUSD != nil && base.TotalWithdrawalsUSD != nil {
		merged.NetCashUSD = model.Float64Ptr(*merged.TotalDepositsUSD - *merged.TotalWithdrawalsUSD)
	} else {
		merged.NetCashUSD = mergeFloat(base.NetCashUSD, fallback.NetCashUSD)
	}

	return merged
}

// Breakdown returns one merged row per period in the window: live aggregates
// from the transaction table as the base, stored snapshots as the fallback.
func (s *PeriodService) Breakdown(ctx context.Context, granularity model.Granularity, startDate, endDate time.Time) ([]model.FinancialPeriodData, error) {
	if !granularity.Valid() {
		return nil, apperrors.ErrInvalidGranularity
	}
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		return nil, apperrors.ErrInvalidDateRange
	}

	live, err := s.transactionRepo.GetPeriodTotals(ctx, granularity, startDate, endDate)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.periodRepo.GetSnapshots(ctx, granularity,
		repository.PeriodKey(granularity, startDate),
		repository.PeriodKey(granularity, endDate),
	)
	if err != nil {
		return nil, err
	}

	periods := make(map[string]struct{}, len(live)+len(snapshots))
	for p := range live {
		periods[p] = struct{}{}
	}
	for p := range snapshots {
		periods[p] = struct{}{}
	}

	keys := make([]string, 0, len(periods))
	for p := range periods {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	rows := make([]model.FinancialPeriodData, 0, len(keys))
	for _, p := range keys {
		base := live[p]
		fallback := snapshots[p]
		base.Period = p
		rows = append(rows, Merge(base, fallback))
	}
	return rows, nil
}

// SaveSnapshot stores a period snapshot used as a merge fallback.
func (s *PeriodService) SaveSnapshot(ctx context.Context, granularity model.Granularity, snapshot model.FinancialPeriodData) error {
	if !granularity.Valid() {
		return apperrors.ErrInvalidGranularity
	}
	return s.periodRepo.UpsertSnapshot(ctx, granularity, snapshot)
}
