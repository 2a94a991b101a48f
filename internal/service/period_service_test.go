package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/testutil"
)

func TestMerge(t *testing.T) {
	t.Run("loaded zero in base wins over non-zero fallback", func(t *testing.T) {
		base := model.FinancialPeriodData{NetCashTL: model.Float64Ptr(0)}
		fallback := model.FinancialPeriodData{NetCashTL: model.Float64Ptr(500)}

		merged := service.Merge(base, fallback)

		if merged.NetCashTL == nil || *merged.NetCashTL != 0 {
			t.Errorf("Expected loaded zero to survive the merge, got %v", merged.NetCashTL)
		}
	})

	t.Run("missing base field falls back", func(t *testing.T) {
		base := model.FinancialPeriodData{}
		fallback := model.FinancialPeriodData{BankTL: model.Float64Ptr(750)}

		merged := service.Merge(base, fallback)

		if merged.BankTL == nil || *merged.BankTL != 750 {
			t.Errorf("Expected fallback 750, got %v", merged.BankTL)
		}
	})

	t.Run("field missing everywhere resolves to loaded zero", func(t *testing.T) {
		merged := service.Merge(model.FinancialPeriodData{}, model.FinancialPeriodData{})

		if merged.TetherUSD == nil || *merged.TetherUSD != 0 {
			t.Errorf("Expected explicit zero, got %v", merged.TetherUSD)
		}
		if merged.TransactionCount == nil || *merged.TransactionCount != 0 {
			t.Errorf("Expected explicit zero count, got %v", merged.TransactionCount)
		}
	})

	t.Run("net cash is derived when base carries both operands", func(t *testing.T) {
		base := model.FinancialPeriodData{
			TotalDepositsTL:    model.Float64Ptr(1000),
			TotalWithdrawalsTL: model.Float64Ptr(300),
			// A stored netCash disagreeing with the operands loses to the
			// derivation.
			NetCashTL: model.Float64Ptr(9999),
		}

		merged := service.Merge(base, model.FinancialPeriodData{})

		if merged.NetCashTL == nil || *merged.NetCashTL != 700 {
			t.Errorf("Expected derived 700, got %v", merged.NetCashTL)
		}
	})

	t.Run("net cash merges as a plain field without both operands", func(t *testing.T) {
		base := model.FinancialPeriodData{TotalDepositsTL: model.Float64Ptr(1000)}
		fallback := model.FinancialPeriodData{NetCashTL: model.Float64Ptr(250)}

		merged := service.Merge(base, fallback)

		if merged.NetCashTL == nil || *merged.NetCashTL != 250 {
			t.Errorf("Expected fallback netCash 250, got %v", merged.NetCashTL)
		}
	})

	t.Run("usd net cash derives independently of tl", func(t *testing.T) {
		base := model.FinancialPeriodData{
			TotalDepositsUSD:    model.Float64Ptr(400),
			TotalWithdrawalsUSD: model.Float64Ptr(100),
		}

		merged := service.Merge(base, model.FinancialPeriodData{})

		if merged.NetCashUSD == nil || *merged.NetCashUSD != 300 {
			t.Errorf("Expected derived 300, got %v", merged.NetCashUSD)
		}
	})
}

func TestPeriodBreakdown(t *testing.T) {
	ctx := context.Background()

	t.Run("live totals merge with snapshot fallback", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPeriodService(t, db)

		// Live activity on one date, a partial snapshot for the same period.
		testutil.NewTransaction().
			WithDate("2024-06-01").
			WithCurrency("TRY").
			WithAmount(1000).
			WithChannel(model.ChannelBank).
			Build(t, db)
		testutil.NewSnapshot().
			WithPeriod("2024-06-01").
			WithData(model.FinancialPeriodData{
				TetherUSD: model.Float64Ptr(42),
			}).
			Build(t, db)

		rows, err := svc.Breakdown(ctx, model.GranularityDaily,
			testutil.Date(t, "2024-06-01"), testutil.Date(t, "2024-06-01"))
		if err != nil {
			t.Fatalf("Breakdown failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected 1 row, got %d", len(rows))
		}

		row := rows[0]
		if row.TotalDepositsTL == nil || *row.TotalDepositsTL != 1000 {
			t.Errorf("Expected live deposits 1000, got %v", row.TotalDepositsTL)
		}
		if row.BankTL == nil || *row.BankTL != 1000 {
			t.Errorf("Expected bank channel 1000, got %v", row.BankTL)
		}
		// Live data is fully loaded, so its zero tether beats the snapshot.
		if row.TetherUSD == nil || *row.TetherUSD != 0 {
			t.Errorf("Expected live zero to win over snapshot 42, got %v", row.TetherUSD)
		}
		if row.NetCashTL == nil || *row.NetCashTL != 1000 {
			t.Errorf("Expected derived net cash 1000, got %v", row.NetCashTL)
		}
	})

	t.Run("snapshot-only periods appear in the result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPeriodService(t, db)

		testutil.NewSnapshot().
			WithPeriod("2024-06-02").
			WithData(model.FinancialPeriodData{
				TotalDepositsTL: model.Float64Ptr(500),
			}).
			Build(t, db)

		rows, err := svc.Breakdown(ctx, model.GranularityDaily,
			testutil.Date(t, "2024-06-01"), testutil.Date(t, "2024-06-03"))
		if err != nil {
			t.Fatalf("Breakdown failed: %v", err)
		}
		if len(rows) != 1 || rows[0].Period != "2024-06-02" {
			t.Fatalf("Expected the snapshot period, got %+v", rows)
		}
		if rows[0].TotalDepositsTL == nil || *rows[0].TotalDepositsTL != 500 {
			t.Errorf("Expected snapshot deposits 500, got %v", rows[0].TotalDepositsTL)
		}
	})

	t.Run("monthly granularity groups by month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPeriodService(t, db)

		testutil.NewTransaction().WithDate("2024-06-01").WithCurrency("TRY").WithAmount(100).Build(t, db)
		testutil.NewTransaction().WithDate("2024-06-15").WithCurrency("TRY").WithAmount(200).Build(t, db)
		testutil.NewTransaction().WithDate("2024-07-01").WithCurrency("TRY").WithAmount(400).Build(t, db)

		rows, err := svc.Breakdown(ctx, model.GranularityMonthly,
			testutil.Date(t, "2024-06-01"), testutil.Date(t, "2024-07-31"))
		if err != nil {
			t.Fatalf("Breakdown failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Expected 2 monthly rows, got %d", len(rows))
		}
		if rows[0].Period != "2024-06" || *rows[0].TotalDepositsTL != 300 {
			t.Errorf("Expected June total 300, got %+v", rows[0])
		}
		if rows[1].Period != "2024-07" || *rows[1].TotalDepositsTL != 400 {
			t.Errorf("Expected July total 400, got %+v", rows[1])
		}
	})

	t.Run("rejects invalid granularity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPeriodService(t, db)

		_, err := svc.Breakdown(ctx, model.Granularity("weekly"),
			testutil.Date(t, "2024-06-01"), testutil.Date(t, "2024-06-02"))
		if !errors.Is(err, apperrors.ErrInvalidGranularity) {
			t.Errorf("Expected ErrInvalidGranularity, got %v", err)
		}
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPeriodService(t, db)

		_, err := svc.Breakdown(ctx, model.GranularityDaily,
			testutil.Date(t, "2024-06-02"), testutil.Date(t, "2024-06-01"))
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}
