package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/testutil"
)

func newRateServiceFixture(t *testing.T) (*service.RateService, *cache.ResultCache, *repository.RateRepository) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rateRepo := repository.NewRateRepository(db)
	table := testutil.NewTestRateTable(t, db)
	resultCache := cache.New(2, time.Minute)

	return service.NewRateService(table, rateRepo, resultCache, nil), resultCache, rateRepo
}

func TestRateServiceOverride(t *testing.T) {
	ctx := context.Background()
	date := testutil.Date(t, "2024-06-01")

	t.Run("rejects unknown scope", func(t *testing.T) {
		svc, _, _ := newRateServiceFixture(t)

		err := svc.Override(ctx, model.RateScope("GBP"), date, 40)
		if !errors.Is(err, apperrors.ErrInvalidRateScope) {
			t.Errorf("Expected ErrInvalidRateScope, got %v", err)
		}
	})

	t.Run("persists the override under the scope's pair", func(t *testing.T) {
		svc, _, rateRepo := newRateServiceFixture(t)

		if err := svc.Override(ctx, model.ScopeUSD, date, 33); err != nil {
			t.Fatalf("Override failed: %v", err)
		}

		stored, err := rateRepo.GetRatesByDateRange(ctx, date, date)
		if err != nil {
			t.Fatalf("GetRatesByDateRange failed: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Expected 1 stored rate, got %d", len(stored))
		}
		if stored[0].CurrencyPair != "USD/TRY" || stored[0].Source != model.RateSourceManual {
			t.Errorf("Unexpected stored rate: %+v", stored[0])
		}
	})

	t.Run("bulk scope covers every non-major currency through one pair", func(t *testing.T) {
		svc, _, rateRepo := newRateServiceFixture(t)

		if err := svc.Override(ctx, model.ScopeBulkOther, date, 1.5); err != nil {
			t.Fatalf("Override failed: %v", err)
		}

		stored, err := rateRepo.GetRatesByDateRange(ctx, date, date)
		if err != nil {
			t.Fatalf("GetRatesByDateRange failed: %v", err)
		}
		if len(stored) != 1 || stored[0].CurrencyPair != "OTHER/TRY" {
			t.Errorf("Expected one OTHER/TRY row, got %+v", stored)
		}
	})

	t.Run("override clears cached summaries covering the date", func(t *testing.T) {
		svc, resultCache, _ := newRateServiceFixture(t)

		fetch := func(_ context.Context) (interface{}, error) { return "cached", nil }
		keys := []string{
			"daily-summary:2024-06-01",
			"daily-summary:2024-05-30,2024-06-01",
			"daily-summary:2024-06-02",
		}
		for _, key := range keys {
			if _, err := resultCache.GetOrFetch(ctx, key, fetch, cache.Options{}); err != nil {
				t.Fatalf("GetOrFetch failed: %v", err)
			}
		}

		if err := svc.Override(ctx, model.ScopeUSD, date, 33); err != nil {
			t.Fatalf("Override failed: %v", err)
		}

		// Only the summary not covering the date survives.
		if resultCache.Len() != 1 {
			t.Errorf("Expected 1 surviving entry, got %d", resultCache.Len())
		}
	})

	t.Run("idempotent override leaves the cache alone", func(t *testing.T) {
		svc, resultCache, _ := newRateServiceFixture(t)

		if err := svc.Override(ctx, model.ScopeUSD, date, 33); err != nil {
			t.Fatalf("Override failed: %v", err)
		}

		fetch := func(_ context.Context) (interface{}, error) { return "cached", nil }
		if _, err := resultCache.GetOrFetch(ctx, "daily-summary:2024-06-01", fetch, cache.Options{}); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}

		if err := svc.Override(ctx, model.ScopeUSD, date, 33); err != nil {
			t.Fatalf("Repeat override failed: %v", err)
		}
		if resultCache.Len() != 1 {
			t.Errorf("Expected no invalidation on a no-op override, got %d entries", resultCache.Len())
		}
	})
}

func TestAutoFetchForDate(t *testing.T) {
	ctx := context.Background()
	date := testutil.Date(t, "2024-06-01")

	t.Run("records provider rates for the major pairs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rateRepo := repository.NewRateRepository(db)
		table := testutil.NewTestRateTable(t, db)
		provider := testutil.NewMockRateProvider(map[string]float64{
			"USD/TRY": 30.5,
			"EUR/TRY": 35.2,
		})
		svc := service.NewRateService(table, rateRepo, nil, provider)

		if err := svc.AutoFetchForDate(ctx, date); err != nil {
			t.Fatalf("AutoFetchForDate failed: %v", err)
		}

		rate, err := table.Resolve("USD/TRY", date)
		if err != nil || rate != 30.5 {
			t.Errorf("Expected USD/TRY 30.5, got %v (%v)", rate, err)
		}
		rate, err = table.Resolve("EUR/TRY", date)
		if err != nil || rate != 35.2 {
			t.Errorf("Expected EUR/TRY 35.2, got %v (%v)", rate, err)
		}

		stored, err := rateRepo.GetRatesByDateRange(ctx, date, date)
		if err != nil {
			t.Fatalf("GetRatesByDateRange failed: %v", err)
		}
		if len(stored) != 2 {
			t.Errorf("Expected 2 persisted auto rates, got %d", len(stored))
		}
	})

	t.Run("manual override keeps shadowing a later auto fetch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rateRepo := repository.NewRateRepository(db)
		table := testutil.NewTestRateTable(t, db)
		provider := testutil.NewMockRateProvider(map[string]float64{
			"USD/TRY": 30.5,
			"EUR/TRY": 35.2,
		})
		svc := service.NewRateService(table, rateRepo, nil, provider)

		if err := svc.Override(ctx, model.ScopeUSD, date, 33); err != nil {
			t.Fatalf("Override failed: %v", err)
		}
		if err := svc.AutoFetchForDate(ctx, date); err != nil {
			t.Fatalf("AutoFetchForDate failed: %v", err)
		}

		rate, source, err := table.ResolveWithSource("USD/TRY", date)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if rate != 33 || source != model.RateSourceManual {
			t.Errorf("Expected manual 33 to keep winning, got %v (%s)", rate, source)
		}
	})

	t.Run("provider failure surfaces without wedging the table", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		rateRepo := repository.NewRateRepository(db)
		table := testutil.NewTestRateTable(t, db)
		provider := testutil.NewMockRateProvider(nil)
		provider.Err = errors.New("provider down")
		svc := service.NewRateService(table, rateRepo, nil, provider)

		if err := svc.AutoFetchForDate(ctx, date); err == nil {
			t.Error("Expected provider failure to surface")
		}

		// A later successful fetch still lands.
		provider.Err = nil
		provider.Rates = map[string]float64{"USD/TRY": 31, "EUR/TRY": 36}
		if err := svc.AutoFetchForDate(ctx, date); err != nil {
			t.Fatalf("AutoFetchForDate failed after recovery: %v", err)
		}
		if rate, err := table.Resolve("USD/TRY", date); err != nil || rate != 31 {
			t.Errorf("Expected recovered rate 31, got %v (%v)", rate, err)
		}
	})
}
