package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/fxprovider"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/rates"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
)

// RateService orchestrates rate-table mutations and the nightly auto-fetch.
// A manual override lands in the table first and cached reconciliations for
// the affected date are invalidated before anything re-derives, so a bulk
// override can never leave some transactions on the old rate.
type RateService struct {
	rateTable   *rates.Table
	rateRepo    *repository.RateRepository
	resultCache *cache.ResultCache
	provider    fxprovider.Client
}

// NewRateService creates a new RateService and wires rate-override
// invalidation into the result cache: every effective override clears any
// cached daily summary covering that date.
func NewRateService(
	rateTable *rates.Table,
	rateRepo *repository.RateRepository,
	resultCache *cache.ResultCache,
	provider fxprovider.Client,
) *RateService {
	s := &RateService{
		rateTable:   rateTable,
		rateRepo:    rateRepo,
		resultCache: resultCache,
		provider:    provider,
	}

	if resultCache != nil {
		rateTable.OnOverride(func(date time.Time) {
			day := date.UTC().Format("2006-01-02")
			resultCache.ClearMatching(func(key string) bool {
				return strings.Contains(key, day)
			})
		})
	}

	return s
}

// Override applies a manual exchange rate for one scope and date. The scope
// selects the pair: USD or EUR directly, or the shared bulk pair covering
// every other non-major currency at once.
func (s *RateService) Override(ctx context.Context, scope model.RateScope, date time.Time, rate float64) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidRateScope, scope)
	}
	return s.rateTable.Override(ctx, scope.CurrencyPair(), date, rate)
}

// GetRates returns stored rates within the date window.
func (s *RateService) GetRates(ctx context.Context, startDate, endDate time.Time) ([]model.ExchangeRate, error) {
	return s.rateRepo.GetRatesByDateRange(ctx, startDate, endDate)
}

// AutoFetchForDate pulls the day's reference rates for the major pairs from
// the external provider and records them as auto-sourced. Manual overrides
// keep shadowing auto rates through the table's resolution order. Fetches
// run concurrently; a failure for one pair does not block the other.
func (s *RateService) AutoFetchForDate(ctx context.Context, date time.Time) error {
	if s.provider == nil {
		return nil
	}

	bases := []string{"USD", "EUR"}

	g, ctx := errgroup.WithContext(ctx)
	for _, base := range bases {
		base := base
		g.Go(func() error {
			rate, err := s.provider.FetchRate(ctx, base, model.ReportingCurrency, date)
			if err != nil {
				return err
			}
			pair := base + "/" + model.ReportingCurrency
			return s.rateTable.SetAuto(ctx, pair, date, rate)
		})
	}
	return g.Wait()
}

// RunDailyFetch is the cron entry point: fetch today's rates and log, never
// crash, on failure.
func (s *RateService) RunDailyFetch() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.AutoFetchForDate(ctx, time.Now().UTC()); err != nil {
		log.Printf("daily rate fetch: %v", err)
	}
}
