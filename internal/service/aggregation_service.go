package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/ledger"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/rates"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
)

// AggregationService groups transactions by calendar date, converts every
// amount into the reporting currency through the rate table, and reconciles
// the local computation against the authoritative daily summary.
type AggregationService struct {
	transactionRepo *repository.TransactionRepository
	rateTable       *rates.Table
	resultCache     *cache.ResultCache
	summaryFetcher  ledger.SummaryFetcher
	summaryTTL      time.Duration
}

// NewAggregationService creates a new AggregationService with the provided dependencies.
func NewAggregationService(
	transactionRepo *repository.TransactionRepository,
	rateTable *rates.Table,
	resultCache *cache.ResultCache,
	summaryFetcher ledger.SummaryFetcher,
	summaryTTL time.Duration,
) *AggregationService {
	return &AggregationService{
		transactionRepo: transactionRepo,
		rateTable:       rateTable,
		resultCache:     resultCache,
		summaryFetcher:  summaryFetcher,
		summaryTTL:      summaryTTL,
	}
}

// convertedValue resolves the reporting-currency value of one
// non-reporting-currency transaction. The precedence is:
//
//  1. a manual rate-table override for the transaction's pair and date --
//     an explicit operator action outranks anything captured with the
//     transaction,
//  2. the precomputed converted amount captured with the transaction,
//  3. the capture-time exchange rate applied to the amount,
//  4. a background auto-fetched rate for the pair and date,
//  5. zero, with a warning for operator review. Unconvertible is flagged,
//     never fatal.
//
// The returned rate is the one actually applied (implied from the converted
// amount in case 2), used for the per-currency mean.
func (s *AggregationService) convertedValue(t model.Transaction) (value, rateApplied float64, warning *model.AggregationWarning) {
	sign := t.Category.Sign()
	pair := model.PairForCurrency(t.Currency)

	tableRate, source, err := s.rateTable.ResolveWithSource(pair, t.Date)
	if err == nil && source == model.RateSourceManual {
		return sign * t.Amount * tableRate, tableRate, nil
	}

	if t.ConvertedAmount > 0 {
		implied := 0.0
		if t.Amount > 0 {
			implied = t.ConvertedAmount / t.Amount
		}
		return sign * t.ConvertedAmount, implied, nil
	}

	if t.ExchangeRate > 0 {
		return sign * t.Amount * t.ExchangeRate, t.ExchangeRate, nil
	}

	if err == nil {
		return sign * t.Amount * tableRate, tableRate, nil
	}

	return 0, 0, &model.AggregationWarning{
		TransactionID: t.ID,
		Currency:      t.Currency,
		Reason:        "no exchange rate available; contributed 0 to converted total",
	}
}

// Aggregate partitions transactions by calendar date and computes each
// date's native and converted totals. The result is derived fresh from the
// inputs on every call; aggregating an unchanged transaction set twice
// yields identical groups.
func (s *AggregationService) Aggregate(transactions []model.Transaction) []model.DailyGroup {
	type rateAccum struct {
		sum   float64
		count int
	}

	groupsByDay := make(map[string]*model.DailyGroup)
	ratesByDay := make(map[string]map[string]*rateAccum)

	for _, t := range transactions {
		day := t.Date.UTC().Format("2006-01-02")
		group, ok := groupsByDay[day]
		if !ok {
			group = &model.DailyGroup{
				Date:         t.Date.UTC().Truncate(24 * time.Hour),
				PerCurrency:  make(map[string]float64),
				AverageRates: make(map[string]float64),
			}
			groupsByDay[day] = group
			ratesByDay[day] = make(map[string]*rateAccum)
		}

		currency := model.NormalizeCurrency(t.Currency)
		if currency == model.ReportingCurrency {
			group.NativeTotal += t.SignedAmount()
			continue
		}

		value, rateApplied, warning := s.convertedValue(t)
		group.PerCurrency[currency] += value
		group.ConvertedTotal += value
		if warning != nil {
			group.Warnings = append(group.Warnings, *warning)
			continue
		}
		if rateApplied > 0 {
			accum, ok := ratesByDay[day][currency]
			if !ok {
				accum = &rateAccum{}
				ratesByDay[day][currency] = accum
			}
			accum.sum += rateApplied
			accum.count++
		}
	}

	groups := make([]model.DailyGroup, 0, len(groupsByDay))
	for day, group := range groupsByDay {
		for currency, accum := range ratesByDay[day] {
			group.AverageRates[currency] = accum.sum / float64(accum.count)
		}
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})
	return groups
}

// NetAmountsByPSP computes each PSP's signed net amount in the reporting
// currency across the given transactions, using the same conversion
// precedence as Aggregate. Used to scope a date's net amount per PSP for
// settlement.
func (s *AggregationService) NetAmountsByPSP(transactions []model.Transaction) map[string]float64 {
	nets := make(map[string]float64)
	for _, t := range transactions {
		if t.PSP == "" {
			continue
		}
		if model.NormalizeCurrency(t.Currency) == model.ReportingCurrency {
			nets[t.PSP] += t.SignedAmount()
			continue
		}
		value, _, _ := s.convertedValue(t)
		nets[t.PSP] += value
	}
	return nets
}

// Reconcile overlays the authoritative daily balance onto locally computed
// groups. All dates are fetched in one batched call through the result
// cache; dates absent from the response keep their local fallback. A failed
// fetch, or a rate-table change while the fetch was in flight, leaves every
// group untouched -- reconciliation degrades, it never fails the caller.
func (s *AggregationService) Reconcile(ctx context.Context, groups []model.DailyGroup, bypassCache bool) []model.DailyGroup {
	if len(groups) == 0 || s.summaryFetcher == nil {
		return groups
	}

	dates := make([]time.Time, len(groups))
	days := make([]string, len(groups))
	for i, g := range groups {
		dates[i] = g.Date
		days[i] = g.Date.Format("2006-01-02")
	}
	key := "daily-summary:" + strings.Join(days, ",")

	generation := s.rateTable.Generation()

	fetched, err := s.resultCache.GetOrFetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.summaryFetcher.FetchDailySummaries(ctx, dates)
	}, cache.Options{BypassCache: bypassCache, TTL: s.summaryTTL})
	if err != nil {
		log.Printf("reconciliation degraded, keeping local totals: %v", err)
		return groups
	}

	if s.rateTable.Generation() != generation {
		log.Printf("discarding stale reconciliation result for %s", key)
		s.resultCache.Clear(key)
		return groups
	}

	balances, ok := fetched.(map[string]float64)
	if !ok {
		log.Printf("unexpected reconciliation payload for %s, keeping local totals", key)
		return groups
	}

	reconciled := make([]model.DailyGroup, len(groups))
	copy(reconciled, groups)
	for i := range reconciled {
		if balance, ok := balances[days[i]]; ok {
			b := balance
			reconciled[i].AuthoritativeNetBalance = &b
		}
	}
	return reconciled
}

// GetDailyGroups loads the transaction window from the repository,
// aggregates it, and optionally reconciles against the authoritative
// summary. refresh bypasses the summary cache for this window.
func (s *AggregationService) GetDailyGroups(ctx context.Context, startDate, endDate time.Time, reconcile, refresh bool) ([]model.DailyGroup, error) {
	transactions, err := s.transactionRepo.GetTransactionsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	groups := s.Aggregate(transactions)
	if reconcile {
		groups = s.Reconcile(ctx, groups, refresh)
	}
	return groups, nil
}
