package testutil

import (
	"context"
	"sync"
	"time"
)

// MockSummaryFetcher is a mock implementation of ledger.SummaryFetcher for
// testing. It returns predefined balances instead of calling the ledger API.
type MockSummaryFetcher struct {
	mu sync.Mutex
	// Balances maps YYYY-MM-DD dates to authoritative net balances.
	// Dates absent from the map are simply not returned, mirroring a
	// ledger with no record for that day.
	Balances map[string]float64
	// Err is returned from FetchDailySummaries when set.
	Err error
	// CallCount tracks how many times FetchDailySummaries was called.
	CallCount int
}

// NewMockSummaryFetcher creates a mock fetcher with the given balances.
func NewMockSummaryFetcher(balances map[string]float64) *MockSummaryFetcher {
	return &MockSummaryFetcher{Balances: balances}
}

// FetchDailySummaries returns the configured balances for the requested dates.
func (m *MockSummaryFetcher) FetchDailySummaries(_ context.Context, dates []time.Time) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}

	result := make(map[string]float64, len(dates))
	for _, date := range dates {
		day := date.UTC().Format("2006-01-02")
		if balance, ok := m.Balances[day]; ok {
			result[day] = balance
		}
	}
	return result, nil
}

// Calls returns the number of fetch calls made so far.
func (m *MockSummaryFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// MockRateProvider is a mock implementation of fxprovider.Client for testing.
type MockRateProvider struct {
	mu sync.Mutex
	// Rates maps "BASE/QUOTE" pairs to the rate to return.
	Rates map[string]float64
	// Err is returned from FetchRate when set.
	Err error
	// CallCount tracks how many times FetchRate was called.
	CallCount int
}

// NewMockRateProvider creates a mock provider with the given pair rates.
func NewMockRateProvider(rates map[string]float64) *MockRateProvider {
	return &MockRateProvider{Rates: rates}
}

// FetchRate returns the configured rate for base/quote.
func (m *MockRateProvider) FetchRate(_ context.Context, base, quote string, _ time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Rates[base+"/"+quote], nil
}
