package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/rates"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
)

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewTransactionService(
		transactionRepo,
	)
}

// NewTestRateTable builds a rate table hydrated from the test database.
func NewTestRateTable(t *testing.T, db *sql.DB) *rates.Table {
	t.Helper()

	table := rates.NewTable(repository.NewRateRepository(db))
	if err := table.Load(context.Background()); err != nil {
		t.Fatalf("Failed to load rate table: %v", err)
	}
	return table
}

// NewTestAggregationService wires an aggregation service around the test
// database. fetcher may be nil when reconciliation is not under test.
func NewTestAggregationService(t *testing.T, db *sql.DB, fetcher *MockSummaryFetcher) *service.AggregationService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	table := NewTestRateTable(t, db)
	resultCache := cache.New(4, time.Minute)

	// A typed nil must not end up behind the interface; reconciliation
	// treats a nil fetcher as "not configured".
	if fetcher == nil {
		return service.NewAggregationService(transactionRepo, table, resultCache, nil, time.Minute)
	}
	return service.NewAggregationService(transactionRepo, table, resultCache, fetcher, time.Minute)
}

func NewTestRolloverService(t *testing.T, db *sql.DB, debounce time.Duration) *service.RolloverService {
	t.Helper()

	allocationRepo := repository.NewAllocationRepository(db)
	aggregationService := NewTestAggregationService(t, db, nil)

	return service.NewRolloverService(
		allocationRepo,
		aggregationService,
		debounce,
	)
}

func NewTestPeriodService(t *testing.T, db *sql.DB) *service.PeriodService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	periodRepo := repository.NewPeriodRepository(db)

	return service.NewPeriodService(
		transactionRepo,
		periodRepo,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a unique UUID for testing.
//
// Example usage:
//
//	id := testutil.MakeID()
func MakeID() string {
	return uuid.New().String()
}

// Date parses a YYYY-MM-DD string into a UTC time, failing the test on a
// malformed value.
func Date(t *testing.T, str string) time.Time {
	t.Helper()

	date, err := time.Parse("2006-01-02", str)
	if err != nil {
		t.Fatalf("Invalid test date %q: %v", str, err)
	}
	return date.UTC()
}
