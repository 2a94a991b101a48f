// Package apperrors defines sentinel errors shared across the application.
// Errors are grouped by taxonomy: validation errors are rejected at the
// boundary, transient errors are recovered by falling back to local data,
// persistence errors stay user-visible until an explicit retry.
package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrExchangeRateNotFound indicates no rate for a specific currency pair and date combination.
	ErrExchangeRateNotFound = errors.New("exchange rate for currency pair/date not found")

	// ErrAllocationNotFound indicates that no allocation exists for a PSP/date combination.
	ErrAllocationNotFound = errors.New("psp allocation not found")

	// ErrPeriodSnapshotNotFound indicates that no stored snapshot exists for a period.
	ErrPeriodSnapshotNotFound = errors.New("period snapshot not found")

	// ErrSettingNotFound indicates that a system setting key does not exist.
	ErrSettingNotFound = errors.New("system setting not found")
)

// Validation errors represent input rejected before reaching the table or
// store. They are surfaced to the caller synchronously.
var (
	// ErrInvalidRate indicates an exchange rate that is zero or negative.
	ErrInvalidRate = errors.New("exchange rate must be greater than zero")

	// ErrInvalidAllocation indicates a negative allocated amount.
	ErrInvalidAllocation = errors.New("allocated amount cannot be negative")

	// ErrInvalidCategory indicates an unknown transaction category.
	ErrInvalidCategory = errors.New("invalid transaction category")

	// ErrInvalidRateScope indicates an unknown rate override scope.
	ErrInvalidRateScope = errors.New("invalid rate scope")

	// ErrInvalidGranularity indicates an unknown period granularity.
	ErrInvalidGranularity = errors.New("invalid period granularity")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Transient errors represent external calls that failed and were recovered
// locally. They are logged and degrade gracefully, never fatal to a whole
// aggregation.
var (
	// ErrSummaryUnavailable indicates the authoritative daily summary could not be fetched.
	ErrSummaryUnavailable = errors.New("authoritative summary unavailable")

	// ErrRateFetchFailed indicates the external rate provider returned an error.
	ErrRateFetchFailed = errors.New("rate auto-fetch failed")
)

// Persistence and concurrency errors.
var (
	// ErrAllocationSaveFailed indicates a PSP allocation write failed; the
	// pending edit is preserved and an explicit re-save is required.
	ErrAllocationSaveFailed = errors.New("failed to save psp allocation")

	// ErrStaleGeneration indicates a fetched result was discarded because the
	// rate table changed while the fetch was in flight.
	ErrStaleGeneration = errors.New("rate table changed during fetch")
)

// Handler-level operation errors used for consistent API error messages.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveDailyGroups  = errors.New("failed to retrieve daily groups")
	ErrFailedToRetrieveRates        = errors.New("failed to retrieve exchange rates")
	ErrFailedToOverrideRate         = errors.New("failed to override exchange rate")
	ErrFailedToRetrieveAllocations  = errors.New("failed to retrieve psp allocations")
	ErrFailedToRetrievePeriods      = errors.New("failed to retrieve period breakdown")
)
