// Package rates holds the exchange-rate table: rates keyed by
// (currency pair, date), with manual overrides shadowing auto-fetched rates.
package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// Store persists rate mutations. Implemented by repository.RateRepository.
type Store interface {
	UpsertRate(ctx context.Context, rate model.ExchangeRate) error
	GetAllRates(ctx context.Context) ([]model.ExchangeRate, error)
}

type rateKey struct {
	pair string
	day  string
}

func keyFor(pair string, date time.Time) rateKey {
	return rateKey{pair: pair, day: date.UTC().Format("2006-01-02")}
}

// Table holds exchange rates in memory, backed by an optional Store.
// Mutations are visible to the very next resolution; the generation counter
// lets consumers detect that the table changed while a fetch was in flight.
type Table struct {
	mu         sync.RWMutex
	manual     map[rateKey]float64
	auto       map[rateKey]float64
	generation uint64

	store      Store
	onOverride []func(date time.Time)
}

// NewTable creates an empty rate table. store may be nil for tests.
func NewTable(store Store) *Table {
	return &Table{
		manual: make(map[rateKey]float64),
		auto:   make(map[rateKey]float64),
		store:  store,
	}
}

// Load hydrates the table from the store.
func (t *Table) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	stored, err := t.store.GetAllRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rate table: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range stored {
		k := keyFor(r.CurrencyPair, r.Date)
		if r.Source == model.RateSourceManual {
			t.manual[k] = r.Rate
		} else {
			t.auto[k] = r.Rate
		}
	}
	return nil
}

// Resolve returns the effective rate for a currency pair on a date.
// Resolution order: manual override for the exact date, then auto-fetched
// rate for the exact date, then ErrExchangeRateNotFound. Callers fall back
// to the per-transaction capture rate, then to zero.
func (t *Table) Resolve(pair string, date time.Time) (float64, error) {
	rate, _, err := t.ResolveWithSource(pair, date)
	return rate, err
}

// ResolveWithSource is Resolve plus the source of the winning rate, so
// aggregation can rank an explicit manual override above a transaction's
// captured values while ranking a background auto-fetched rate below them.
func (t *Table) ResolveWithSource(pair string, date time.Time) (float64, model.RateSource, error) {
	k := keyFor(pair, date)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if rate, ok := t.manual[k]; ok {
		return rate, model.RateSourceManual, nil
	}
	if rate, ok := t.auto[k]; ok {
		return rate, model.RateSourceAuto, nil
	}
	return 0, "", fmt.Errorf("%w: %s on %s", apperrors.ErrExchangeRateNotFound, pair, k.day)
}

// Override records a manual rate for (pair, date). A non-positive rate is
// rejected and never stored. Re-applying the same value is a no-op: no
// generation bump, no invalidation callbacks, no store write.
func (t *Table) Override(ctx context.Context, pair string, date time.Time, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: got %v", apperrors.ErrInvalidRate, rate)
	}

	k := keyFor(pair, date)

	t.mu.Lock()
	if existing, ok := t.manual[k]; ok && existing == rate {
		t.mu.Unlock()
		return nil
	}
	t.manual[k] = rate
	t.generation++
	callbacks := append([]func(time.Time){}, t.onOverride...)
	t.mu.Unlock()

	if t.store != nil {
		record := model.ExchangeRate{
			CurrencyPair: pair,
			Date:         date.UTC(),
			Rate:         rate,
			Source:       model.RateSourceManual,
			IsManual:     true,
		}
		if err := t.store.UpsertRate(ctx, record); err != nil {
			return fmt.Errorf("failed to persist rate override: %w", err)
		}
	}

	for _, fn := range callbacks {
		fn(date)
	}
	return nil
}

// SetAuto records an auto-fetched rate. It never shadows a manual entry
// (resolution order guarantees that), and unlike Override it does not fire
// invalidation callbacks for dates that only gained a background rate.
func (t *Table) SetAuto(ctx context.Context, pair string, date time.Time, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: got %v", apperrors.ErrInvalidRate, rate)
	}

	k := keyFor(pair, date)

	t.mu.Lock()
	if existing, ok := t.auto[k]; ok && existing == rate {
		t.mu.Unlock()
		return nil
	}
	t.auto[k] = rate
	t.generation++
	t.mu.Unlock()

	if t.store != nil {
		record := model.ExchangeRate{
			CurrencyPair: pair,
			Date:         date.UTC(),
			Rate:         rate,
			Source:       model.RateSourceAuto,
		}
		if err := t.store.UpsertRate(ctx, record); err != nil {
			return fmt.Errorf("failed to persist auto rate: %w", err)
		}
	}
	return nil
}

// Generation returns a counter that increases on every effective mutation.
// Consumers snapshot it before a slow fetch and discard the result if it
// changed while the fetch was outstanding.
func (t *Table) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// OnOverride registers a callback fired after every effective manual
// override, with the affected date. Used to invalidate cached daily groups.
func (t *Table) OnOverride(fn func(date time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOverride = append(t.onOverride, fn)
}
