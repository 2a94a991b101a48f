package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
)

// smallResidualShare is the fraction of the net amount below which a
// positive rollover counts as a small residual rather than an outstanding
// PSP debt. Relative to net, so the rule scales with transaction volume.
const smallResidualShare = 0.10

// ComputeRollover derives a PSP's settlement position from its net
// transacted amount and the amount an operator has marked as settled.
// The status is a pure function of the two inputs and is never stored.
func ComputeRollover(netAmount, allocatedAmount float64) model.RolloverResult {
	rollover := netAmount - allocatedAmount

	var status model.SettlementStatus
	switch {
	case rollover <= 0:
		status = model.StatusPSPOwesBusiness
	case rollover < smallResidualShare*math.Abs(netAmount):
		status = model.StatusSmallResidual
	default:
		status = model.StatusBusinessOwesPSP
	}

	return model.RolloverResult{Rollover: rollover, Status: status}
}

type pendingAllocation struct {
	amount  float64
	seq     uint64
	timer   *time.Timer
	lastErr error
}

// RolloverService computes PSP settlement state and persists operator
// allocation edits. Writes are debounced: rapid edits for the same
// (psp, date) coalesce into one write after a quiet period, and a flush
// (focus-loss) writes immediately so the last-entered value is never lost.
// A failed write keeps the edit visible locally and requires an explicit
// re-save; there is no automatic retry.
type RolloverService struct {
	allocationRepo     *repository.AllocationRepository
	aggregationService *AggregationService
	debounce           time.Duration

	mu      sync.Mutex
	pending map[string]*pendingAllocation
	seq     uint64

	// writeMu serializes upserts so a debounce timer that fired just before
	// a flush cannot land its older amount after the flushed write.
	writeMu sync.Mutex
}

// NewRolloverService creates a new RolloverService with the provided dependencies.
func NewRolloverService(
	allocationRepo *repository.AllocationRepository,
	aggregationService *AggregationService,
	debounce time.Duration,
) *RolloverService {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &RolloverService{
		allocationRepo:     allocationRepo,
		aggregationService: aggregationService,
		debounce:           debounce,
		pending:            make(map[string]*pendingAllocation),
	}
}

func allocationKey(psp string, date time.Time) string {
	return psp + "|" + date.UTC().Format("2006-01-02")
}

// Save records an allocation edit. With flush=false the write is deferred
// until the quiet period elapses; further edits within the window reset it.
// With flush=true the value is written immediately and any pending timer for
// the key is cancelled.
func (s *RolloverService) Save(ctx context.Context, psp string, date time.Time, amount float64, flush bool) error {
	if amount < 0 {
		return fmt.Errorf("%w: got %v", apperrors.ErrInvalidAllocation, amount)
	}

	key := allocationKey(psp, date)

	s.mu.Lock()
	if existing, ok := s.pending[key]; ok && existing.timer != nil {
		existing.timer.Stop()
	}
	s.seq++
	seq := s.seq

	if flush {
		s.pending[key] = &pendingAllocation{amount: amount, seq: seq}
		s.mu.Unlock()
		return s.write(ctx, key, psp, date, amount, seq)
	}

	entry := &pendingAllocation{amount: amount, seq: seq}
	entry.timer = time.AfterFunc(s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.write(ctx, key, psp, date, amount, seq); err != nil {
			// Edit stays pending and visible; the operator re-saves.
			log.Printf("deferred allocation write failed for %s: %v", key, err)
		}
	})
	s.pending[key] = entry
	s.mu.Unlock()
	return nil
}

// Flush forces an immediate write of a pending edit for (psp, date).
// It is a no-op when nothing is pending.
func (s *RolloverService) Flush(ctx context.Context, psp string, date time.Time) error {
	key := allocationKey(psp, date)

	s.mu.Lock()
	entry, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	amount, seq := entry.amount, entry.seq
	s.mu.Unlock()

	return s.write(ctx, key, psp, date, amount, seq)
}

// PendingError returns the last write failure for (psp, date), or nil when
// the latest edit was persisted (or no edit exists).
func (s *RolloverService) PendingError(psp string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.pending[allocationKey(psp, date)]; ok {
		return entry.lastErr
	}
	return nil
}

func (s *RolloverService) write(ctx context.Context, key, psp string, date time.Time, amount float64, seq uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	entry, ok := s.pending[key]
	if !ok || entry.seq != seq {
		// A newer edit superseded this write; its own write covers it.
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.allocationRepo.UpsertAllocation(ctx, psp, date, amount)

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok = s.pending[key]
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", apperrors.ErrAllocationSaveFailed, err)
		if ok && entry.seq == seq {
			entry.lastErr = wrapped
		}
		return wrapped
	}
	// Only drop the pending edit if no newer edit arrived while writing.
	if ok && entry.seq == seq {
		delete(s.pending, key)
	}
	return nil
}

// Allocations returns every PSP's settlement record for one date: the net
// amount from that date's transactions scoped per PSP, the allocated amount
// (a pending local edit wins over the stored value, so a failed save never
// hides the operator's input), and the derived rollover position.
func (s *RolloverService) Allocations(ctx context.Context, date time.Time) ([]model.PSPAllocation, error) {
	transactions, err := s.aggregationService.transactionRepo.GetTransactionsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	nets := s.aggregationService.NetAmountsByPSP(transactions)

	stored, err := s.allocationRepo.GetAllocationsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	allocated := make(map[string]model.PSPAllocation, len(stored))
	for _, a := range stored {
		allocated[a.PSP] = a
	}

	psps := make(map[string]struct{}, len(nets)+len(allocated))
	for psp := range nets {
		psps[psp] = struct{}{}
	}
	for psp := range allocated {
		psps[psp] = struct{}{}
	}

	s.mu.Lock()
	pendingAmounts := make(map[string]float64)
	for psp := range psps {
		if entry, ok := s.pending[allocationKey(psp, date)]; ok {
			pendingAmounts[psp] = entry.amount
		}
	}
	s.mu.Unlock()

	result := make([]model.PSPAllocation, 0, len(psps))
	for psp := range psps {
		record := allocated[psp]
		record.PSP = psp
		record.Date = date.UTC()
		record.NetAmount = nets[psp]
		if pending, ok := pendingAmounts[psp]; ok {
			record.AllocatedAmount = pending
		}

		rollover := ComputeRollover(record.NetAmount, record.AllocatedAmount)
		record.Rollover = rollover.Rollover
		record.Status = rollover.Status
		result = append(result, record)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].PSP < result[j].PSP })
	return result, nil
}
