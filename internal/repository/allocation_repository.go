package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// AllocationRepository provides data access methods for the psp_allocation
// table. Only the allocated amount is stored; rollover and status are
// derived at read time from the matching daily net amount.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new AllocationRepository with the provided database connection.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// UpsertAllocation stores the allocated amount for a (psp, date) pair,
// replacing any previous value.
func (r *AllocationRepository) UpsertAllocation(ctx context.Context, psp string, date time.Time, amount float64) error {
	query := `
		INSERT INTO psp_allocation (id, psp, date, allocated_amount, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (psp, date) DO UPDATE SET allocated_amount = excluded.allocated_amount, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		psp,
		date.Format("2006-01-02"),
		amount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allocation: %w", err)
	}
	return nil
}

// GetAllocation returns the stored allocation for one (psp, date) pair.
func (r *AllocationRepository) GetAllocation(ctx context.Context, psp string, date time.Time) (model.PSPAllocation, error) {
	query := `
		SELECT id, psp, date, allocated_amount, updated_at
		FROM psp_allocation
		WHERE psp = ? AND date = ?
	`

	rows, err := r.db.QueryContext(ctx, query, psp, date.Format("2006-01-02"))
	if err != nil {
		return model.PSPAllocation{}, fmt.Errorf("failed to query psp_allocation table: %w", err)
	}
	defer rows.Close()

	allocations, err := scanAllocations(rows)
	if err != nil {
		return model.PSPAllocation{}, err
	}
	if len(allocations) == 0 {
		return model.PSPAllocation{}, apperrors.ErrAllocationNotFound
	}
	return allocations[0], nil
}

// GetAllocationsForDate returns every stored allocation for one calendar date.
func (r *AllocationRepository) GetAllocationsForDate(ctx context.Context, date time.Time) ([]model.PSPAllocation, error) {
	query := `
		SELECT id, psp, date, allocated_amount, updated_at
		FROM psp_allocation
		WHERE date = ?
		ORDER BY psp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query psp_allocation table: %w", err)
	}
	defer rows.Close()

	return scanAllocations(rows)
}

func scanAllocations(rows *sql.Rows) ([]model.PSPAllocation, error) {
	var allocations []model.PSPAllocation

	for rows.Next() {
		var a model.PSPAllocation
		var dateStr, updatedAtStr string

		if err := rows.Scan(&a.ID, &a.PSP, &dateStr, &a.AllocatedAmount, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan psp_allocation results: %w", err)
		}

		var err error
		a.Date, err = ParseTime(dateStr)
		if err != nil || a.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		a.UpdatedAt, err = ParseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		allocations = append(allocations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating psp_allocation table: %w", err)
	}
	return allocations, nil
}
