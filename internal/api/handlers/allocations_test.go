package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/testutil"
)

func TestAllocationHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*AllocationHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRolloverService(t, db, 10*time.Millisecond)
		return NewAllocationHandler(svc), db
	}

	t.Run("lists settlement rows with derived rollover", func(t *testing.T) {
		handler, db := setupHandler(t)

		testutil.NewTransaction().
			WithPSP("Stripe").
			WithCurrency("TRY").
			WithAmount(1000).
			Build(t, db)
		testutil.NewAllocation().WithPSP("Stripe").WithAmount(950).Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/allocations", map[string]string{
			"date": "2024-06-01",
		})
		w := httptest.NewRecorder()

		handler.Allocations(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.PSPAllocation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 row, got %d", len(response))
		}
		if response[0].Rollover != 50 || response[0].Status != model.StatusSmallResidual {
			t.Errorf("Unexpected settlement row: %+v", response[0])
		}
	})

	t.Run("returns 400 for missing date", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/allocations", nil)
		w := httptest.NewRecorder()

		handler.Allocations(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("flushed save writes immediately and returns 200", func(t *testing.T) {
		handler, db := setupHandler(t)

		payload := []byte(`{"psp": "Stripe", "date": "2024-06-01", "allocatedAmount": 500, "flush": true}`)
		req := httptest.NewRequest(http.MethodPut, "/api/allocations", bytes.NewReader(payload))
		w := httptest.NewRecorder()

		handler.SaveAllocation(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var amount float64
		if err := db.QueryRow(`SELECT allocated_amount FROM psp_allocation WHERE psp = 'Stripe'`).Scan(&amount); err != nil {
			t.Fatalf("Expected persisted allocation: %v", err)
		}
		if amount != 500 {
			t.Errorf("Expected 500, got %v", amount)
		}
	})

	t.Run("deferred save returns 202 before the write lands", func(t *testing.T) {
		handler, db := setupHandler(t)

		payload := []byte(`{"psp": "Stripe", "date": "2024-06-01", "allocatedAmount": 500}`)
		req := httptest.NewRequest(http.MethodPut, "/api/allocations", bytes.NewReader(payload))
		w := httptest.NewRecorder()

		handler.SaveAllocation(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
		}

		// The debounced write lands shortly after.
		time.Sleep(50 * time.Millisecond)
		var amount float64
		if err := db.QueryRow(`SELECT allocated_amount FROM psp_allocation WHERE psp = 'Stripe'`).Scan(&amount); err != nil {
			t.Fatalf("Expected deferred write to land: %v", err)
		}
		if amount != 500 {
			t.Errorf("Expected 500, got %v", amount)
		}
	})

	t.Run("returns 400 for negative allocation", func(t *testing.T) {
		handler, _ := setupHandler(t)

		payload := []byte(`{"psp": "Stripe", "date": "2024-06-01", "allocatedAmount": -5}`)
		req := httptest.NewRequest(http.MethodPut, "/api/allocations", bytes.NewReader(payload))
		w := httptest.NewRecorder()

		handler.SaveAllocation(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
