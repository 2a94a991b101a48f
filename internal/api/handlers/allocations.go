package handlers

import (
	"net/http"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/response"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/validation"
)

// AllocationHandler handles HTTP requests for PSP settlement allocations.
type AllocationHandler struct {
	rolloverService *service.RolloverService
}

// NewAllocationHandler creates a new AllocationHandler with the provided service dependency.
func NewAllocationHandler(rolloverService *service.RolloverService) *AllocationHandler {
	return &AllocationHandler{
		rolloverService: rolloverService,
	}
}

// Allocations handles GET requests to list one date's PSP settlement rows:
// net amount, allocated amount, rollover, and settlement status per PSP.
// An in-flight debounced edit wins over the stored amount, so the operator
// always sees the value they just typed.
//
// Endpoint: GET /api/allocations?date=YYYY-MM-DD
// Response: 200 OK with array of PSPAllocation
// Error: 400 Bad Request if the date is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *AllocationHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	date, err := validation.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	allocations, err := h.rolloverService.Allocations(r.Context(), date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAllocations.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, allocations)
}

// SaveAllocation handles PUT requests to record an operator's allocated
// amount for one PSP and date. Writes are debounced so rapid edits collapse
// into one; flush=true forces the write through immediately. A previously
// failed deferred write for the same row is reported here as 500 so the
// failure is not silently swallowed.
//
// Endpoint: PUT /api/allocations
// Request Body: SaveAllocationRequest (psp, date, allocatedAmount, flush)
// Response: 202 Accepted when the write is deferred, 200 OK when flushed
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if a write fails
func (h *AllocationHandler) SaveAllocation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveAllocationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSaveAllocation(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	// A write that failed in the background is surfaced on this interaction.
	// The new edit is still recorded first so the operator's value survives.
	prev := h.rolloverService.PendingError(req.PSP, date)

	if err := h.rolloverService.Save(r.Context(), req.PSP, date, req.AllocatedAmount, req.Flush); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrAllocationSaveFailed.Error(), err.Error())
		return
	}

	if prev != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrAllocationSaveFailed.Error(), prev.Error())
		return
	}

	status := http.StatusAccepted
	if req.Flush {
		status = http.StatusOK
	}
	response.RespondJSON(w, status, map[string]interface{}{
		"psp":             req.PSP,
		"date":            req.Date,
		"allocatedAmount": req.AllocatedAmount,
	})
}
