package handlers

import (
	"net/http"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/response"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/validation"
)

// DailyHandler handles HTTP requests for the daily reconciliation summary.
// It serves as the HTTP layer adapter, parsing the date window and
// reconciliation flags and delegating to the aggregation service.
type DailyHandler struct {
	aggregationService *service.AggregationService
}

// NewDailyHandler creates a new DailyHandler with the provided service dependency.
func NewDailyHandler(aggregationService *service.AggregationService) *DailyHandler {
	return &DailyHandler{
		aggregationService: aggregationService,
	}
}

// DailyGroups handles GET requests for per-day transaction summaries.
// Each row carries native and converted totals, per-currency breakdowns,
// average applied rates, and, when reconcile=true, the authoritative net
// balance from the ledger where one is available.
//
// Endpoint: GET /api/daily?start=YYYY-MM-DD&end=YYYY-MM-DD&reconcile=true&refresh=true
// Response: 200 OK with array of DailyGroup
// Error: 400 Bad Request if the date window is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *DailyHandler) DailyGroups(w http.ResponseWriter, r *http.Request) {
	startDate, err := validation.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid start date", err.Error())
		return
	}
	endDate, err := validation.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid end date", err.Error())
		return
	}
	if err := validation.ValidateDateRange(startDate, endDate); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	reconcile := r.URL.Query().Get("reconcile") == "true"
	refresh := r.URL.Query().Get("refresh") == "true"

	groups, err := h.aggregationService.GetDailyGroups(r.Context(), startDate, endDate, reconcile, refresh)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDailyGroups.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, groups)
}
