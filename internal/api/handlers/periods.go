package handlers

import (
	"errors"
	"net/http"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/response"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/validation"
)

// PeriodHandler handles HTTP requests for period breakdown endpoints.
type PeriodHandler struct {
	periodService *service.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler with the provided service dependency.
func NewPeriodHandler(periodService *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
	}
}

// Breakdown handles GET requests for merged period totals. Live aggregates
// from the transaction table are merged with stored snapshots; a loaded zero
// in the live data wins over a stale snapshot value.
//
// Endpoint: GET /api/periods?granularity=daily|monthly|annual&start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with array of FinancialPeriodData
// Error: 400 Bad Request if the granularity or date window is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *PeriodHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	granularity := model.Granularity(r.URL.Query().Get("granularity"))
	if granularity == "" {
		granularity = model.GranularityDaily
	}

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

	rows, err := h.periodService.Breakdown(r.Context(), granularity, startDate, endDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidGranularity) || errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePeriods.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rows)
}
