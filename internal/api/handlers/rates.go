package handlers

import (
	"errors"
	"net/http"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/response"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/service"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/validation"
)

// RateHandler handles HTTP requests for exchange-rate endpoints.
type RateHandler struct {
	rateService *service.RateService
}

// NewRateHandler creates a new RateHandler with the provided service dependency.
func NewRateHandler(rateService *service.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
	}
}

// Rates handles GET requests to list stored exchange rates within a window.
// Both auto-fetched and manual rates are returned; the source field tells
// them apart.
//
// Endpoint: GET /api/rates?start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with array of ExchangeRate
// Error: 400 Bad Request if the date window is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *RateHandler) Rates(w http.ResponseWriter, r *http.Request) {
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

	rates, err := h.rateService.GetRates(r.Context(), startDate, endDate)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRates.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rates)
}

// OverrideRate handles POST requests to apply a manual exchange-rate override.
// The scope decides the affected slice: USD, EUR, or every other non-major
// currency at once. Re-posting the current effective rate is a no-op and
// still returns 200.
//
// Endpoint: POST /api/rates/override
// Request Body: OverrideRateRequest (scope, date, rate)
// Response: 200 OK with the applied override
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the override fails
func (h *RateHandler) OverrideRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.OverrideRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateOverrideRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	scope := model.RateScope(req.Scope)
	if err := h.rateService.Override(r.Context(), scope, date, req.Rate); err != nil {
		if errors.Is(err, apperrors.ErrInvalidRate) || errors.Is(err, apperrors.ErrInvalidRateScope) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToOverrideRate.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"scope": scope,
		"pair":  scope.CurrencyPair(),
		"date":  req.Date,
		"rate":  req.Rate,
	})
}
