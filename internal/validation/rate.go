package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// ValidateOverrideRate validates a manual exchange-rate override request.
// A rate that is zero or negative is rejected here, at the boundary; it is
// never stored.
func ValidateOverrideRate(req request.OverrideRateRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Scope) == "" {
		errors["scope"] = "scope is required"
	} else if !model.RateScope(req.Scope).Valid() {
		errors["scope"] = fmt.Sprintf("invalid scope: %s", req.Scope)
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if req.Rate <= 0 {
		errors["rate"] = "rate must be greater than zero"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
