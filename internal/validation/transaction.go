package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
)

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - category: Must be one of: DEP, WD
//   - amount: Must be non-negative (sign is applied at aggregation time)
//   - currency: Must be present
//
// Optional fields (validated if provided):
//   - exchangeRate: Must be positive if provided
//   - convertedAmount: Must be non-negative if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Category) == "" {
		errors["category"] = "category is required"
	} else if !model.Category(req.Category).Valid() {
		errors["category"] = fmt.Sprintf("invalid category: %s", req.Category)
	}

	if req.Amount < 0 {
		errors["amount"] = "amount cannot be negative"
	}

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	}

	if req.Channel != "" && !model.Channel(req.Channel).Valid() {
		errors["channel"] = fmt.Sprintf("invalid channel: %s", req.Channel)
	}

	if req.ExchangeRate < 0 {
		errors["exchangeRate"] = "exchangeRate must be positive"
	}

	if req.ConvertedAmount < 0 {
		errors["convertedAmount"] = "convertedAmount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.Date != nil {
		if strings.TrimSpace(*req.Date) == "" {
			errors["date"] = "date is required"
		} else if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}

	if req.Category != nil && !model.Category(*req.Category).Valid() {
		errors["category"] = fmt.Sprintf("invalid category: %s", *req.Category)
	}

	if req.Amount != nil && *req.Amount < 0 {
		errors["amount"] = "amount cannot be negative"
	}

	if req.Currency != nil && strings.TrimSpace(*req.Currency) == "" {
		errors["currency"] = "currency cannot be empty"
	}

	if req.Channel != nil && !model.Channel(*req.Channel).Valid() {
		errors["channel"] = fmt.Sprintf("invalid channel: %s", *req.Channel)
	}

	if req.ExchangeRate != nil && *req.ExchangeRate <= 0 {
		errors["exchangeRate"] = "exchangeRate must be positive"
	}

	if req.ConvertedAmount != nil && *req.ConvertedAmount < 0 {
		errors["convertedAmount"] = "convertedAmount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
