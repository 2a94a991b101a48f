package validation

import (
	"strings"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
)

// ValidateSaveAllocation validates a PSP allocation request.
func ValidateSaveAllocation(req request.SaveAllocationRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PSP) == "" {
		errors["psp"] = "psp is required"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if req.AllocatedAmount < 0 {
		errors["allocatedAmount"] = "allocatedAmount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
