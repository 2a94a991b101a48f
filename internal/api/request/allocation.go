package request

// SaveAllocationRequest is the payload for entering a PSP settlement
// allocation. Writes are debounced; Flush forces an immediate write, used
// when the operator leaves the input field.
type SaveAllocationRequest struct {
	PSP             string  `json:"psp"`
	Date            string  `json:"date"`
	AllocatedAmount float64 `json:"allocatedAmount"`
	Flush           bool    `json:"flush,omitempty"`
}
