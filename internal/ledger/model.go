package ledger

// SummaryResponse is the raw payload of the authoritative daily-summary
// endpoint. Balances maps "YYYY-MM-DD" to the gross balance in the reporting
// currency. A date absent from the map means "not available", not zero.
type SummaryResponse struct {
	Balances map[string]float64 `json:"balances"`
}
