package request

// OverrideRateRequest is the payload for a manual exchange-rate override.
// Scope selects which slice of the date's transactions the rate applies to:
// "USD", "EUR", or "OTHER" (every non-major currency at once).
type OverrideRateRequest struct {
	Scope string  `json:"scope"`
	Date  string  `json:"date"`
	Rate  float64 `json:"rate"`
}
