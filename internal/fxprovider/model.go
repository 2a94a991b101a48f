package fxprovider

// Response is the raw payload returned by the rate provider for one
// (base, date) query.
type Response struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}
