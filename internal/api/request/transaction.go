// Package request defines the JSON request payloads accepted by the API.
package request

// CreateTransactionRequest is the payload for creating a transaction.
// Amount is the non-negative amount in the source currency; the category
// determines the sign at aggregation time.
type CreateTransactionRequest struct {
	Date            string  `json:"date"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PSP             string  `json:"psp,omitempty"`
	Channel         string  `json:"channel,omitempty"`
	ExchangeRate    float64 `json:"exchangeRate,omitempty"`
	ConvertedAmount float64 `json:"convertedAmount,omitempty"`
}

// UpdateTransactionRequest is the payload for updating a transaction.
// All fields are optional; only provided fields are changed.
type UpdateTransactionRequest struct {
	Date            *string  `json:"date,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
	PSP             *string  `json:"psp,omitempty"`
	Channel         *string  `json:"channel,omitempty"`
	ExchangeRate    *float64 `json:"exchangeRate,omitempty"`
	ConvertedAmount *float64 `json:"convertedAmount,omitempty"`
}
