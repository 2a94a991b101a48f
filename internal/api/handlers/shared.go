// Package handlers contains the HTTP handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
)

// parseJSON decodes the request body into the given payload type.
// Unknown fields are rejected so typos in field names surface as 400s
// instead of silently dropped values.
func parseJSON[T any](r *http.Request) (T, error) {
	var payload T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&payload)
	return payload, err
}
