// Package ledger consumes the authoritative server-side daily summary
// endpoint. Dates are requested in one batched call to bound request count.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SummaryFetcher defines the interface for fetching authoritative daily
// summaries. This interface enables dependency injection and testing with
// mock implementations.
type SummaryFetcher interface {
	FetchDailySummaries(ctx context.Context, dates []time.Time) (map[string]float64, error)
}

// Client fetches daily summaries from the treasury ledger service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a ledger client. apiKey may be empty when the ledger
// endpoint is unauthenticated.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchDailySummaries requests the gross balance for every given date in a
// single batched call. The result maps "YYYY-MM-DD" to the balance; dates
// the ledger has no data for are simply absent.
func (c *Client) FetchDailySummaries(ctx context.Context, dates []time.Time) (map[string]float64, error) {
	if len(dates) == 0 {
		return map[string]float64{}, nil
	}

	joined := make([]string, len(dates))
	for i, d := range dates {
		joined[i] = d.UTC().Format("2006-01-02")
	}

	queryURL := fmt.Sprintf("%s/api/daily-summary?dates=%s", c.baseURL, url.QueryEscape(strings.Join(joined, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response SummaryResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	// A missing or malformed balances object degrades to "no dates
	// available" rather than failing the reconciliation.
	if response.Balances == nil {
		return map[string]float64{}, nil
	}
	return response.Balances, nil
}
