// Package fxprovider fetches exchange rates from the external market-data
// service. A failed fetch is reported as an error, never as a zero rate.
package fxprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/apperrors"
)

// Client defines the interface for fetching exchange rates.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	FetchRate(ctx context.Context, base, quote string, date time.Time) (float64, error)
}

// HTTPClient fetches daily reference rates over HTTP. Transient failures are
// retried with bounded exponential backoff before being surfaced.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a rate provider client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchRate returns the rate converting one unit of base into quote on the
// given date.
func (c *HTTPClient) FetchRate(ctx context.Context, base, quote string, date time.Time) (float64, error) {
	url := fmt.Sprintf("%s/%s?base=%s&symbols=%s", c.baseURL, date.UTC().Format("2006-01-02"), base, quote)

	var rate float64
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, err := c.fetchOnce(ctx, url, quote)
		if err != nil {
			return retry.RetryableError(err)
		}
		rate = fetched
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s/%s on %s: %v", apperrors.ErrRateFetchFailed, base, quote, date.Format("2006-01-02"), err)
	}
	return rate, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context, url, quote string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return 0, err
	}

	rate, ok := response.Rates[quote]
	if !ok {
		return 0, fmt.Errorf("no rate for %s in response", quote)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("provider returned non-positive rate %v", rate)
	}
	return rate, nil
}
