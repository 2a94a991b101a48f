package fxprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_FetchRate(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns the quoted rate on success", func(t *testing.T) {
		var gotPath, gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			//nolint:errcheck // Test server - write failure would fail the assertion below
			w.Write([]byte(`{"base": "USD", "date": "2024-06-01", "rates": {"TRY": 32.15}}`))
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		rate, err := client.FetchRate(context.Background(), "USD", "TRY", date)
		if err != nil {
			t.Fatalf("FetchRate failed: %v", err)
		}
		if rate != 32.15 {
			t.Errorf("Expected 32.15, got %v", rate)
		}
		if gotPath != "/2024-06-01" {
			t.Errorf("Expected date path, got %s", gotPath)
		}
		if gotQuery != "base=USD&symbols=TRY" {
			t.Errorf("Unexpected query: %s", gotQuery)
		}
	})

	t.Run("rejects a response missing the quote currency", func(t *testing.T) {
		client := NewHTTPClient("http://unused")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			//nolint:errcheck // Test server
			w.Write([]byte(`{"base": "USD", "rates": {"EUR": 0.9}}`))
		}))
		defer server.Close()

		if _, err := client.fetchOnce(context.Background(), server.URL, "TRY"); err == nil {
			t.Error("Expected error for missing quote rate")
		}
	})

	t.Run("rejects a non-positive rate", func(t *testing.T) {
		client := NewHTTPClient("http://unused")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			//nolint:errcheck // Test server
			w.Write([]byte(`{"base": "USD", "rates": {"TRY": 0}}`))
		}))
		defer server.Close()

		if _, err := client.fetchOnce(context.Background(), server.URL, "TRY"); err == nil {
			t.Error("Expected error for zero rate")
		}
	})

	t.Run("rejects a non-200 status", func(t *testing.T) {
		client := NewHTTPClient("http://unused")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		if _, err := client.fetchOnce(context.Background(), server.URL, "TRY"); err == nil {
			t.Error("Expected error for 502 response")
		}
	})

	// WHY: a transient first failure must be retried rather than surfaced.
	// The provider has brief outages around its daily publication time.
	t.Run("retries a transient failure", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			//nolint:errcheck // Test server
			w.Write([]byte(`{"base": "USD", "rates": {"TRY": 30}}`))
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		rate, err := client.FetchRate(context.Background(), "USD", "TRY", date)
		if err != nil {
			t.Fatalf("FetchRate failed after retry: %v", err)
		}
		if rate != 30 {
			t.Errorf("Expected 30, got %v", rate)
		}
		if calls != 2 {
			t.Errorf("Expected 2 calls, got %d", calls)
		}
	})
}
