package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/response"
)

// timeTokenWindow is how long a time token stays valid. Internal callers
// generate a token per request, so a narrow window is enough to block replays
// of captured traffic.
const timeTokenWindow = 5 * time.Minute

// APIKeyMiddleware protects internal mutation endpoints. Callers must send the
// shared key in X-API-Key and a fresh HMAC time token in X-Time-Token.
// Returns 401 on missing or invalid credentials, and 500 when the server
// itself has no INTERNAL_API_KEY configured.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("INTERNAL_API_KEY")
		if expectedKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "server configuration error", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if !hmac.Equal([]byte(apiKey), []byte(expectedKey)) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !validateTimeToken(timeToken, expectedKey) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken creates a time token for the given API key: the current
// unix timestamp and an HMAC-SHA256 signature over it, joined by a dot.
func GenerateTimeToken(apiKey string) string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return timestamp + "." + signTimestamp(timestamp, apiKey)
}

func validateTimeToken(token, apiKey string) bool {
	timestamp, signature, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}

	issued, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := time.Since(time.Unix(issued, 0))
	if age > timeTokenWindow || age < -timeTokenWindow {
		return false
	}

	expected := signTimestamp(timestamp, apiKey)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func signTimestamp(timestamp, apiKey string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}
