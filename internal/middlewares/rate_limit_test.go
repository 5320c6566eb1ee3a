package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(rate.Every(time.Minute), 2)
	limiter.now = func() time.Time { return now }

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(remoteAddr string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/user/password/reset", nil)
		r.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5002"))

	// Other clients keep their own bucket.
	assert.Equal(t, http.StatusNoContent, request("10.0.0.2:5000"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:5003"))

	now = now.Add(visitorTTL + time.Second)
	request("10.0.0.3:5000")
	assert.Len(t, limiter.visitors, 1)
}

func TestRateLimiterIgnoresForwardedHeaders(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 1)

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		r := httptest.NewRequest(http.MethodPost, "/api/user/password/reset", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		r.Header.Set("X-Forwarded-For", forwarded)
		r.Header.Set("X-Real-IP", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
