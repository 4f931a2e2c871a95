package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadolabs/taskqueue/internal/logger"
	"github.com/mercadolabs/taskqueue/internal/metrics"
)

func init() {
	logger.Init("error", false)
}

func TestRateLimiter_AllowWithinBudget(t *testing.T) {
	rl := NewRateLimiter(5)
	for i := 0; i < 5; i++ {
		require.True(t, rl.Allow())
	}
	assert.False(t, rl.Allow())
}

func TestRateLimiter_DefaultsWhenNonPositive(t *testing.T) {
	rl := NewRateLimiter(0)
	assert.Equal(t, float64(1000), rl.maxTokens)
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	metrics.RateLimitRejectionsTotal.Reset()

	handler := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "1", w2.Header().Get("Retry-After"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RateLimitRejectionsTotal.WithLabelValues("global")))
}

func TestClientRateLimit_TracksPerClient(t *testing.T) {
	metrics.RateLimitRejectionsTotal.Reset()

	handler := ClientRateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	reqA := httptest.NewRequest(http.MethodGet, "/", nil)
	reqA.Header.Set("X-Forwarded-For", "1.1.1.1")
	reqB := httptest.NewRequest(http.MethodGet, "/", nil)
	reqB.Header.Set("X-Forwarded-For", "2.2.2.2")

	wA := httptest.NewRecorder()
	handler.ServeHTTP(wA, reqA)
	assert.Equal(t, http.StatusOK, wA.Code)

	wB := httptest.NewRecorder()
	handler.ServeHTTP(wB, reqB)
	assert.Equal(t, http.StatusOK, wB.Code, "a different client must have its own budget")

	wA2 := httptest.NewRecorder()
	handler.ServeHTTP(wA2, reqA)
	assert.Equal(t, http.StatusTooManyRequests, wA2.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RateLimitRejectionsTotal.WithLabelValues("client")))
}

func TestClientRateLimiter_GetLimiterReusesInstance(t *testing.T) {
	crl := NewClientRateLimiter(10)
	a := crl.GetLimiter("client-a")
	b := crl.GetLimiter("client-a")
	assert.Same(t, a, b)
}
