package ratelimit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/internal/platform/metrics"
	"unibuild/internal/ratelimit"
	"unibuild/internal/ratelimit/store"
	"unibuild/pkg/requestcontext"
	"unibuild/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func post(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLimiterThrottlesPerClientIP(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	lm := ratelimit.New(store.NewMemory(nil), "auth", 2, time.Minute,
		ratelimit.WithLogger(discard()),
		ratelimit.WithMetrics(m),
	)
	h := lm.Handler(okHandler)

	first := post(h, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusNoContent, post(h, "10.0.0.1").Code)

	denied := post(h, "10.0.0.1")
	testutil.AssertStatusAndError(t, denied, http.StatusTooManyRequests, "rate_limited")
	assert.NotEmpty(t, denied.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RateLimited.WithLabelValues("auth")))

	assert.Equal(t, http.StatusNoContent, post(h, "10.0.0.2").Code, "other clients are unaffected")
}

func TestLimiterFailsOpen(t *testing.T) {
	h := ratelimit.New(failingStore{}, "auth", 1, time.Minute, ratelimit.WithLogger(discard())).Handler(okHandler)
	for range 3 {
		assert.Equal(t, http.StatusNoContent, post(h, "10.0.0.1").Code)
	}
}

func TestLimiterDisabled(t *testing.T) {
	tests := []struct {
		name string
		lm   *ratelimit.Limiter
	}{
		{name: "nil store", lm: ratelimit.New(nil, "auth", 5, time.Minute)},
		{name: "zero limit", lm: ratelimit.New(store.NewMemory(nil), "auth", 0, time.Minute)},
		{name: "zero window", lm: ratelimit.New(store.NewMemory(nil), "auth", 5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, tt.lm.Enabled())
			rec := post(tt.lm.Handler(okHandler), "10.0.0.1")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		})
	}
}

func TestLimiterCustomDeny(t *testing.T) {
	var got ratelimit.Result
	lm := ratelimit.New(store.NewMemory(nil), "auth", 1, time.Minute,
		ratelimit.WithLogger(discard()),
		ratelimit.WithDeny(func(w http.ResponseWriter, _ *http.Request, res ratelimit.Result) {
			got = res
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, "slow down")
		}),
	)
	h := lm.Handler(okHandler)
	post(h, "10.0.0.1")
	rec := post(h, "10.0.0.1")

	assert.Equal(t, "slow down", rec.Body.String())
	assert.False(t, got.Allowed)
	assert.Equal(t, 1, got.Limit)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, ratelimit.RetryAfterSeconds(ratelimit.Result{}))
	assert.Equal(t, 1, ratelimit.RetryAfterSeconds(ratelimit.Result{RetryAfter: 300 * time.Millisecond}))
	assert.Equal(t, 31, ratelimit.RetryAfterSeconds(ratelimit.Result{RetryAfter: 30*time.Second + time.Millisecond}))
}

func TestKey(t *testing.T) {
	lm := ratelimit.New(nil, "auth", 1, time.Minute)
	assert.Equal(t, "ratelimit:auth:203.0.113.9", lm.Key("203.0.113.9"))
}
