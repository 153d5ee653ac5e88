// Package ratelimit throttles repeated sign-in and registration attempts
// from one client address with a sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"unibuild/internal/platform/metrics"
	dErrors "unibuild/pkg/domain-errors"
	"unibuild/pkg/platform/httputil"
	"unibuild/pkg/platform/middleware/metadata"
	"unibuild/pkg/requestcontext"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set when the attempt was refused.
	RetryAfter time.Duration
}

// Store records attempts per key inside a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// DenyFunc writes the response for a refused attempt.
type DenyFunc func(w http.ResponseWriter, r *http.Request, res Result)

// Limiter is HTTP middleware that counts attempts per client IP.
type Limiter struct {
	store   Store
	class   string
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	deny    DenyFunc
}

type Option func(*Limiter)

func WithLogger(l *slog.Logger) Option {
	return func(lm *Limiter) {
		if l != nil {
			lm.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(lm *Limiter) { lm.metrics = m }
}

// WithDeny replaces the default JSON 429 body.
func WithDeny(fn DenyFunc) Option {
	return func(lm *Limiter) {
		if fn != nil {
			lm.deny = fn
		}
	}
}

// New creates a Limiter allowing limit attempts per window for each client
// address. A nil store or a non-positive limit disables it.
func New(store Store, class string, limit int, window time.Duration, opts ...Option) *Limiter {
	lm := &Limiter{
		store:  store,
		class:  class,
		limit:  limit,
		window: window,
		logger: slog.Default(),
		deny:   writeTooMany,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(lm)
		}
	}
	return lm
}

// Enabled reports whether attempts are counted at all.
func (lm *Limiter) Enabled() bool {
	return lm != nil && lm.store != nil && lm.limit > 0 && lm.window > 0
}

// Key is the storage key for one client address.
func (lm *Limiter) Key(ip string) string {
	return "ratelimit:" + lm.class + ":" + ip
}

// Handler wraps next. Store failures let the request through.
func (lm *Limiter) Handler(next http.Handler) http.Handler {
	if !lm.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = metadata.ClientIPFromRequest(r)
		}

		res, err := lm.store.Allow(ctx, lm.Key(ip), lm.limit, lm.window)
		if err != nil {
			lm.logger.WarnContext(ctx, "rate limit check failed",
				"class", lm.class,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		setHeaders(w, res)
		if !res.Allowed {
			lm.metrics.IncRateLimited(lm.class)
			lm.logger.InfoContext(ctx, "attempt throttled",
				"class", lm.class,
				"retry_after", res.RetryAfter.String(),
			)
			lm.deny(w, r, res)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below one.
func RetryAfterSeconds(res Result) int {
	secs := int(math.Ceil(res.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func setHeaders(w http.ResponseWriter, res Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
	if !res.Allowed {
		h.Set("Retry-After", strconv.Itoa(RetryAfterSeconds(res)))
	}
}

func writeTooMany(w http.ResponseWriter, _ *http.Request, res Result) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many attempts, retry in %d seconds", RetryAfterSeconds(res))))
}
