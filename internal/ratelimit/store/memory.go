// Package store holds the attempt counters behind the rate limiter.
package store

import (
	"context"
	"sync"
	"time"

	"unibuild/internal/ratelimit"
)

// Memory is a process-local sliding window store.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	hits []time.Time
	span time.Duration
}

// NewMemory creates an empty store. now defaults to time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{windows: make(map[string]*window), now: now}
}

// Allow records one attempt for key when fewer than limit attempts fall in
// the trailing window.
func (m *Memory) Allow(_ context.Context, key string, limit int, span time.Duration) (ratelimit.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w := m.windows[key]
	if w == nil {
		w = &window{}
		m.windows[key] = w
	}
	w.span = span
	w.trim(now.Add(-span))

	res := ratelimit.Result{Limit: limit}
	if len(w.hits) >= limit {
		res.ResetAt = w.hits[0].Add(span)
		res.RetryAfter = res.ResetAt.Sub(now)
		return res, nil
	}

	w.hits = append(w.hits, now)
	res.Allowed = true
	res.Remaining = limit - len(w.hits)
	res.ResetAt = w.hits[0].Add(span)
	return res, nil
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// PurgeExpired drops keys with no attempt left inside their window.
func (m *Memory) PurgeExpired(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for key, w := range m.windows {
		w.trim(now.Add(-w.span))
		if len(w.hits) == 0 {
			delete(m.windows, key)
			n++
		}
	}
	return n, nil
}

// trim drops attempts at or before cutoff.
func (w *window) trim(cutoff time.Time) {
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}
	w.hits = w.hits[i:]
}
