// Package store provides the durable key/value backends behind the session
// store: memory, redis, postgres and an unavailable no-op backend.
package store

import (
	"context"
	"sync"
	"time"

	"unibuild/pkg/platform/sentinel"
)

type namespaceEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// Memory keeps namespaces in process. Expiry is checked lazily on read.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]*namespaceEntry
	clock func() time.Time
}

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory)

// WithMemoryClock sets the clock used for expiry.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory creates an empty in-process backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		data:  make(map[string]*namespaceEntry),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.data[namespace]
	if !ok || m.expired(entry) {
		return "", sentinel.ErrNotFound
	}
	v, ok := entry.values[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (m *Memory) SetMany(_ context.Context, namespace string, values map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[namespace]
	if !ok || m.expired(entry) {
		entry = &namespaceEntry{values: make(map[string]string, len(values))}
		m.data[namespace] = entry
	}
	for k, v := range values {
		entry.values[k] = v
	}
	if ttl > 0 {
		entry.expiresAt = m.clock().Add(ttl)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(entry.values, k)
	}
	if len(entry.values) == 0 {
		delete(m.data, namespace)
	}
	return nil
}

// PurgeExpired drops expired namespaces and returns how many were removed.
func (m *Memory) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for ns, entry := range m.data {
		if m.expired(entry) {
			delete(m.data, ns)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Health(context.Context) error { return nil }

func (m *Memory) expired(e *namespaceEntry) bool {
	return !e.expiresAt.IsZero() && !m.clock().Before(e.expiresAt)
}
