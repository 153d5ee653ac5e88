package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/requestcontext"
)

var (
	// ErrBufferFull is returned by Emit in async mode when the buffer is full.
	ErrBufferFull = errors.New("audit buffer full")
	// ErrListingUnsupported is returned by List when the store is write-only.
	ErrListingUnsupported = errors.New("audit store does not support listing")
)

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]audit.Event, error)
}

// Flusher is implemented by stores that buffer writes of their own.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Publisher stamps events with request metadata and hands them to a store,
// either inline or through a bounded buffer drained by one goroutine.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	onDrop func()

	bufferSize int
	events     chan audit.Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) { p.bufferSize = n }
}

// WithLogger sets the logger for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDropHook is called for every event dropped on a full buffer.
func WithDropHook(fn func()) Option {
	return func(p *Publisher) { p.onDrop = fn }
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.bufferSize > 0 {
		p.events = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records an event. Missing timestamp, category and request metadata
// are filled from the clock, the action and ctx.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = enrich(ctx, event)

	if p.events == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.store.Append(context.WithoutCancel(ctx), event)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.events <- event:
		return nil
	default:
		if p.onDrop != nil {
			p.onDrop()
		}
		p.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
		return ErrBufferFull
	}
}

// List reads a user's events back when the store supports it.
func (p *Publisher) List(ctx context.Context, userID string) ([]audit.Event, error) {
	l, ok := p.store.(Lister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	return l.ListByUser(ctx, userID)
}

// Close stops accepting buffered events and waits for the buffer to drain.
func (p *Publisher) Close() {
	if p.events == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	<-p.done
}

// Shutdown closes the publisher and then flushes the store, so events
// drained from the buffer reach the sink before its client is closed.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.Close()
	if f, ok := p.store.(Flusher); ok {
		return f.Flush(ctx)
	}
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event", "action", event.Action, "error", err)
		}
	}
}

func enrich(ctx context.Context, e audit.Event) audit.Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Category == "" {
		e.Category = audit.AuditEvent(e.Action).Category()
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.DeviceID == "" {
		e.DeviceID = requestcontext.DeviceID(ctx)
	}
	if e.DeviceLabel == "" {
		e.DeviceLabel = requestcontext.DeviceLabel(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	return e
}
