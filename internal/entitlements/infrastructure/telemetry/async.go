// Package telemetry delivers purchase-funnel events to logs, metrics and a
// message broker without blocking the caller.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/overland/internal/entitlements/domain"
)

// DefaultBufferSize is the event queue length used when none is configured.
const DefaultBufferSize = 256

// AsyncTracker queues events for a background worker that forwards them to
// the next tracker. Track never blocks: a full queue drops the event.
type AsyncTracker struct {
	next   domain.Tracker
	logger *slog.Logger
	queue  chan domain.Event

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	done    chan struct{}
}

// NewAsyncTracker starts the worker goroutine. Call Close to drain it.
func NewAsyncTracker(next domain.Tracker, bufferSize int, logger *slog.Logger) *AsyncTracker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &AsyncTracker{
		next:   next,
		logger: logger,
		queue:  make(chan domain.Event, bufferSize),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Track enqueues event without blocking.
func (t *AsyncTracker) Track(ctx context.Context, event domain.Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		t.dropped.Add(1)
		return
	}
	select {
	case t.queue <- event:
	default:
		n := t.dropped.Add(1)
		t.logger.DebugContext(ctx, "telemetry queue full, event dropped", "event", event.Name, "dropped", n)
	}
}

// Dropped returns how many events were discarded.
func (t *AsyncTracker) Dropped() uint64 {
	return t.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to end.
func (t *AsyncTracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AsyncTracker) run() {
	defer close(t.done)
	for event := range t.queue {
		t.deliver(event)
	}
}

func (t *AsyncTracker) deliver(event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("telemetry sink panicked", "event", event.Name, "panic", r)
		}
	}()
	t.next.Track(context.Background(), event)
}

var _ domain.Tracker = (*AsyncTracker)(nil)
