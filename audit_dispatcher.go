package goSession

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples audit delivery from the request path. Emit
// queues events onto a buffered channel and a single background goroutine
// feeds the sink, so a slow sink delays audit delivery, never Login or
// Authorize. With DropIfFull set, a full queue sheds the new event and
// counts it instead of blocking the caller.
type auditDispatcher struct {
	sink       AuditSink
	queue      chan AuditEvent
	quit       chan struct{}
	delivering sync.WaitGroup
	dropIfFull bool
	dropped    atomic.Uint64
	closed     atomic.Bool
	closeOnce  sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		queue:      make(chan AuditEvent, buffer),
		quit:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	d.delivering.Add(1)
	go d.deliver()
	return d
}

func (d *auditDispatcher) deliver() {
	defer d.delivering.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever Emit managed to enqueue before Close, so a clean
// shutdown loses no accepted event.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues an event for background delivery. After Close it is a no-op.
// In drop mode a full queue increments the drop counter instead of
// blocking; otherwise the caller waits for room, its context, or shutdown.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops intake, flushes the queue, and waits for the delivery
// goroutine to finish. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.delivering.Wait()
	})
}

// Dropped reports how many events were shed under the drop policy.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
