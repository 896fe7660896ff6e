// Package ringchan provides a bounded channel-like buffer with
// overwrite-oldest semantics, used to hand events from a producer that must
// never block (a radio event callback) to a consumer that drains at its own
// pace (a polling wait loop).
package ringchan

import "sync/atomic"

// RingChannel wraps a buffered channel so that producers always succeed:
// when the buffer is full, the oldest element is discarded.
type RingChannel[T any] struct {
	ch      chan T
	metrics Metrics
}

// Metrics tracks ring channel activity. All counters are updated atomically.
type Metrics struct {
	Written     int64
	Overwritten int64
	Processed   int64
}

// New creates a RingChannel with the given capacity. Panics if capacity <= 0.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// ForceSend inserts an item without ever blocking, discarding the oldest
// buffered element if needed. Returns true when an element was discarded.
func (rc *RingChannel[T]) ForceSend(v T) bool {
	dropped := false

	select {
	case rc.ch <- v:
		atomic.AddInt64(&rc.metrics.Written, 1)
	default:
		select {
		case <-rc.ch: // drop oldest
			atomic.AddInt64(&rc.metrics.Overwritten, 1)
			dropped = true
		default:
		}
		rc.ch <- v
		atomic.AddInt64(&rc.metrics.Written, 1)
	}

	return dropped
}

// TryReceive attempts a non-blocking receive.
// Returns (zero, false) if no value is ready.
func (rc *RingChannel[T]) TryReceive() (v T, ok bool) {
	select {
	case v, ok = <-rc.ch:
		if ok {
			atomic.AddInt64(&rc.metrics.Processed, 1)
		}
		return
	default:
		var zero T
		return zero, false
	}
}

// Drain receives all currently buffered values without blocking.
func (rc *RingChannel[T]) Drain() []T {
	var out []T
	for {
		v, ok := rc.TryReceive()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// C returns the underlying receive-only channel. Reads through C bypass the
// Processed counter.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Cap returns the channel capacity.
func (rc *RingChannel[T]) Cap() int {
	return cap(rc.ch)
}

// Close closes the underlying channel. After Close, ForceSend panics.
func (rc *RingChannel[T]) Close() {
	close(rc.ch)
}

// GetMetrics returns a snapshot of the current counters.
func (rc *RingChannel[T]) GetMetrics() Metrics {
	return Metrics{
		Written:     atomic.LoadInt64(&rc.metrics.Written),
		Overwritten: atomic.LoadInt64(&rc.metrics.Overwritten),
		Processed:   atomic.LoadInt64(&rc.metrics.Processed),
	}
}
