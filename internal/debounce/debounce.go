// Package debounce collapses bursts of values into the latest one.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent submitted value once no newer value
// has arrived for the configured window. Earlier values in the same window
// are dropped.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New creates a Debouncer that calls fn on its own goroutine.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		window: window,
		fn:     fn,
	}
}

// Submit schedules v, replacing any value still waiting in the window.
// It returns false once the debouncer has been stopped.
func (d *Debouncer[T]) Submit(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A timer that already fired may still be waiting on the lock
		// after a newer Submit; the generation check drops it.
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.fn(v)
	})
	return true
}

// Pending reports whether a value is waiting for its window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop drops any pending value and rejects further submissions.
// Calling Stop more than once is safe.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
