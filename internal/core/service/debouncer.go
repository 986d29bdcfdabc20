package service

import (
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

type (
	Timer interface {
		Stop() bool
	}

	// Clock schedules the debouncer callbacks. Tests substitute a manual one.
	Clock interface {
		AfterFunc(d time.Duration, fn func()) Timer
	}
)

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer runs only the last triggered callback once the trigger
// calls have been quiet for the wait duration.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	wait    time.Duration
	timer   Timer
	pending func()
	gen     uint64
	stopped bool
}

func NewDebouncer(wait time.Duration, clock Clock) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Debouncer{clock: clock, wait: wait}
}

// Trigger replaces the pending callback and restarts the quiet period.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Flush runs the pending callback now. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	fn := d.take()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending callback.
func (d *Debouncer) Cancel() {
	d.take()
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending callback and ignores further triggers.
func (d *Debouncer) Stop() {
	d.take()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) take() func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	fn := d.pending
	d.pending = nil
	return fn
}
