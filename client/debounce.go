package client

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiescence window for outbound code updates.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer coalesces rapid Set calls into a single trailing-edge emit: fn
// receives the latest value once input has paused for the full window.
// After Stop the function never fires again.
type Debouncer struct {
	window time.Duration
	fn     func(string)

	mu      sync.Mutex
	timer   *time.Timer
	latest  string
	stopped bool
}

func NewDebouncer(window time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.latest = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.emit)
}

func (d *Debouncer) emit() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	value := d.latest
	d.mu.Unlock()
	d.fn(value)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
