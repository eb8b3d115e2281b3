// Package watcher watches thread source files and signals the UI to
// rebuild when they change. Events are debounced because exports are
// rewritten line by line and a single refresh produces a burst of
// writes.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for file events.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback. When
// Trigger is called multiple times within the window, only the last
// callback runs after the window elapses.
type Debouncer struct {
	window time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	seq    uint64
}

// NewDebouncer creates a Debouncer. A zero window means DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window == 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Trigger schedules the callback after the window. A Trigger arriving
// before the window elapses cancels the previously scheduled callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// Only the most recently scheduled callback may run. Stop()
		// returning false after the timer fired would otherwise let a
		// stale callback race the fresh one.
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			callback()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
