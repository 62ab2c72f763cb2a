package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces event bursts: every Trigger restarts the quiet-period
// timer, and only the final path of a burst reaches the callback.
type Debouncer struct {
	quiet time.Duration
	fire  func(path string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer firing callback once per quiet period.
func NewDebouncer(quiet time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{quiet: quiet, fire: callback}
}

// Trigger records an event. The callback fires with this path unless a
// later Trigger supersedes it within the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.quiet, func() {
		// A panicking callback must not kill the watcher's timer goroutine.
		defer func() {
			if r := recover(); r != nil {
				slog.Error("debounced callback panicked", slog.Any("error", r))
			}
		}()

		d.fire(path)
	})
}

// Stop cancels a pending callback, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
