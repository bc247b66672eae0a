package shell

import (
	"sync"
	"time"
)

// DefaultDebounce coalesces bursts of display events into one
// re-render.
const DefaultDebounce = 150 * time.Millisecond

// debouncer runs fn once per burst of triggers, trailing edge.
type debouncer struct {
	clock Clock
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer Timer
}

func newDebouncer(clock Clock, delay time.Duration, fn func()) *debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &debouncer{clock: clock, delay: delay, fn: fn}
}

// Trigger schedules fn after the delay, resetting any pending run so
// at most one fires per burst.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Stop cancels any pending run.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
