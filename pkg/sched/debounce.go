package sched

import "time"

// Debouncer coalesces bursts of triggers into a single callback invocation,
// fired once the configured delay has elapsed after the last trigger. Each
// trigger cancels and replaces the previously scheduled fire, so rapid
// link-state flapping or a run of volume key presses produces one settled
// recomputation instead of one per trigger. The delay is per-instance; each
// block configures its own.
type Debouncer struct {
	timer *OneShot
	delay time.Duration
	fn    func()
}

// NewDebouncer wraps fn with a settle delay. A zero or negative delay makes
// Trigger call fn synchronously.
func NewDebouncer(loop *Loop, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		timer: NewOneShot(loop),
		delay: delay,
		fn:    fn,
	}
}

// Trigger schedules the wrapped callback delay from now, replacing any
// outstanding schedule. Must be called from the loop goroutine.
func (d *Debouncer) Trigger() {
	if d.delay <= 0 {
		d.fn()
		return
	}
	d.timer.Schedule(d.delay, d.fn)
}

// Cancel discards any pending fire without running it. Must be called from
// the loop goroutine.
func (d *Debouncer) Cancel() {
	d.timer.Cancel()
}

// Pending reports whether a fire is scheduled. Must be called from the loop
// goroutine.
func (d *Debouncer) Pending() bool {
	return d.timer.Pending()
}
