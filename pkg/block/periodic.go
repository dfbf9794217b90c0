package block

import (
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// Periodic drives a recomputation on a schedule: once synchronously at
// start (so the block has content before the first delay elapses), once
// after the initial delay, then unconditionally every period.
type Periodic struct {
	delayed *sched.OneShot
	ticks   *sched.Repeating
}

// StartPeriodic begins the schedule and returns a handle for stopping it.
// An initial delay of zero skips straight to the periodic cycle. Must be
// called from the loop goroutine.
func StartPeriodic(loop *sched.Loop, initial, period time.Duration, fn func()) *Periodic {
	p := &Periodic{
		delayed: sched.NewOneShot(loop),
		ticks:   sched.NewRepeating(loop),
	}
	fn()
	if initial > 0 {
		p.delayed.Schedule(initial, func() {
			fn()
			p.ticks.Start(period, fn)
		})
	} else {
		p.ticks.Start(period, fn)
	}
	return p
}

// Stop cancels the schedule. Must be called from the loop goroutine.
func (p *Periodic) Stop() {
	p.delayed.Cancel()
	p.ticks.Stop()
}

// UntilNextMinute returns the time remaining from t to the next minute
// boundary plus a small skew allowance, so a clock scheduled with it ticks
// just after each minute rolls over instead of drifting from construction
// time.
func UntilNextMinute(t time.Time, skew time.Duration) time.Duration {
	next := t.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(t) + skew
}
