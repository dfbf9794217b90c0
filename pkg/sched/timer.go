package sched

import "time"

// OneShot is a cancellable single-fire timer whose callback runs on the
// loop. Scheduling while a fire is pending cancels the pending fire: at most
// one is outstanding at any time. The generation counter closes the race
// where the underlying timer has already fired and queued its callback when
// a new Schedule or Cancel arrives; the stale callback sees a newer
// generation and does nothing.
type OneShot struct {
	loop    *Loop
	timer   *time.Timer
	gen     uint64
	pending bool
}

// NewOneShot returns an idle one-shot timer bound to loop.
func NewOneShot(loop *Loop) *OneShot {
	return &OneShot{loop: loop}
}

// Schedule arranges for fn to run on the loop after d, replacing any
// previously scheduled fire. Must be called from the loop goroutine.
func (t *OneShot) Schedule(d time.Duration, fn func()) {
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.pending = true
	t.timer = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			if t.gen != gen {
				return
			}
			t.pending = false
			fn()
		})
	})
}

// Cancel discards any pending fire. Must be called from the loop goroutine.
func (t *OneShot) Cancel() {
	t.gen++
	t.pending = false
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Pending reports whether a fire is currently scheduled and not yet
// delivered. Must be called from the loop goroutine.
func (t *OneShot) Pending() bool {
	return t.pending
}

// Repeating is a cancellable periodic timer whose callback runs on the loop
// once per interval. Start replaces and cancels any running cycle.
type Repeating struct {
	loop *Loop
	gen  uint64
	stop chan struct{}
}

// NewRepeating returns an idle repeating timer bound to loop.
func NewRepeating(loop *Loop) *Repeating {
	return &Repeating{loop: loop}
}

// Start begins firing fn on the loop every interval, cancelling any prior
// cycle first. Must be called from the loop goroutine.
func (r *Repeating) Start(interval time.Duration, fn func()) {
	r.Stop()
	r.gen++
	gen := r.gen
	r.stop = make(chan struct{})
	stop := r.stop

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.loop.Post(func() {
					if r.gen == gen {
						fn()
					}
				})
			}
		}
	}()
}

// Stop cancels the running cycle, if any. Must be called from the loop
// goroutine.
func (r *Repeating) Stop() {
	r.gen++
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

// Active reports whether a cycle is currently running. Must be called from
// the loop goroutine.
func (r *Repeating) Active() bool {
	return r.stop != nil
}
