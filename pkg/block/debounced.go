package block

import (
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// Debounced wraps a block so every refresh trigger, whether a periodic tick
// or an addressed dispatch, settles through a fudge delay: a burst of
// triggers (volume scroll clicks, link-state flapping) produces one
// recomputation once the burst goes quiet, instead of one per trigger.
type Debounced struct {
	inner Block
	deb   *sched.Debouncer
}

// WithFudge wraps b with the given settle delay. A non-positive delay
// returns b unchanged.
func WithFudge(loop *sched.Loop, b Block, fudge time.Duration) Block {
	if fudge <= 0 {
		return b
	}
	return &Debounced{inner: b, deb: sched.NewDebouncer(loop, fudge, b.Update)}
}

// Name returns the wrapped block's tag, so addressed dispatch reaches the
// wrapper.
func (d *Debounced) Name() string { return d.inner.Name() }

// Query returns the wrapped block's last rendered text.
func (d *Debounced) Query() string { return d.inner.Query() }

// Update schedules a settled recomputation, replacing any pending one.
// Must be called from the loop goroutine.
func (d *Debounced) Update() { d.deb.Trigger() }

// Attach forwards the change observer to the wrapped block, which is the
// one calling Set.
func (d *Debounced) Attach(notify func()) {
	if a, ok := d.inner.(Attacher); ok {
		a.Attach(notify)
	}
}
