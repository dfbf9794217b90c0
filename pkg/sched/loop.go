// Package sched provides the single-goroutine event loop and the timer
// primitives that drive pulsebar. Every block callback, timer firing, and
// external-command completion runs serialized on one Loop, so block state
// never needs locking. Timer types enforce the "scheduling replaces and
// cancels the previous timer" invariant themselves rather than relying on
// caller discipline.
package sched

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Loop executes posted callbacks one at a time on a single goroutine.
// Callbacks run to completion without preemption; nothing may block inside
// one. All OneShot, Repeating, and Debouncer methods must be called from the
// loop goroutine (i.e., from inside a posted callback) except the initial
// wiring before Run starts.
type Loop struct {
	ch   chan func()
	done chan struct{}
}

// NewLoop returns a Loop ready to accept posts. Run must be called for
// posted callbacks to execute.
func NewLoop() *Loop {
	return &Loop{
		ch:   make(chan func(), 128),
		done: make(chan struct{}),
	}
}

// Post enqueues fn for execution on the loop goroutine. It is safe to call
// from any goroutine. Posts after the loop has stopped are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.ch <- fn:
	case <-l.done:
	}
}

// Run executes posted callbacks until ctx is cancelled. A panic in any
// callback is unrecoverable: Run stops the loop and returns a fault error so
// the caller can run teardown and exit, rather than leaving a half-updated
// engine running.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback fault: %v\n%s", r, debug.Stack())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.ch:
			fn()
		}
	}
}

// Stopped reports whether the loop has exited. Mainly useful in tests.
func (l *Loop) Stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
