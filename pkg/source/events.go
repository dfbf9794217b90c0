package source

import "gitlab.com/tinyland/lab/pulsebar/pkg/sched"

// Events is an explicit registration table mapping event names to handler
// lists for one external source, plus a one-time readiness notification for
// sources that must finish a handshake before subscriptions are valid.
// Handler state is loop-confined: Subscribe, OnReady, and handler execution
// all happen on the engine loop; Emit and SetReady may be called from any
// goroutine.
type Events struct {
	loop     *sched.Loop
	handlers map[string][]func(string)
	ready    bool
	readyFns []func()
}

// NewEvents returns an empty table bound to loop.
func NewEvents(loop *sched.Loop) *Events {
	return &Events{
		loop:     loop,
		handlers: make(map[string][]func(string)),
	}
}

// Subscribe registers fn for the named event. Must be called from the loop
// goroutine (or before the loop starts).
func (e *Events) Subscribe(event string, fn func(payload string)) {
	e.handlers[event] = append(e.handlers[event], fn)
}

// OnReady defers fn until the source reports ready, or runs it immediately
// if it already has. Must be called from the loop goroutine (or before the
// loop starts).
func (e *Events) OnReady(fn func()) {
	if e.ready {
		fn()
		return
	}
	e.readyFns = append(e.readyFns, fn)
}

// SetReady marks the source ready and runs the deferred callbacks on the
// loop. Later calls are no-ops.
func (e *Events) SetReady() {
	e.loop.Post(func() {
		if e.ready {
			return
		}
		e.ready = true
		fns := e.readyFns
		e.readyFns = nil
		for _, fn := range fns {
			fn()
		}
	})
}

// Emit delivers the payload to every handler registered for the event, on
// the loop. Events nobody subscribed to are dropped.
func (e *Events) Emit(event, payload string) {
	e.loop.Post(func() {
		for _, fn := range e.handlers[event] {
			fn(payload)
		}
	})
}
