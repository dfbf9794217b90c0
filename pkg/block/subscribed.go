package block

// EventSource is the handle a subscribed block receives at construction: an
// already-connected event emitter with named events. Some sources finish an
// asynchronous handshake before subscriptions are valid; OnReady defers the
// given callback until then (or runs it immediately if the source is
// already ready).
type EventSource interface {
	OnReady(fn func())
	Subscribe(event string, fn func(payload string))
}

// Subscribe wires fn to every named event on src, deferring registration
// until the source reports ready, then runs fn once so the block does not
// show a stale placeholder until the first event happens to fire. There is
// no ordering between the named events; any of them triggers fn.
func Subscribe(src EventSource, events []string, fn func()) {
	src.OnReady(func() {
		for _, ev := range events {
			src.Subscribe(ev, func(string) { fn() })
		}
		fn()
	})
}
