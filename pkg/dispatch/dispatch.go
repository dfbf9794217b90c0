// Package dispatch implements selective refresh: an external actor (a click
// handler or an operator) asks specific block types to recompute without
// waiting for their natural trigger. The request is modeled as an explicit
// command message carrying a kind and a target tag list; OS signals plus a
// targets file, and a Unix-socket line protocol, are just transports that
// deliver such messages to the running process. Tests deliver them
// directly.
package dispatch

import (
	"log/slog"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// Kind selects which block method an addressed refresh invokes.
type Kind int

const (
	// KindUpdate requests Update() on each matching block.
	KindUpdate Kind = iota

	// KindAction requests Action() on each matching block. Blocks without
	// an action are skipped.
	KindAction
)

// String returns the wire spelling of the kind.
func (k Kind) String() string {
	if k == KindAction {
		return "action"
	}
	return "update"
}

// ParseKind parses the wire spelling of a kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "update":
		return KindUpdate, true
	case "action":
		return KindAction, true
	}
	return 0, false
}

// Command is one selective-refresh request: invoke the kind's method on
// every registered block whose tag appears in Targets. Blocks not listed
// are untouched.
type Command struct {
	Kind    Kind
	Targets []string
}

// Dispatcher delivers refresh commands onto the engine loop.
type Dispatcher struct {
	loop   *sched.Loop
	reg    *block.Registry
	logger *slog.Logger
}

// NewDispatcher returns a dispatcher over the given registry.
func NewDispatcher(loop *sched.Loop, reg *block.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{loop: loop, reg: reg, logger: logger}
}

// Deliver posts the command to the loop, where it invokes the addressed
// method on each matching block in target order. Unknown tags are logged
// and skipped; they never fail the dispatch. Safe to call from any
// goroutine.
func (d *Dispatcher) Deliver(cmd Command) {
	d.loop.Post(func() {
		for _, tag := range cmd.Targets {
			blk, ok := d.reg.Get(tag)
			if !ok {
				d.logger.Debug("refresh target not registered", "tag", tag)
				continue
			}
			switch cmd.Kind {
			case KindAction:
				if a, ok := blk.(block.Actioner); ok {
					a.Action()
				} else {
					d.logger.Debug("refresh target has no action", "tag", tag)
				}
			default:
				blk.Update()
			}
		}
	})
}
