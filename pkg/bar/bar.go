// Package bar composes the status line. The Bar owns the fixed, ordered
// block list, observes every block's change notification, and is the sole
// writer of the output stream: it re-emits the concatenated line exactly
// once per change and never for a no-op.
package bar

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
)

// Bar concatenates the registry's blocks in declaration order and writes
// the result to w whenever it differs from the previous emission. Blocks
// contributing empty text simply vanish from the line; there is no gap
// marker or separator.
type Bar struct {
	w       io.Writer
	reg     *block.Registry
	logger  *slog.Logger
	last    string
	emitted bool
}

// New returns a Bar over the given registry. Attach must be called before
// blocks start updating.
func New(w io.Writer, reg *block.Registry, logger *slog.Logger) *Bar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bar{w: w, reg: reg, logger: logger}
}

// Attach subscribes the bar to every registered block's change
// notification and emits the initial line.
func (b *Bar) Attach() {
	for _, blk := range b.reg.Blocks() {
		if a, ok := blk.(block.Attacher); ok {
			a.Attach(b.Refresh)
		}
	}
	b.Refresh()
}

// Refresh recomposes the line from every block's current text and emits it
// if and only if it differs from the previously emitted line. Composition
// never calls anything but Query, so it has no side effects on the blocks.
func (b *Bar) Refresh() {
	var sb strings.Builder
	for _, blk := range b.reg.Blocks() {
		sb.WriteString(blk.Query())
	}
	line := sb.String()
	if b.emitted && line == b.last {
		return
	}
	if _, err := fmt.Fprintln(b.w, line); err != nil {
		b.logger.Warn("bar emission failed", "error", err)
		return
	}
	b.last = line
	b.emitted = true
}

// Last returns the most recently emitted line.
func (b *Bar) Last() string { return b.last }
