package blocks

import (
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
)

// Clock renders the current time. It is meant to run on a minute-aligned
// periodic schedule (see block.UntilNextMinute) so the displayed minute
// flips right as the wall clock does.
type Clock struct {
	block.Base
	pal    markup.Palette
	format string
	now    func() time.Time
}

// NewClock returns a clock rendering with the given time layout.
func NewClock(pal markup.Palette, format string) *Clock {
	if format == "" {
		format = "Mon 02 Jan 15:04"
	}
	return &Clock{
		Base:   block.NewBase("clock"),
		pal:    pal,
		format: format,
		now:    time.Now,
	}
}

// Update recomputes the rendered time.
func (c *Clock) Update() {
	c.Set(markup.Fg(c.pal.Foreground, pad(c.now().Format(c.format))))
}
