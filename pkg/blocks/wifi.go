package blocks

import (
	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// Wifi renders the SSID of the current wireless association, or an urgent
// placeholder when there is no link.
type Wifi struct {
	block.Base
	pal markup.Palette
	run source.Runner
}

// NewWifi returns a wifi block reading the SSID through run.
func NewWifi(pal markup.Palette, run source.Runner) *Wifi {
	return &Wifi{Base: block.NewBase("wifi"), pal: pal, run: run}
}

// Update queries the current SSID.
func (w *Wifi) Update() {
	w.run.Run([]string{"iwgetid", "-r"}, w.apply)
}

func (w *Wifi) apply(out string, err error) {
	// iwgetid exits non-zero when unassociated; either way, no SSID means
	// no link.
	if err != nil || out == "" {
		w.Set(w.pal.Urgent(pad("no net")))
		return
	}
	w.Set(markup.Fg(w.pal.Accent, pad(out)))
}
