package blocks

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// Workspaces renders one clickable cell per WM desktop: the focused desktop
// underlined in the accent color, urgent desktops in the urgent style,
// unoccupied ones dimmed. It keeps the last good desktop list, so a
// malformed report upstream leaves the rendering untouched.
type Workspaces struct {
	block.Base
	pal      markup.Palette
	focusCmd string // format string receiving the desktop name
	desktops []source.Desktop
}

// NewWorkspaces returns a workspaces block. focusCmd is a format string
// producing the shell command that focuses a clicked desktop, e.g.
// "bspc desktop -f %s".
func NewWorkspaces(pal markup.Palette, focusCmd string) *Workspaces {
	return &Workspaces{Base: block.NewBase("workspaces"), pal: pal, focusCmd: focusCmd}
}

// HandleReport ingests one WM report payload and re-renders.
func (w *Workspaces) HandleReport(payload string) {
	desktops, err := source.ParseReport(payload)
	if err != nil {
		// Keep last good state.
		return
	}
	w.desktops = desktops
	w.Update()
}

// Update re-renders from the last ingested desktop list.
func (w *Workspaces) Update() {
	if len(w.desktops) == 0 {
		w.Set("")
		return
	}
	var b strings.Builder
	for _, d := range w.desktops {
		b.WriteString(w.cell(d))
	}
	w.Set(b.String())
}

func (w *Workspaces) cell(d source.Desktop) string {
	text := pad(d.Name)
	switch {
	case d.Urgent:
		text = w.pal.Urgent(text)
	case d.Focused:
		text = markup.Underline(w.pal.Accent, markup.Fg(w.pal.Accent, text))
	case !d.Occupied:
		text = w.pal.Dim(text)
	default:
		text = markup.Fg(w.pal.Foreground, text)
	}
	if w.focusCmd != "" {
		text = markup.Click(1, fmt.Sprintf(w.focusCmd, d.Name), text)
	}
	return text
}
