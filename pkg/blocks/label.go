package blocks

import (
	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
)

// Label is a static block: fixed text decided at construction, never
// recomputed.
type Label struct {
	block.Base
	pal  markup.Palette
	text string
}

// NewLabel returns a label with the given tag and text. Distinct labels
// need distinct tags.
func NewLabel(pal markup.Palette, name, text string) *Label {
	l := &Label{Base: block.NewBase(name), pal: pal, text: text}
	return l
}

// Update renders the fixed text. Repeat calls are no-ops by construction.
func (l *Label) Update() {
	if l.text == "" {
		l.Set("")
		return
	}
	l.Set(l.pal.Dim(pad(l.text)))
}
