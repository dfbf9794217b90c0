package block

import (
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// Side places the expander's toggle control relative to its children.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// expandState is the expander's state machine. The non-animated variant
// only ever occupies collapsed and expanded.
type expandState int

const (
	stateCollapsed expandState = iota
	stateExpanding
	stateExpanded
	stateCollapsing
)

// ExpanderConfig configures an Expander.
type ExpanderConfig struct {
	Name     string
	Children []Block

	// Side is where the toggle control renders relative to the children.
	Side Side

	// Animate selects the sweeping reveal; when false the toggle jumps
	// straight between collapsed and expanded.
	Animate bool

	// FrameInterval is the animation frame timer period.
	FrameInterval time.Duration

	// Fudge debounces child-change recomputation, so a burst of child
	// updates re-renders the composite once.
	Fudge time.Duration

	// CollapsedGlyph and ExpandedGlyph are the toggle control's text in
	// each target state.
	CollapsedGlyph string
	ExpandedGlyph  string

	// ToggleCommand, when set, wraps the toggle glyph in a clickable
	// region running this shell command (typically the pulsebar client
	// raising an action refresh back at this block's tag).
	ToggleCommand string
}

// Expander is a composite block that owns child blocks and toggles between
// showing just a toggle control and the children's concatenated text. The
// animated variant reveals or hides that text one display character per
// frame, stepping an index across the token sequence so control sequences
// are never split. The sweep is resumable: reversing direction mid-flight
// keeps the current index and re-derives tokens from the current child
// text.
type Expander struct {
	Base
	cfg      ExpanderConfig
	state    expandState
	cursor   *markup.Cursor
	frames   *sched.Repeating
	debounce *sched.Debouncer
}

// NewExpander builds the composite, attaches itself to every child's change
// notification, and renders its initial collapsed frame. Must be called
// from the loop goroutine (or before the loop starts).
func NewExpander(loop *sched.Loop, cfg ExpanderConfig) *Expander {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 25 * time.Millisecond
	}
	e := &Expander{
		Base:   NewBase(cfg.Name),
		cfg:    cfg,
		state:  stateCollapsed,
		cursor: markup.NewCursor(nil),
		frames: sched.NewRepeating(loop),
	}
	e.debounce = sched.NewDebouncer(loop, cfg.Fudge, e.Update)
	for _, child := range cfg.Children {
		if attachable, ok := child.(Attacher); ok {
			attachable.Attach(e.debounce.Trigger)
		}
	}
	e.Update()
	return e
}

// Update recomputes the composite's text from the children's current text.
// Mid-animation it re-derives the token sequence and keeps the index, so a
// child changing under a running sweep neither restarts nor corrupts it.
func (e *Expander) Update() {
	switch e.state {
	case stateCollapsed:
		e.Set(e.frame(""))
	case stateExpanded:
		e.Set(e.frame(e.childText()))
	default:
		e.cursor.Reset(markup.Tokenize(e.childText()))
		e.Set(e.frame(e.cursor.Prefix()))
	}
}

// Action toggles the target state. In the animated variant it cancels any
// running frame timer, re-derives the token sequence from the current child
// text, and starts a sweep in the new direction from the current index.
func (e *Expander) Action() {
	if !e.cfg.Animate {
		if e.state == stateExpanded {
			e.state = stateCollapsed
			e.Set(e.frame(""))
		} else {
			e.state = stateExpanded
			e.Set(e.frame(e.childText()))
		}
		return
	}

	prev := e.state
	e.cursor.Reset(markup.Tokenize(e.childText()))
	switch prev {
	case stateExpanded:
		e.cursor.SeekEnd()
		e.state = stateCollapsing
	case stateCollapsed:
		e.cursor.SeekStart()
		e.state = stateExpanding
	case stateExpanding:
		e.state = stateCollapsing
	case stateCollapsing:
		e.state = stateExpanding
	}

	e.frames.Start(e.cfg.FrameInterval, e.step)
	e.Set(e.frame(e.cursor.Prefix()))
}

// step advances the sweep one display character and re-renders. The frame
// timer self-cancels once the index reaches the sequence boundary for the
// current direction, after which steady-state rendering uses the full or
// empty child text directly.
func (e *Expander) step() {
	if e.state == stateExpanding {
		e.cursor.Forward()
		if e.cursor.AtEnd() {
			e.frames.Stop()
			e.state = stateExpanded
			e.Set(e.frame(e.childText()))
			return
		}
	} else {
		e.cursor.Backward()
		if e.cursor.AtStart() {
			e.frames.Stop()
			e.state = stateCollapsed
			e.Set(e.frame(""))
			return
		}
	}
	e.Set(e.frame(e.cursor.Prefix()))
}

// frame sandwiches the shown child text with the toggle control on the
// configured side.
func (e *Expander) frame(shown string) string {
	glyph := e.cfg.CollapsedGlyph
	if e.state == stateExpanded || e.state == stateExpanding {
		glyph = e.cfg.ExpandedGlyph
	}
	toggle := glyph
	if e.cfg.ToggleCommand != "" {
		toggle = markup.Click(1, e.cfg.ToggleCommand, glyph)
	}
	if e.cfg.Side == SideLeft {
		return toggle + shown
	}
	return shown + toggle
}

// childText concatenates the children's current text in declaration order.
func (e *Expander) childText() string {
	var b strings.Builder
	for _, child := range e.cfg.Children {
		b.WriteString(child.Query())
	}
	return b.String()
}

// Expanded reports whether the composite is in its expanded steady state.
func (e *Expander) Expanded() bool { return e.state == stateExpanded }

// Animating reports whether a sweep is in flight.
func (e *Expander) Animating() bool { return e.frames.Active() }
