package block

import (
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

func newTestExpander(t *testing.T, loop *sched.Loop, animate bool, children ...Block) *Expander {
	t.Helper()
	var e *Expander
	onLoop(t, loop, func() {
		e = NewExpander(loop, ExpanderConfig{
			Name:           "tray",
			Children:       children,
			Side:           SideLeft,
			Animate:        animate,
			FrameInterval:  2 * time.Millisecond,
			CollapsedGlyph: "<",
			ExpandedGlyph:  ">",
		})
	})
	return e
}

func TestExpanderCollapsedShowsOnlyToggle(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "abc")
	child.Update()
	e := newTestExpander(t, loop, false, child)

	onLoop(t, loop, func() {
		if got := e.Query(); got != "<" {
			t.Errorf("collapsed render = %q, want %q", got, "<")
		}
	})
}

func TestExpanderToggleWithoutAnimation(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "abc")
	child.Update()
	e := newTestExpander(t, loop, false, child)

	onLoop(t, loop, func() {
		e.Action()
		if got := e.Query(); got != ">abc" {
			t.Errorf("expanded render = %q, want %q", got, ">abc")
		}
		if !e.Expanded() {
			t.Error("state should be expanded")
		}
		e.Action()
		if got := e.Query(); got != "<" {
			t.Errorf("re-collapsed render = %q, want %q", got, "<")
		}
	})
}

func TestExpanderToggleSideRight(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "abc")
	child.Update()
	var e *Expander
	onLoop(t, loop, func() {
		e = NewExpander(loop, ExpanderConfig{
			Name:           "tray",
			Children:       []Block{child},
			Side:           SideRight,
			CollapsedGlyph: "<",
			ExpandedGlyph:  ">",
		})
		e.Action()
		if got := e.Query(); got != "abc>" {
			t.Errorf("right-side render = %q, want %q", got, "abc>")
		}
	})
}

func TestExpanderAnimatedExpandCompletes(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", markup.Fg("#fff", "abcd"))
	child.Update()
	e := newTestExpander(t, loop, true, child)

	onLoop(t, loop, func() { e.Action() })

	if !waitFor(t, loop, 2*time.Second, func() bool { return e.Expanded() }) {
		t.Fatal("expand animation never completed")
	}
	onLoop(t, loop, func() {
		if e.Animating() {
			t.Error("frame timer still running after completion")
		}
		if got, want := e.Query(), ">"+markup.Fg("#fff", "abcd"); got != want {
			t.Errorf("steady expanded render = %q, want %q", got, want)
		}
	})
}

func TestExpanderReverseMidAnimationEndsCollapsed(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "abcdefgh")
	child.Update()
	e := newTestExpander(t, loop, true, child)

	// Record every rendered frame; no frame may show anything but a
	// prefix of the child text.
	var frames []string
	onLoop(t, loop, func() {
		e.Attach(func() { frames = append(frames, e.Query()) })
		e.Action()
	})

	// Let a few expand frames run, then reverse before completion.
	time.Sleep(6 * time.Millisecond)
	var alreadyDone bool
	onLoop(t, loop, func() {
		alreadyDone = e.Expanded()
		if !alreadyDone {
			e.Action()
		}
	})
	if alreadyDone {
		t.Skip("expand finished before reversal; timing too coarse")
	}

	if !waitFor(t, loop, 2*time.Second, func() bool {
		return !e.Animating() && !e.Expanded()
	}) {
		t.Fatal("collapse never completed after reversal")
	}

	onLoop(t, loop, func() {
		if got := e.Query(); got != "<" {
			t.Errorf("final render = %q, want %q", got, "<")
		}
		for _, f := range frames {
			shown := strings.TrimPrefix(strings.TrimPrefix(f, "<"), ">")
			if !strings.HasPrefix("abcdefgh", shown) {
				t.Errorf("frame %q shows non-prefix child content", f)
			}
		}
	})
}

func TestExpanderToggleAtBoundaryRestartsSweep(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "ab")
	child.Update()
	e := newTestExpander(t, loop, true, child)

	onLoop(t, loop, func() { e.Action() })
	if !waitFor(t, loop, 2*time.Second, func() bool { return e.Expanded() }) {
		t.Fatal("first expand never completed")
	}

	// Toggling from the expanded steady state starts a fresh collapse.
	onLoop(t, loop, func() { e.Action() })
	if !waitFor(t, loop, 2*time.Second, func() bool {
		return !e.Animating() && !e.Expanded()
	}) {
		t.Fatal("collapse after steady state never completed")
	}
	onLoop(t, loop, func() {
		if got := e.Query(); got != "<" {
			t.Errorf("final render = %q, want %q", got, "<")
		}
	})
}

func TestExpanderChildChangeMidAnimationRederives(t *testing.T) {
	loop := newTestLoop(t)
	child := newStaticBlock("child", "abcdefgh")
	child.Update()
	e := newTestExpander(t, loop, true, child)

	onLoop(t, loop, func() { e.Action() })
	time.Sleep(6 * time.Millisecond)

	// Child text shrinks under the running sweep.
	onLoop(t, loop, func() {
		child.next = "xy"
		child.Update()
	})

	if !waitFor(t, loop, 2*time.Second, func() bool { return e.Expanded() }) {
		t.Fatal("expand never completed after child change")
	}
	onLoop(t, loop, func() {
		if got, want := e.Query(), ">xy"; got != want {
			t.Errorf("steady render = %q, want %q", got, want)
		}
	})
}
