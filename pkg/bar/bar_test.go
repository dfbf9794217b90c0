package bar

import (
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
)

type textBlock struct {
	block.Base
	next string
}

func newTextBlock(name, text string) *textBlock {
	return &textBlock{Base: block.NewBase(name), next: text}
}

func (b *textBlock) Update() { b.Set(b.next) }

func newTestBar(t *testing.T, blocks ...block.Block) (*Bar, *strings.Builder) {
	t.Helper()
	reg := block.NewRegistry()
	for _, blk := range blocks {
		if err := reg.Add(blk); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	var out strings.Builder
	b := New(&out, reg, nil)
	return b, &out
}

func emissions(out *strings.Builder) []string {
	s := strings.TrimSuffix(out.String(), "\n")
	if s == "" && !strings.Contains(out.String(), "\n") {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestEmitsOnlyOnChange(t *testing.T) {
	blk := newTextBlock("clock", "12:00")
	b, out := newTestBar(t, blk)
	b.Attach()
	blk.Update()

	lines := emissions(out)
	if len(lines) != 2 || lines[1] != "12:00" {
		t.Fatalf("emissions = %q, want initial empty line then %q", lines, "12:00")
	}

	// Same text again: exactly zero further emissions.
	blk.Update()
	if got := emissions(out); len(got) != 2 {
		t.Errorf("duplicate content re-emitted: %q", got)
	}

	blk.next = "12:01"
	blk.Update()
	got := emissions(out)
	if len(got) != 3 || got[2] != "12:01" {
		t.Errorf("changed content not emitted: %q", got)
	}
}

func TestEmptyContributionsLeaveNoResidue(t *testing.T) {
	a := newTextBlock("a", "")
	x := newTextBlock("x", "X")
	c := newTextBlock("c", "")
	b, out := newTestBar(t, a, x, c)

	a.Update()
	x.Update()
	c.Update()
	b.Attach()

	lines := emissions(out)
	if len(lines) == 0 || lines[len(lines)-1] != "X" {
		t.Errorf("composed line = %q, want exactly %q", lines, "X")
	}
}

func TestCompositionOrderIsDeclarationOrder(t *testing.T) {
	first := newTextBlock("first", "1")
	second := newTextBlock("second", "2")
	third := newTextBlock("third", "3")
	b, out := newTestBar(t, first, second, third)

	first.Update()
	second.Update()
	third.Update()
	b.Attach()

	lines := emissions(out)
	if lines[len(lines)-1] != "123" {
		t.Errorf("composed line = %q, want %q", lines[len(lines)-1], "123")
	}
}

func TestAttachObservesBlockChanges(t *testing.T) {
	blk := newTextBlock("wifi", "")
	b, out := newTestBar(t, blk)
	b.Attach()

	blk.next = "ssid"
	blk.Update()

	if b.Last() != "ssid" {
		t.Errorf("Last = %q, want %q", b.Last(), "ssid")
	}
	if !strings.Contains(out.String(), "ssid\n") {
		t.Errorf("output missing emission: %q", out.String())
	}
}
