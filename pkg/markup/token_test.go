package markup

import (
	"strings"
	"testing"
)

func TestTokenizeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain text",
		"%{F#FF0000}red%{F-}",
		"%{l}left%{c}mid%{r}right",
		`%{A4:vol up\:now:}  42%%{A}`,
		"unterminated %{F#00FF00 tail",
		"wide 世界 chars",
		Fg("#aaa", Click(1, "x:y", "mixed")) + " tail",
	}
	for _, s := range cases {
		if got := Join(Tokenize(s)); got != s {
			t.Errorf("round-trip mismatch:\n in: %q\nout: %q", s, got)
		}
	}
}

func TestTokenizeControlAtomsAreWhole(t *testing.T) {
	tokens := Tokenize("%{F#FF0000}ab%{F-}")
	want := []Token{
		{TokenControl, "%{F#FF0000}"},
		{TokenLiteral, "a"},
		{TokenLiteral, "b"},
		{TokenControl, "%{F-}"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, tok, want[i])
		}
	}
}

// No prefix the cursor can produce may end inside a control sequence.
func TestCursorPrefixesNeverSplitControls(t *testing.T) {
	s := Fg("#123456", "ab") + Click(2, "cmd", "cd") + "e"
	cur := NewCursor(Tokenize(s))
	for {
		p := cur.Prefix()
		if n := strings.Count(p, "%{"); n != strings.Count(p, "}") {
			t.Errorf("prefix splits a control sequence: %q", p)
		}
		if !cur.Forward() {
			break
		}
	}
	if got := cur.Prefix(); got != s {
		t.Errorf("full prefix != original: %q vs %q", got, s)
	}
}

func TestCursorForwardCarriesLeadingControls(t *testing.T) {
	cur := NewCursor(Tokenize("%{F#fff}a%{F-}"))
	if !cur.Forward() {
		t.Fatal("Forward failed on non-empty sequence")
	}
	// One step reveals the color directive plus the first character.
	if got := cur.Prefix(); got != "%{F#fff}a" {
		t.Errorf("after one step: %q", got)
	}
	cur.Forward()
	if !cur.AtEnd() {
		t.Error("trailing control not swallowed by final step")
	}
}

func TestCursorBackwardMirrorsForward(t *testing.T) {
	tokens := Tokenize("%{F#fff}ab%{F-}")
	cur := NewCursor(tokens)
	cur.SeekEnd()
	steps := 0
	for cur.Backward() {
		steps++
	}
	if !cur.AtStart() {
		t.Error("Backward did not reach start")
	}
	if steps != 2 {
		t.Errorf("backward steps = %d, want 2 (one per literal)", steps)
	}
	if cur.Prefix() != "" {
		t.Errorf("prefix at start should be empty, got %q", cur.Prefix())
	}
}

func TestCursorResetClampsAndResumes(t *testing.T) {
	cur := NewCursor(Tokenize("abcdef"))
	cur.Forward()
	cur.Forward()
	cur.Forward()
	// Text shrinks mid-animation; the index clamps instead of resetting.
	cur.Reset(Tokenize("ab"))
	if got := cur.Prefix(); got != "ab" {
		t.Errorf("after clamp: %q, want %q", got, "ab")
	}
	if !cur.AtEnd() {
		t.Error("cursor should sit at the new end")
	}
	// Text grows again; position is retained.
	cur.Reset(Tokenize("abXY"))
	if got := cur.Prefix(); got != "ab" {
		t.Errorf("after regrow: %q, want %q", got, "ab")
	}
	cur.Forward()
	if got := cur.Prefix(); got != "abX" {
		t.Errorf("resume step: %q, want %q", got, "abX")
	}
}

func TestWidthIgnoresControls(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{Fg("#fff", "abc"), 3},
		{"世界", 4}, // wide runes are two columns each
		{Click(1, "cmd", "xy"), 2},
	}
	for _, c := range cases {
		if got := Width(c.in); got != c.want {
			t.Errorf("Width(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
