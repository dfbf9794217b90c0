package markup

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// TokenKind distinguishes display characters from control sequences.
type TokenKind int

const (
	// TokenLiteral is a single display character.
	TokenLiteral TokenKind = iota

	// TokenControl is one whole %{...} directive.
	TokenControl
)

// Token is an atomic unit of rendered text: either one display character or
// one intact control sequence. A Token is never subdivided.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokenize splits s into its token sequence. A %{ that never closes is not
// a directive; its characters become literals, which keeps the Join
// round-trip exact for malformed input.
func Tokenize(s string) []Token {
	var tokens []Token
	for len(s) > 0 {
		if strings.HasPrefix(s, "%{") {
			if end := strings.IndexByte(s, '}'); end >= 0 {
				tokens = append(tokens, Token{Kind: TokenControl, Text: s[:end+1]})
				s = s[end+1:]
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(s)
		tokens = append(tokens, Token{Kind: TokenLiteral, Text: s[:size]})
		s = s[size:]
	}
	return tokens
}

// Join concatenates a token sequence back into a string. For any s,
// Join(Tokenize(s)) == s.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Width returns the number of terminal columns the token sequence occupies.
// Control sequences are zero-width; literals use their display width, so
// wide runes count as two columns.
func Width(s string) int {
	w := 0
	for _, t := range Tokenize(s) {
		if t.Kind == TokenLiteral {
			w += runewidth.StringWidth(t.Text)
		}
	}
	return w
}

// Cursor walks an index across a token sequence. The index always sits on a
// token boundary, so any prefix the cursor yields contains only whole
// tokens; it can never terminate inside a control sequence. Forward and
// Backward move one display character at a time, carrying adjacent control
// sequences along with the character they precede or follow.
type Cursor struct {
	tokens []Token
	pos    int
}

// NewCursor returns a cursor over tokens positioned at the start.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Reset swaps in a freshly derived token sequence while keeping the current
// position, clamped to the new sequence's bounds. Used when the underlying
// text changes mid-animation: the sweep resumes from where it is instead of
// restarting.
func (c *Cursor) Reset(tokens []Token) {
	c.tokens = tokens
	if c.pos > len(tokens) {
		c.pos = len(tokens)
	}
}

// Forward advances past the next literal together with any control tokens
// before it. If only control tokens remain, it advances to the end so
// trailing directives are included in the final frame. Returns false if the
// cursor was already at the end.
func (c *Cursor) Forward() bool {
	if c.pos >= len(c.tokens) {
		return false
	}
	for c.pos < len(c.tokens) {
		t := c.tokens[c.pos]
		c.pos++
		if t.Kind == TokenLiteral {
			break
		}
	}
	return true
}

// Backward retreats past the previous literal together with any control
// tokens after it, mirroring Forward. Returns false if the cursor was
// already at the start.
func (c *Cursor) Backward() bool {
	if c.pos <= 0 {
		return false
	}
	for c.pos > 0 {
		c.pos--
		if c.tokens[c.pos].Kind == TokenLiteral {
			break
		}
	}
	// Strip directives that now dangle before the removed literal so a
	// collapse takes exactly as many steps as the expand did.
	for c.pos > 0 && c.tokens[c.pos-1].Kind == TokenControl {
		c.pos--
	}
	return true
}

// SeekStart moves the cursor to the start boundary.
func (c *Cursor) SeekStart() { c.pos = 0 }

// SeekEnd moves the cursor to the end boundary.
func (c *Cursor) SeekEnd() { c.pos = len(c.tokens) }

// AtStart reports whether the cursor sits at the start boundary.
func (c *Cursor) AtStart() bool { return c.pos == 0 }

// AtEnd reports whether the cursor sits at the end boundary.
func (c *Cursor) AtEnd() bool { return c.pos == len(c.tokens) }

// Prefix returns the text between the start edge and the current index.
func (c *Cursor) Prefix() string {
	return Join(c.tokens[:c.pos])
}
