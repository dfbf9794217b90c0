// Package markup builds and tokenizes the lemonbar formatting dialect used
// on pulsebar's output line. Directives are %{...} control sequences: colors
// (F/B/U), attribute toggles (+u/-u/!u), alignment zones (l/c/r), and
// clickable regions (A). The tokenizer in token.go treats every control
// sequence as an indivisible atom so the animation engine can never slice
// one apart.
package markup

import (
	"fmt"
	"strings"
)

// Fg renders s in the given foreground color and restores the default after.
func Fg(color, s string) string {
	return "%{F" + color + "}" + s + "%{F-}"
}

// Bg renders s on the given background color and restores the default after.
func Bg(color, s string) string {
	return "%{B" + color + "}" + s + "%{B-}"
}

// Underline renders s underlined in the given color.
func Underline(color, s string) string {
	return "%{U" + color + "}%{+u}" + s + "%{-u}%{U-}"
}

// Swap renders s with foreground and background swapped.
func Swap(s string) string {
	return "%{R}" + s + "%{R}"
}

// Alignment zone markers. Everything after a marker renders in that zone.
const (
	Left   = "%{l}"
	Center = "%{c}"
	Right  = "%{r}"
)

// Click wraps s in a clickable region bound to the given mouse button. When
// clicked, command runs in a shell; the command may itself write the refresh
// side channel and signal the bar so a click both acts and redraws. Colons
// in the command are escaped so they cannot terminate the directive early.
func Click(button int, command, s string) string {
	return fmt.Sprintf("%%{A%d:%s:}%s%%{A}", button, EscapeCommand(command), s)
}

// EscapeCommand escapes the characters that are significant inside an A
// directive.
func EscapeCommand(command string) string {
	return strings.ReplaceAll(command, ":", `\:`)
}

// Palette holds the configured bar colors. Blocks style their text through
// the palette so a failing source renders visually distinct from normal
// output.
type Palette struct {
	Foreground string
	Background string
	Accent     string
	Muted      string
	UrgentFg   string
	UrgentBg   string
}

// DefaultPalette returns the built-in color scheme.
func DefaultPalette() Palette {
	return Palette{
		Foreground: "#E5E9F0",
		Background: "#2E3440",
		Accent:     "#88C0D0",
		Muted:      "#4C566A",
		UrgentFg:   "#2E3440",
		UrgentBg:   "#BF616A",
	}
}

// Urgent renders s in the palette's urgent style. Used for degraded states:
// a dead source shows an urgent placeholder in its normal position rather
// than stale or blank text.
func (p Palette) Urgent(s string) string {
	return Bg(p.UrgentBg, Fg(p.UrgentFg, s))
}

// Accented renders s in the palette's accent color.
func (p Palette) Accented(s string) string {
	return Fg(p.Accent, s)
}

// Dim renders s in the palette's muted color.
func (p Palette) Dim(s string) string {
	return Fg(p.Muted, s)
}
