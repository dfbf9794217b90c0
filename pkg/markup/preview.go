package markup

import (
	"strings"

	"github.com/muesli/termenv"
)

// Preview translates a bar markup line into ANSI escape sequences so it can
// be eyeballed in a regular terminal without lemonbar. Colors degrade
// through the given termenv profile. Clickable regions lose their binding
// (the text renders plainly) and alignment markers become a two-space gap;
// the preview is a debugging aid, not a faithful renderer.
func Preview(s string, profile termenv.Profile) string {
	var b strings.Builder
	reversed := false
	styled := false

	for _, tok := range Tokenize(s) {
		if tok.Kind == TokenLiteral {
			b.WriteString(tok.Text)
			continue
		}

		body := strings.TrimSuffix(strings.TrimPrefix(tok.Text, "%{"), "}")
		switch {
		case body == "F-":
			b.WriteString(termenv.CSI + "39m")
		case body == "B-":
			b.WriteString(termenv.CSI + "49m")
		case strings.HasPrefix(body, "F"):
			if c := profile.Color(body[1:]); c != nil {
				b.WriteString(termenv.CSI + c.Sequence(false) + "m")
				styled = true
			}
		case strings.HasPrefix(body, "B"):
			if c := profile.Color(body[1:]); c != nil {
				b.WriteString(termenv.CSI + c.Sequence(true) + "m")
				styled = true
			}
		case body == "+u":
			b.WriteString(termenv.CSI + termenv.UnderlineSeq + "m")
			styled = true
		case body == "-u":
			b.WriteString(termenv.CSI + "24m")
		case body == "R":
			if reversed {
				b.WriteString(termenv.CSI + "27m")
			} else {
				b.WriteString(termenv.CSI + termenv.ReverseSeq + "m")
				styled = true
			}
			reversed = !reversed
		case body == "l", body == "c", body == "r":
			if b.Len() > 0 {
				b.WriteString("  ")
			}
		default:
			// U colors and click regions have no terminal equivalent.
		}
	}

	if styled {
		b.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	}
	return b.String()
}
