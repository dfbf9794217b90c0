package source

import (
	"fmt"
	"strings"
)

// WMEventReport is the event name the window-manager adapter emits for each
// desktop-state report line.
const WMEventReport = "report"

// Desktop is one workspace entry parsed from a WM report.
type Desktop struct {
	Name     string
	Focused  bool
	Occupied bool
	Urgent   bool
}

// AttachWM adapts a stream of bspwm-style report lines into the given event
// table. The first well-formed report completes the source handshake and
// marks the table ready; malformed lines are skipped, leaving subscribers
// on their last good state.
func AttachWM(stream *LineStream, events *Events) {
	stream.Subscribe(func(line string) {
		if _, err := ParseReport(line); err != nil {
			return
		}
		events.SetReady()
		events.Emit(WMEventReport, line)
	})
}

// ParseReport parses a report line of the form
// "WMeDP-1:fI:OII:oIII:uIV:LT". Items are colon-separated; the leading
// character of each selects its meaning: f/F free, o/O occupied, u/U
// urgent, with uppercase marking the focused desktop. Monitor and layout
// items are ignored.
func ParseReport(line string) ([]Desktop, error) {
	if !strings.HasPrefix(line, "W") {
		return nil, fmt.Errorf("not a report line: %q", line)
	}
	var desktops []Desktop
	for _, item := range strings.Split(line[1:], ":") {
		if len(item) < 2 {
			continue
		}
		kind, name := item[0], item[1:]
		switch kind {
		case 'f', 'F':
			desktops = append(desktops, Desktop{Name: name, Focused: kind == 'F'})
		case 'o', 'O':
			desktops = append(desktops, Desktop{Name: name, Focused: kind == 'O', Occupied: true})
		case 'u', 'U':
			desktops = append(desktops, Desktop{Name: name, Focused: kind == 'U', Occupied: true, Urgent: true})
		}
	}
	if len(desktops) == 0 {
		return nil, fmt.Errorf("report with no desktops: %q", line)
	}
	return desktops, nil
}
