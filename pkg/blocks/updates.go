package blocks

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// checkupdatesNoneExit is checkupdates' exit status when no updates are
// pending; it is informational, not a failure.
const checkupdatesNoneExit = 2

// Updates renders the number of pending package updates. It is meant for a
// slow periodic schedule: the check spawns the package manager's network
// tooling.
type Updates struct {
	block.Base
	pal markup.Palette
	run source.Runner
}

// NewUpdates returns an updates block counting via checkupdates.
func NewUpdates(pal markup.Palette, run source.Runner) *Updates {
	return &Updates{Base: block.NewBase("updates"), pal: pal, run: run}
}

// Update re-counts pending updates.
func (u *Updates) Update() {
	u.run.Run([]string{"checkupdates"}, u.apply)
}

func (u *Updates) apply(out string, err error) {
	if err != nil {
		if source.ExitCode(err) == checkupdatesNoneExit && out == "" {
			u.Set("")
			return
		}
		u.Set(u.pal.Urgent(pad("pkg ?")))
		return
	}
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	if n == 0 {
		u.Set("")
		return
	}
	u.Set(markup.Fg(u.pal.Foreground, pad(fmt.Sprintf("%d pkg", n))))
}
