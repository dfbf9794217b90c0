package blocks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// BatteryConfig sets the urgency policy. Both knobs are deliberate
// configuration rather than hard-coded behaviour: UrgentBelow is the
// percentage at or under which the block styles itself urgent, and
// RequireDischarging additionally demands the battery not be on mains
// power before going urgent.
type BatteryConfig struct {
	UrgentBelow        int
	RequireDischarging bool
}

// Battery renders charge state parsed from `acpi -b`.
type Battery struct {
	block.Base
	pal markup.Palette
	run source.Runner
	cfg BatteryConfig
}

// NewBattery returns a battery block.
func NewBattery(pal markup.Palette, run source.Runner, cfg BatteryConfig) *Battery {
	if cfg.UrgentBelow <= 0 {
		cfg.UrgentBelow = 15
	}
	return &Battery{Base: block.NewBase("battery"), pal: pal, run: run, cfg: cfg}
}

// Update queries the battery state.
func (b *Battery) Update() {
	b.run.Run([]string{"acpi", "-b"}, b.apply)
}

func (b *Battery) apply(out string, err error) {
	if err != nil || out == "" {
		// No battery present, or acpi missing.
		b.Set(b.pal.Urgent(pad("bat ?")))
		return
	}
	status, pct, perr := parseBattery(out)
	if perr != nil {
		b.Set(b.pal.Urgent(pad("bat ?")))
		return
	}

	charging := status == "Charging" || status == "Full"
	text := fmt.Sprintf("bat %d%%", pct)
	if charging {
		text += "+"
	}

	if b.urgent(pct, charging) {
		b.Set(b.pal.Urgent(pad(text)))
		return
	}
	b.Set(markup.Fg(b.pal.Foreground, pad(text)))
}

// urgent applies the configured urgency policy.
func (b *Battery) urgent(pct int, charging bool) bool {
	if pct > b.cfg.UrgentBelow {
		return false
	}
	if b.cfg.RequireDischarging && charging {
		return false
	}
	return true
}

// batteryRe matches the status and percentage of an acpi line, e.g.
// "Battery 0: Discharging, 42%, 01:23:45 remaining".
var batteryRe = regexp.MustCompile(`Battery \d+: (\w+), (\d+)%`)

// parseBattery extracts status and percentage from the first battery line
// of acpi output.
func parseBattery(out string) (status string, pct int, err error) {
	for _, line := range strings.Split(out, "\n") {
		m := batteryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pct, err = strconv.Atoi(m[2])
		if err != nil {
			return "", 0, fmt.Errorf("parse percentage: %w", err)
		}
		return m[1], pct, nil
	}
	return "", 0, fmt.Errorf("no battery line in acpi output")
}
