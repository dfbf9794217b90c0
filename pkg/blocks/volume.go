package blocks

import (
	"fmt"
	"regexp"
	"strconv"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// VolumeConfig wires the volume block to its mixer and its click commands.
// The click commands typically adjust the mixer and then raise a selective
// refresh back at this block's tag, so the bar redraws immediately instead
// of waiting for the debounce to settle.
type VolumeConfig struct {
	Mixer         string // amixer control name, e.g. "Master"
	ToggleCommand string // mouse button 1
	UpCommand     string // scroll up
	DownCommand   string // scroll down
}

// Volume renders the mixer's playback level, parsed from amixer output.
type Volume struct {
	block.Base
	pal markup.Palette
	run source.Runner
	cfg VolumeConfig
}

// NewVolume returns a volume block querying the configured mixer through
// run.
func NewVolume(pal markup.Palette, run source.Runner, cfg VolumeConfig) *Volume {
	if cfg.Mixer == "" {
		cfg.Mixer = "Master"
	}
	return &Volume{Base: block.NewBase("volume"), pal: pal, run: run, cfg: cfg}
}

// Update queries the mixer and re-renders when the result lands.
func (v *Volume) Update() {
	v.run.Run([]string{"amixer", "get", v.cfg.Mixer}, v.apply)
}

func (v *Volume) apply(out string, err error) {
	if err != nil {
		v.Set(v.pal.Urgent(pad("vol ?")))
		return
	}
	pct, muted, perr := parseVolume(out)
	if perr != nil {
		v.Set(v.pal.Urgent(pad("vol ?")))
		return
	}

	var body string
	if muted {
		body = v.pal.Dim(pad("muted"))
	} else {
		body = markup.Fg(v.pal.Foreground, pad(fmt.Sprintf("vol %d%%", pct)))
	}
	v.Set(v.clickable(body))
}

// clickable layers the block's mouse bindings around the rendered body.
func (v *Volume) clickable(body string) string {
	if v.cfg.UpCommand != "" {
		body = markup.Click(4, v.cfg.UpCommand, body)
	}
	if v.cfg.DownCommand != "" {
		body = markup.Click(5, v.cfg.DownCommand, body)
	}
	if v.cfg.ToggleCommand != "" {
		body = markup.Click(1, v.cfg.ToggleCommand, body)
	}
	return body
}

// volumeRe matches the level and switch fields of an amixer control line,
// e.g. "Mono: Playback 53 [81%] [on]".
var volumeRe = regexp.MustCompile(`\[(\d+)%\].*\[(on|off)\]`)

// parseVolume extracts the playback percentage and mute switch from amixer
// output.
func parseVolume(out string) (pct int, muted bool, err error) {
	m := volumeRe.FindStringSubmatch(out)
	if m == nil {
		return 0, false, fmt.Errorf("no level field in mixer output")
	}
	pct, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("parse level: %w", err)
	}
	return pct, m[2] == "off", nil
}
