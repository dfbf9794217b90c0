package blocks

import (
	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// MusicEventPlayer is the event name the music block subscribes to; the
// player adapter emits it whenever playback state changes.
const MusicEventPlayer = "player"

// Music renders the currently playing track, fetched from the music player
// daemon's client on every player event. It contributes nothing to the bar
// while the player is stopped.
type Music struct {
	block.Base
	pal       markup.Palette
	run       source.Runner
	toggleCmd string
}

// NewMusic returns a music block. toggleCmd, when non-empty, is bound to
// mouse button 1 on the rendered track (typically pause/resume plus a
// selective refresh of this tag).
func NewMusic(pal markup.Palette, run source.Runner, toggleCmd string) *Music {
	return &Music{Base: block.NewBase("music"), pal: pal, run: run, toggleCmd: toggleCmd}
}

// Update fetches the current track.
func (m *Music) Update() {
	m.run.Run([]string{"mpc", "current"}, m.apply)
}

func (m *Music) apply(out string, err error) {
	if err != nil {
		m.Set(m.pal.Urgent(pad("mpd ?")))
		return
	}
	if out == "" {
		// Stopped: vanish from the line rather than advertising silence.
		m.Set("")
		return
	}
	body := markup.Fg(m.pal.Accent, pad(out))
	if m.toggleCmd != "" {
		body = markup.Click(1, m.toggleCmd, body)
	}
	m.Set(body)
}
