package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/pulsebar/pkg/bar"
	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/blocks"
	"gitlab.com/tinyland/lab/pulsebar/pkg/config"
	"gitlab.com/tinyland/lab/pulsebar/pkg/dispatch"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
	"gitlab.com/tinyland/lab/pulsebar/pkg/source"
)

// trayTag is the reserved order tag for the collapsible group.
const trayTag = "tray"

// engine assembles the configured blocks around one event loop. The render
// registry holds the top-level blocks in bar order; the address registry
// additionally holds tray children, so selective refresh can reach blocks
// the bar does not render directly.
type engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	loop    *sched.Loop
	runner  source.Runner
	render  *block.Registry
	address *block.Registry
	bar     *bar.Bar

	periodics []*block.Periodic
	streams   []*source.LineStream
	closers   []func()
	closeOnce sync.Once
}

// newEngine builds and wires every block named in the configured order,
// starts their schedules, and emits the initial line to out. The loop is
// not running yet; call run.
func newEngine(cfg *config.Config, logger *slog.Logger, out io.Writer) (*engine, error) {
	e := &engine{
		cfg:     cfg,
		logger:  logger,
		loop:    sched.NewLoop(),
		render:  block.NewRegistry(),
		address: block.NewRegistry(),
	}
	e.runner = source.NewRunner(e.loop, cfg.General.CommandTimeout.Or(5*time.Second))
	pal := cfg.Palette.Markup()

	for _, tag := range cfg.General.Order {
		var (
			b   block.Block
			err error
		)
		if tag == trayTag {
			b, err = e.buildTray(pal)
		} else {
			b, err = e.buildBlock(pal, tag)
		}
		if err != nil {
			return nil, err
		}
		if err := e.render.Add(b); err != nil {
			return nil, err
		}
		if err := e.address.Add(b); err != nil {
			return nil, err
		}
	}

	e.bar = bar.New(out, e.render, logger)
	e.bar.Attach()
	return e, nil
}

// run executes the loop and the attached line streams until ctx is
// cancelled. Stream exhaustion is not fatal; the bar keeps rendering last
// known text.
func (e *engine) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.loop.Run(ctx) })
	for _, s := range e.streams {
		s := s
		g.Go(func() error {
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Warn("event stream ended", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		e.close()
		return nil
	})
	return g.Wait()
}

// close releases spawned subprocesses and stream readers so blocked scans
// unwind. Safe to call from any exit path; only the first call does
// anything.
func (e *engine) close() {
	e.closeOnce.Do(func() {
		for _, fn := range e.closers {
			fn()
		}
	})
}

// buildBlock constructs the block for one order tag and starts its
// schedule.
func (e *engine) buildBlock(pal markup.Palette, tag string) (block.Block, error) {
	c := e.cfg.Blocks
	switch tag {
	case "clock":
		b := blocks.NewClock(pal, c.Clock.Format)
		e.startAligned(b.Update, c.Clock.Skew.Duration)
		return b, nil
	case "volume":
		b := block.WithFudge(e.loop,
			blocks.NewVolume(pal, e.runner, volumeCommands(c.Volume)),
			c.Volume.Fudge.Duration)
		e.startPeriodic(b.Update, c.Volume.Interval.Duration)
		return b, nil
	case "wifi":
		b := block.WithFudge(e.loop, blocks.NewWifi(pal, e.runner), c.Wifi.Fudge.Duration)
		e.startPeriodic(b.Update, c.Wifi.Interval.Duration)
		return b, nil
	case "battery":
		b := blocks.NewBattery(pal, e.runner, blocks.BatteryConfig{
			UrgentBelow:        c.Battery.UrgentBelow,
			RequireDischarging: c.Battery.RequireDischarging,
		})
		e.startPeriodic(b.Update, c.Battery.Interval.Duration)
		return b, nil
	case "music":
		b := blocks.NewMusic(pal, e.runner, c.Music.ToggleCommand)
		e.startPeriodic(b.Update, c.Music.Interval.Duration)
		e.wirePlayerEvents(b)
		return b, nil
	case "updates":
		b := blocks.NewUpdates(pal, e.runner)
		e.startPeriodic(b.Update, c.Updates.Interval.Duration)
		return b, nil
	case "sysmetrics":
		b := blocks.NewSysMetrics(e.loop, pal)
		e.startPeriodic(b.Update, c.SysMetrics.Interval.Duration)
		return b, nil
	case "workspaces":
		return e.buildWorkspaces(pal)
	}
	for _, l := range c.Labels {
		if l.Tag == tag {
			b := blocks.NewLabel(pal, l.Tag, l.Text)
			b.Update()
			return b, nil
		}
	}
	return nil, fmt.Errorf("unknown block tag %q in order", tag)
}

// buildTray builds the collapsible group: its children register for
// addressing but render only through the composite.
func (e *engine) buildTray(pal markup.Palette) (block.Block, error) {
	t := e.cfg.Tray
	children := make([]block.Block, 0, len(t.Children))
	for _, tag := range t.Children {
		b, err := e.buildBlock(pal, tag)
		if err != nil {
			return nil, err
		}
		if err := e.address.Add(b); err != nil {
			return nil, err
		}
		children = append(children, b)
	}

	side := block.SideRight
	if t.Side == "left" {
		side = block.SideLeft
	}
	toggle := t.ToggleCommand
	if toggle == "" {
		toggle = selfSend(dispatch.KindAction, trayTag)
	}
	return block.NewExpander(e.loop, block.ExpanderConfig{
		Name:           trayTag,
		Children:       children,
		Side:           side,
		Animate:        t.Animate,
		FrameInterval:  t.FrameInterval.Or(25 * time.Millisecond),
		Fudge:          t.Fudge.Duration,
		CollapsedGlyph: t.CollapsedGlyph,
		ExpandedGlyph:  t.ExpandedGlyph,
		ToggleCommand:  toggle,
	}), nil
}

// buildWorkspaces wires the workspaces block to the window manager's report
// stream. An unreachable WM is logged and the block stays empty; the rest
// of the bar is unaffected.
func (e *engine) buildWorkspaces(pal markup.Palette) (block.Block, error) {
	w := blocks.NewWorkspaces(pal, e.cfg.Blocks.Workspaces.FocusCommand)

	events := source.NewEvents(e.loop)
	events.Subscribe(source.WMEventReport, w.HandleReport)

	r, closer, err := e.openWMReader(e.cfg.Blocks.Workspaces.Socket)
	if err != nil {
		e.logger.Warn("window manager stream unavailable", "error", err)
		return w, nil
	}
	stream := source.NewLineStream(e.loop, r)
	source.AttachWM(stream, events)
	e.streams = append(e.streams, stream)
	e.closers = append(e.closers, closer)
	return w, nil
}

// openWMReader connects to the WM report feed: directly over its socket
// when configured, otherwise through a spawned subscriber process.
func (e *engine) openWMReader(socket string) (io.Reader, func(), error) {
	if socket != "" {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return nil, nil, fmt.Errorf("dial WM socket: %w", err)
		}
		// bspwm messages are NUL-separated arguments.
		if _, err := conn.Write([]byte("subscribe\x00report\x00")); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("subscribe to WM reports: %w", err)
		}
		return conn, func() { conn.Close() }, nil
	}

	cmd := exec.Command("bspc", "subscribe", "report")
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("spawn WM subscriber: %w", err)
	}
	closer := func() {
		cmd.Process.Kill()
		cmd.Wait()
	}
	return pipe, closer, nil
}

// wirePlayerEvents attaches the music block to the player daemon's idle
// notifications, so track changes render immediately instead of waiting for
// the next poll. A missing player tool just leaves the block on its
// periodic schedule.
func (e *engine) wirePlayerEvents(m *blocks.Music) {
	cmd := exec.Command("mpc", "idleloop", "player")
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return
	}
	if err := cmd.Start(); err != nil {
		e.logger.Debug("player event stream unavailable", "error", err)
		return
	}

	events := source.NewEvents(e.loop)
	stream := source.NewLineStream(e.loop, pipe)
	stream.Subscribe(func(line string) {
		if line != "player" {
			return
		}
		events.SetReady()
		events.Emit(blocks.MusicEventPlayer, line)
	})
	block.Subscribe(events, []string{blocks.MusicEventPlayer}, m.Update)

	e.streams = append(e.streams, stream)
	e.closers = append(e.closers, func() {
		cmd.Process.Kill()
		cmd.Wait()
	})
}

// selfSend returns the shell command that addresses the given tag in the
// running bar, or "" when the executable path is unknown.
func selfSend(kind dispatch.Kind, tag string) string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s -send %s:%s", exe, kind, tag)
}

// volumeCommands fills unset click commands with mixer defaults that chain
// a selective refresh of the volume tag, so a click or scroll redraws the
// block immediately instead of waiting for the next poll. Explicitly
// configured commands pass through untouched.
func volumeCommands(c config.VolumeConfig) blocks.VolumeConfig {
	mixer := c.Mixer
	if mixer == "" {
		mixer = "Master"
	}
	vc := blocks.VolumeConfig{
		Mixer:         mixer,
		ToggleCommand: c.ToggleCommand,
		UpCommand:     c.UpCommand,
		DownCommand:   c.DownCommand,
	}

	refresh := ""
	if cmd := selfSend(dispatch.KindUpdate, "volume"); cmd != "" {
		refresh = " && " + cmd
	}
	if vc.ToggleCommand == "" {
		vc.ToggleCommand = "amixer -q set " + mixer + " toggle" + refresh
	}
	if vc.UpCommand == "" {
		vc.UpCommand = "amixer -q set " + mixer + " 5%+" + refresh
	}
	if vc.DownCommand == "" {
		vc.DownCommand = "amixer -q set " + mixer + " 5%-" + refresh
	}
	return vc
}

// startPeriodic schedules fn every interval; a non-positive interval means
// a single recomputation at startup.
func (e *engine) startPeriodic(fn func(), every time.Duration) {
	if every <= 0 {
		fn()
		return
	}
	e.periodics = append(e.periodics, block.StartPeriodic(e.loop, 0, every, fn))
}

// startAligned schedules fn on minute boundaries, offset by skew.
func (e *engine) startAligned(fn func(), skew time.Duration) {
	initial := block.UntilNextMinute(time.Now(), skew)
	e.periodics = append(e.periodics, block.StartPeriodic(e.loop, initial, time.Minute, fn))
}
