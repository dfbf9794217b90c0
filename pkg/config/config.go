package config

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
)

// Config is the full pulsebar configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Palette PaletteConfig `toml:"palette"`
	Blocks  BlocksConfig  `toml:"blocks"`
	Tray    TrayConfig    `toml:"tray"`
}

// GeneralConfig holds settings that are not specific to one block.
type GeneralConfig struct {
	// Order lists block tags left to right. Tags absent from the order
	// are not built even when their section is enabled.
	Order []string `toml:"order"`

	// CommandTimeout bounds every spawned source command.
	CommandTimeout Duration `toml:"command_timeout"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// PIDFile and TargetsFile override the runtime-dir defaults.
	PIDFile     string `toml:"pid_file"`
	TargetsFile string `toml:"targets_file"`
}

// PaletteConfig overrides individual palette colors. Empty fields keep
// the built-in default.
type PaletteConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Accent     string `toml:"accent"`
	Muted      string `toml:"muted"`
	UrgentFg   string `toml:"urgent_fg"`
	UrgentBg   string `toml:"urgent_bg"`
}

// Markup resolves the configured overrides against the default palette.
func (p PaletteConfig) Markup() markup.Palette {
	pal := markup.DefaultPalette()
	if p.Foreground != "" {
		pal.Foreground = p.Foreground
	}
	if p.Background != "" {
		pal.Background = p.Background
	}
	if p.Accent != "" {
		pal.Accent = p.Accent
	}
	if p.Muted != "" {
		pal.Muted = p.Muted
	}
	if p.UrgentFg != "" {
		pal.UrgentFg = p.UrgentFg
	}
	if p.UrgentBg != "" {
		pal.UrgentBg = p.UrgentBg
	}
	return pal
}

// BlocksConfig groups per-block sections.
type BlocksConfig struct {
	Clock      ClockConfig      `toml:"clock"`
	Volume     VolumeConfig     `toml:"volume"`
	Wifi       WifiConfig       `toml:"wifi"`
	Battery    BatteryConfig    `toml:"battery"`
	Music      MusicConfig      `toml:"music"`
	Updates    UpdatesConfig    `toml:"updates"`
	SysMetrics SysMetricsConfig `toml:"sysmetrics"`
	Workspaces WorkspacesConfig `toml:"workspaces"`
	Labels     []LabelConfig    `toml:"labels"`
}

type ClockConfig struct {
	Format string `toml:"format"`
	// Skew nudges the minute-aligned refresh past the boundary so the
	// displayed minute has definitely rolled over.
	Skew Duration `toml:"skew"`
}

type VolumeConfig struct {
	Interval Duration `toml:"interval"`
	// Fudge settles bursts of refresh triggers (scroll clicks) into one
	// recomputation.
	Fudge         Duration `toml:"fudge"`
	Mixer         string   `toml:"mixer"`
	ToggleCommand string   `toml:"toggle_command"`
	UpCommand     string   `toml:"up_command"`
	DownCommand   string   `toml:"down_command"`
}

type WifiConfig struct {
	Interval Duration `toml:"interval"`
	// Fudge settles link-state flapping into one recomputation.
	Fudge Duration `toml:"fudge"`
}

type BatteryConfig struct {
	Interval           Duration `toml:"interval"`
	UrgentBelow        int      `toml:"urgent_below"`
	RequireDischarging bool     `toml:"require_discharging"`
}

type MusicConfig struct {
	Interval      Duration `toml:"interval"`
	ToggleCommand string   `toml:"toggle_command"`
}

type UpdatesConfig struct {
	Interval Duration `toml:"interval"`
}

type SysMetricsConfig struct {
	Interval Duration `toml:"interval"`
}

type WorkspacesConfig struct {
	// Socket is the WM's event socket; empty disables the stream.
	Socket       string `toml:"socket"`
	FocusCommand string `toml:"focus_command"`
}

// LabelConfig is a static text block. Tag doubles as the block's
// address for selective refresh.
type LabelConfig struct {
	Tag  string `toml:"tag"`
	Text string `toml:"text"`
}

// TrayConfig configures the collapsible block group.
type TrayConfig struct {
	// Children lists the tags folded into the tray, in render order.
	Children      []string `toml:"children"`
	Side          string   `toml:"side"`
	Animate       bool     `toml:"animate"`
	FrameInterval Duration `toml:"frame_interval"`
	Fudge         Duration `toml:"fudge"`

	CollapsedGlyph string `toml:"collapsed_glyph"`
	ExpandedGlyph  string `toml:"expanded_glyph"`

	// ToggleCommand is bound to the tray glyph; empty derives a
	// self-addressed send command at startup.
	ToggleCommand string `toml:"toggle_command"`
}

// Validate rejects values the engine cannot act on.
func (c *Config) Validate() error {
	switch c.Tray.Side {
	case "", "left", "right":
	default:
		return fmt.Errorf("tray.side: %q is not \"left\" or \"right\"", c.Tray.Side)
	}
	switch c.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("general.log_level: unknown level %q", c.General.LogLevel)
	}
	seen := make(map[string]bool, len(c.General.Order))
	for _, tag := range c.General.Order {
		if seen[tag] {
			return fmt.Errorf("general.order: duplicate tag %q", tag)
		}
		seen[tag] = true
	}
	return nil
}

// DefaultConfig returns the built-in configuration: the classic
// clock-on-the-right bar with the noisy blocks tucked into a tray.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Order:          []string{"workspaces", "music", "tray", "clock"},
			CommandTimeout: Duration{5 * time.Second},
			LogLevel:       "info",
		},
		Blocks: BlocksConfig{
			Clock: ClockConfig{
				Format: "Mon 02 Jan 15:04",
				Skew:   Duration{500 * time.Millisecond},
			},
			// Volume click commands are left empty: the engine derives
			// mixer commands that chain a selective refresh back at the
			// running bar.
			Volume: VolumeConfig{
				Interval: Duration{30 * time.Second},
				Fudge:    Duration{100 * time.Millisecond},
				Mixer:    "Master",
			},
			Wifi: WifiConfig{
				Interval: Duration{30 * time.Second},
				Fudge:    Duration{1 * time.Second},
			},
			Battery: BatteryConfig{Interval: Duration{60 * time.Second}, UrgentBelow: 15, RequireDischarging: true},
			Music: MusicConfig{
				Interval:      Duration{10 * time.Second},
				ToggleCommand: "mpc -q toggle",
			},
			Updates:    UpdatesConfig{Interval: Duration{30 * time.Minute}},
			SysMetrics: SysMetricsConfig{Interval: Duration{5 * time.Second}},
			Workspaces: WorkspacesConfig{FocusCommand: "bspc desktop -f %s"},
		},
		Tray: TrayConfig{
			Children:       []string{"volume", "wifi", "battery", "updates", "sysmetrics"},
			Side:           "right",
			Animate:        true,
			FrameInterval:  Duration{25 * time.Millisecond},
			Fudge:          Duration{100 * time.Millisecond},
			CollapsedGlyph: "<",
			ExpandedGlyph:  ">",
		},
	}
}
