package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/pulsebar/config.toml
//  2. ~/.config/pulsebar/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader. Values not set
// in the document keep their defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config
// values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSEBAR_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("PULSEBAR_LOG_FILE"); v != "" {
		cfg.General.LogFile = v
	}
	if v := os.Getenv("BSPWM_SOCKET"); v != "" && cfg.Blocks.Workspaces.Socket == "" {
		cfg.Blocks.Workspaces.Socket = v
	}
}

// configSearchPaths returns the ordered list of config file paths to
// try.
func configSearchPaths() []string {
	paths := []string{filepath.Join(xdg.ConfigHome, "pulsebar", "config.toml")}

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback
	// default.
	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", "pulsebar", "config.toml")
		if fallback != paths[0] {
			paths = append(paths, fallback)
		}
	}
	return paths
}
