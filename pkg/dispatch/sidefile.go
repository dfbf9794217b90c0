package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// The targets file is the side channel for signal-addressed refresh: a
// transient newline-separated list of block type tags, overwritten before
// each signal raise and consumed (read once, then removed) on receipt. The
// writer must finish the write before raising the signal; WriteTargets is
// atomic (temp file plus rename) so a reader never sees a partial list.

// DefaultTargetsPath returns the targets file location inside the user's
// runtime directory.
func DefaultTargetsPath() string {
	return filepath.Join(xdg.RuntimeDir, "pulsebar", "targets")
}

// WriteTargets atomically writes the tag list to path, creating the parent
// directory if needed.
func WriteTargets(path string, tags []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create side-channel directory: %w", err)
	}
	tmp := path + ".tmp"
	data := strings.Join(tags, "\n") + "\n"
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write side channel: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish side channel: %w", err)
	}
	return nil
}

// ConsumeTargets reads the tag list from path and removes the file so a
// later signal cannot observe a stale list. Blank lines are dropped.
func ConsumeTargets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read side channel: %w", err)
	}
	os.Remove(path)

	var tags []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}
