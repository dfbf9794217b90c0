package dispatch

import (
	"fmt"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/pulsebar/pkg/daemon"
)

// Send is the caller side of the signal transport, used by the `-send`
// client mode and by click commands embedded in rendered text. It writes
// the targets file first and only then raises the signal at the running
// bar, preserving the write-then-signal ordering the receiver depends on.
func Send(pidPath, targetsPath string, kind Kind, tags []string) error {
	if len(tags) == 0 {
		return fmt.Errorf("no target tags given")
	}
	pid, err := daemon.ReadPID(pidPath)
	if err != nil {
		return fmt.Errorf("locate running bar: %w", err)
	}
	if !daemon.IsProcessAlive(pid) {
		return fmt.Errorf("no bar running at PID %d", pid)
	}
	if err := WriteTargets(targetsPath, tags); err != nil {
		return err
	}
	sig := unix.SIGUSR1
	if kind == KindAction {
		sig = unix.SIGUSR2
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("signal bar (PID %d): %w", pid, err)
	}
	return nil
}
