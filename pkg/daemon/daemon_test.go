package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireReleasePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pid")

	if err := AcquirePID(path); err != nil {
		t.Fatalf("AcquirePID: %v", err)
	}
	pid, err := ReadPID(path)
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("PID file holds %d, want %d", pid, os.Getpid())
	}

	// A live holder blocks a second acquire.
	if err := AcquirePID(path); err == nil {
		t.Error("second acquire against a live PID succeeded")
	}

	if err := ReleasePID(path); err != nil {
		t.Fatalf("ReleasePID: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("PID file survived release")
	}
	// Releasing again is fine.
	if err := ReleasePID(path); err != nil {
		t.Errorf("second release: %v", err)
	}
}

func TestAcquirePIDTakesOverStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pid")
	// A PID that cannot be a live process.
	if err := os.WriteFile(path, []byte("999999999"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := AcquirePID(path); err != nil {
		t.Fatalf("takeover of stale PID file failed: %v", err)
	}
	pid, _ := ReadPID(path)
	if pid != os.Getpid() {
		t.Errorf("PID file holds %d after takeover, want %d", pid, os.Getpid())
	}
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pid")
	if err := os.WriteFile(path, []byte("not a pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPID(path); err == nil {
		t.Error("garbage PID file parsed successfully")
	}
}

func TestHooksRunOnceInOrder(t *testing.T) {
	h := NewHooks(nil)
	var order []string
	h.Add("first", func() { order = append(order, "first") })
	h.Add("second", func() { order = append(order, "second") })
	h.Add("third", func() { order = append(order, "third") })

	h.Run()
	h.Run() // second invocation must be a no-op

	if len(order) != 3 {
		t.Fatalf("hooks ran %d times total, want 3: %v", len(order), order)
	}
	for i, want := range []string{"first", "second", "third"} {
		if order[i] != want {
			t.Errorf("position %d: got %q, want %q", i, order[i], want)
		}
	}
}

func TestHooksAddAfterRunIsIgnored(t *testing.T) {
	h := NewHooks(nil)
	h.Run()
	ran := false
	h.Add("late", func() { ran = true })
	h.Run()
	if ran {
		t.Error("hook registered after shutdown still ran")
	}
}
