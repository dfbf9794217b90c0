package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// countingBlock records Update and Action invocations.
type countingBlock struct {
	block.Base
	updates int
	actions int
}

func newCountingBlock(name string) *countingBlock {
	return &countingBlock{Base: block.NewBase(name)}
}

func (b *countingBlock) Update() { b.updates++ }
func (b *countingBlock) Action() { b.actions++ }

// plainBlock has no Action.
type plainBlock struct {
	block.Base
	updates int
}

func newPlainBlock(name string) *plainBlock {
	return &plainBlock{Base: block.NewBase(name)}
}

func (b *plainBlock) Update() { b.updates++ }

func newTestLoop(t *testing.T) *sched.Loop {
	t.Helper()
	loop := sched.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

func onLoop(t *testing.T, loop *sched.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	loop.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop callback did not run")
	}
}

func waitFor(t *testing.T, loop *sched.Loop, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var ok bool
		onLoop(t, loop, func() { ok = cond() })
		if ok {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func newTestDispatcher(t *testing.T, loop *sched.Loop, blocks ...block.Block) *Dispatcher {
	t.Helper()
	reg := block.NewRegistry()
	for _, b := range blocks {
		if err := reg.Add(b); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return NewDispatcher(loop, reg, nil)
}

func TestDeliverUpdateTouchesOnlyTargets(t *testing.T) {
	loop := newTestLoop(t)
	volume := newCountingBlock("volume")
	clock := newCountingBlock("clock")
	workspaces := newCountingBlock("workspaces")
	d := newTestDispatcher(t, loop, volume, clock, workspaces)

	d.Deliver(Command{Kind: KindUpdate, Targets: []string{"volume"}})

	if !waitFor(t, loop, time.Second, func() bool { return volume.updates == 1 }) {
		t.Fatal("targeted block never updated")
	}
	onLoop(t, loop, func() {
		if clock.updates != 0 || workspaces.updates != 0 {
			t.Errorf("untargeted blocks touched: clock=%d workspaces=%d",
				clock.updates, workspaces.updates)
		}
		if volume.actions != 0 {
			t.Error("update dispatch invoked Action")
		}
	})
}

func TestDeliverBurstSettlesThroughFudge(t *testing.T) {
	loop := newTestLoop(t)
	inner := newCountingBlock("volume")
	wrapped := block.WithFudge(loop, inner, 30*time.Millisecond)
	d := newTestDispatcher(t, loop, wrapped)

	// A run of scroll clicks each raising an addressed refresh.
	for i := 0; i < 6; i++ {
		d.Deliver(Command{Kind: KindUpdate, Targets: []string{"volume"}})
	}

	if !waitFor(t, loop, time.Second, func() bool { return inner.updates == 1 }) {
		t.Fatal("burst never settled into a recomputation")
	}
	time.Sleep(60 * time.Millisecond)
	onLoop(t, loop, func() {
		if inner.updates != 1 {
			t.Errorf("burst of 6 deliveries recomputed %d times, want 1", inner.updates)
		}
	})
}

func TestDeliverActionSkipsBlocksWithoutAction(t *testing.T) {
	loop := newTestLoop(t)
	tray := newCountingBlock("tray")
	label := newPlainBlock("label")
	d := newTestDispatcher(t, loop, tray, label)

	d.Deliver(Command{Kind: KindAction, Targets: []string{"tray", "label", "ghost"}})

	if !waitFor(t, loop, time.Second, func() bool { return tray.actions == 1 }) {
		t.Fatal("action never dispatched")
	}
	onLoop(t, loop, func() {
		if label.updates != 0 {
			t.Error("action dispatch fell back to Update on a plain block")
		}
	})
}

func TestKindWireSpelling(t *testing.T) {
	for _, c := range []struct {
		s    string
		kind Kind
		ok   bool
	}{
		{"update", KindUpdate, true},
		{"action", KindAction, true},
		{"bogus", 0, false},
	} {
		kind, ok := ParseKind(c.s)
		if ok != c.ok || (ok && kind != c.kind) {
			t.Errorf("ParseKind(%q) = %v,%v", c.s, kind, ok)
		}
	}
	if KindUpdate.String() != "update" || KindAction.String() != "action" {
		t.Error("Kind.String mismatch")
	}
}

func TestTargetsFileRoundTripAndConsume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets")
	tags := []string{"volume", "tray"}

	if err := WriteTargets(path, tags); err != nil {
		t.Fatalf("WriteTargets: %v", err)
	}
	got, err := ConsumeTargets(path)
	if err != nil {
		t.Fatalf("ConsumeTargets: %v", err)
	}
	if strings.Join(got, ",") != strings.Join(tags, ",") {
		t.Errorf("round-trip = %v, want %v", got, tags)
	}

	// Consumed means gone: a second read must fail.
	if _, err := ConsumeTargets(path); err == nil {
		t.Error("side channel readable twice")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("targets file survived consumption")
	}
}

func TestWriteTargetsOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets")
	if err := WriteTargets(path, []string{"old"}); err != nil {
		t.Fatal(err)
	}
	if err := WriteTargets(path, []string{"new"}); err != nil {
		t.Fatal(err)
	}
	got, err := ConsumeTargets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("got %v, want [new]", got)
	}
}

func TestSignalTransportDispatchesUpdate(t *testing.T) {
	loop := newTestLoop(t)
	volume := newCountingBlock("volume")
	clock := newCountingBlock("clock")
	d := newTestDispatcher(t, loop, volume, clock)

	targets := filepath.Join(t.TempDir(), "targets")
	tr := NewSignalTransport(targets, d, nil)
	ctx, cancel := context.WithCancel(context.Background())
	trDone := make(chan struct{})
	go func() {
		defer close(trDone)
		_ = tr.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-trDone
	})
	// Give signal.Notify a moment to install.
	time.Sleep(20 * time.Millisecond)

	if err := WriteTargets(targets, []string{"volume"}); err != nil {
		t.Fatal(err)
	}
	if err := unix.Kill(os.Getpid(), unix.SIGUSR1); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, loop, 2*time.Second, func() bool { return volume.updates == 1 }) {
		t.Fatal("signal-kind-1 did not reach the targeted block")
	}
	onLoop(t, loop, func() {
		if clock.updates != 0 {
			t.Error("untargeted block updated by signal dispatch")
		}
	})
}

func TestSignalTransportMissingSideChannelIsNoOp(t *testing.T) {
	loop := newTestLoop(t)
	volume := newCountingBlock("volume")
	d := newTestDispatcher(t, loop, volume)

	targets := filepath.Join(t.TempDir(), "missing")
	tr := NewSignalTransport(targets, d, nil)
	ctx, cancel := context.WithCancel(context.Background())
	trDone := make(chan struct{})
	go func() {
		defer close(trDone)
		_ = tr.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-trDone
	})
	time.Sleep(20 * time.Millisecond)

	if err := unix.Kill(os.Getpid(), unix.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	onLoop(t, loop, func() {
		if volume.updates != 0 {
			t.Error("dispatch ran despite unreadable side channel")
		}
	})
}

func TestIPCServerDispatchesCommands(t *testing.T) {
	loop := newTestLoop(t)
	volume := newCountingBlock("volume")
	tray := newCountingBlock("tray")
	d := newTestDispatcher(t, loop, volume, tray)

	sock := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewIPCServer(sock, d)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	resp, err := SendLine(sock, "UPDATE volume")
	if err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if !strings.Contains(resp, `"ok"`) {
		t.Errorf("response = %q", resp)
	}
	if !waitFor(t, loop, time.Second, func() bool { return volume.updates == 1 }) {
		t.Fatal("UPDATE command never dispatched")
	}

	if _, err := SendLine(sock, "ACTION tray"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if !waitFor(t, loop, time.Second, func() bool { return tray.actions == 1 }) {
		t.Fatal("ACTION command never dispatched")
	}

	resp, err = SendLine(sock, "PING")
	if err != nil {
		t.Fatalf("PING: %v", err)
	}
	if !strings.Contains(resp, `"ok"`) {
		t.Errorf("PING response = %q", resp)
	}

	resp, err = SendLine(sock, "NONSENSE")
	if err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if !strings.Contains(resp, "error") {
		t.Errorf("unknown command response = %q", resp)
	}
}
