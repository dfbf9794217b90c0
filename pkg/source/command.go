// Package source provides the external-resource handles injected into
// blocks: a one-shot command runner, a line stream over a long-running
// subprocess, and a named-event registration table. Blocks only turn a
// handle's output into rendered text; spawning, reconnecting, and protocol
// details stay on this side of the boundary.
package source

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// Runner executes one-shot external commands and delivers their trimmed
// stdout to a callback on the engine loop. The engine never blocks on a
// subprocess: the wait happens off-loop and only the result application is
// serialized.
type Runner interface {
	Run(argv []string, fn func(out string, err error))
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct {
	loop    *sched.Loop
	timeout time.Duration
}

// NewRunner returns a Runner that kills commands exceeding timeout. A zero
// timeout defaults to five seconds.
func NewRunner(loop *sched.Loop, timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &execRunner{loop: loop, timeout: timeout}
}

func (r *execRunner) Run(argv []string, fn func(string, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
		text := strings.TrimSpace(string(out))
		r.loop.Post(func() { fn(text, err) })
	}()
}

// ExitCode extracts the exit status from a Runner error, or -1 if the
// command never ran. Some tools encode meaning in non-zero statuses (e.g. a
// package checker's "no updates pending"), which is not a failure.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
