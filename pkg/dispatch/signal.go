package dispatch

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// SignalTransport turns SIGUSR1/SIGUSR2 into refresh commands: SIGUSR1
// requests update, SIGUSR2 requests action, and the target list comes from
// the side-channel file written by whoever raised the signal. An unreadable
// side channel abandons that one dispatch with a warning; it is never
// fatal.
type SignalTransport struct {
	targetsPath string
	dispatcher  *Dispatcher
	logger      *slog.Logger
}

// NewSignalTransport returns a transport reading target lists from
// targetsPath.
func NewSignalTransport(targetsPath string, d *Dispatcher, logger *slog.Logger) *SignalTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalTransport{targetsPath: targetsPath, dispatcher: d, logger: logger}
}

// Run listens for refresh signals until ctx is cancelled.
func (t *SignalTransport) Run(ctx context.Context) error {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, unix.SIGUSR1, unix.SIGUSR2)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-ch:
			tags, err := ConsumeTargets(t.targetsPath)
			if err != nil {
				t.logger.Warn("refresh signal without readable target list",
					"signal", sig.String(), "error", err)
				continue
			}
			kind := KindUpdate
			if sig == unix.SIGUSR2 {
				kind = KindAction
			}
			t.logger.Debug("refresh signal", "kind", kind.String(), "targets", tags)
			t.dispatcher.Deliver(Command{Kind: kind, Targets: tags})
		}
	}
}
