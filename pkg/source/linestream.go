package source

import (
	"bufio"
	"context"
	"io"

	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// LineStream delivers discrete lines from an already-spawned long-running
// subprocess (or any reader) to subscribers on the engine loop. The block
// receiving it only sees lines; process lifetime belongs to whoever spawned
// it.
type LineStream struct {
	loop *sched.Loop
	r    io.Reader
	subs []func(line string)
}

// NewLineStream wraps r. Subscribe before calling Run; subscriptions made
// while the stream is running are a wiring bug.
func NewLineStream(loop *sched.Loop, r io.Reader) *LineStream {
	return &LineStream{loop: loop, r: r}
}

// Subscribe registers fn for every line the stream emits.
func (s *LineStream) Subscribe(fn func(line string)) {
	s.subs = append(s.subs, fn)
}

// Run scans lines until the reader closes or ctx is cancelled, posting each
// line to the loop. A closed reader ends the stream without error; the bar
// keeps running on last known text.
func (s *LineStream) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		s.loop.Post(func() {
			for _, fn := range s.subs {
				fn(line)
			}
		})
	}
	return scanner.Err()
}
