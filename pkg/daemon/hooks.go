package daemon

import (
	"log/slog"
	"sync"
)

// Exit codes. Each exit path gets a distinct status so supervisors can tell
// a clean shutdown from a fault.
const (
	ExitOK        = 0
	ExitStartup   = 1
	ExitFault     = 70 // unrecoverable fault in an engine callback
	ExitInterrupt = 130
	ExitTerminate = 143
)

// Hooks collects teardown functions (released subprocess handles, closed
// sockets, removed runtime files) and runs them exactly once, in
// registration order, no matter which exit path triggers them.
type Hooks struct {
	mu     sync.Mutex
	fns    []func()
	names  []string
	ran    bool
	logger *slog.Logger
}

// NewHooks returns an empty hook registry.
func NewHooks(logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{logger: logger}
}

// Add registers a named teardown function. Registration after Run has
// executed is ignored: the process is already on its way out.
func (h *Hooks) Add(name string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ran {
		h.logger.Warn("teardown hook registered after shutdown", "hook", name)
		return
	}
	h.names = append(h.names, name)
	h.fns = append(h.fns, fn)
}

// Run executes all registered hooks in registration order. Only the first
// call runs anything; later calls are no-ops, so every exit path can invoke
// it unconditionally.
func (h *Hooks) Run() {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return
	}
	h.ran = true
	fns, names := h.fns, h.names
	h.mu.Unlock()

	for i, fn := range fns {
		h.logger.Debug("running teardown hook", "hook", names[i])
		fn()
	}
}
