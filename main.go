// pulsebar feeds a lemonbar-style status bar: one line of markup text on
// stdout, recomposed whenever any configured block changes.
//
// Blocks refresh on their own schedules (periodic ticks, window manager and
// player events) and can be refreshed selectively from outside through
// SIGUSR1/SIGUSR2 plus a targets file, or through the control socket. The
// same binary is the client for that: `pulsebar -send action:tray` pokes
// the running bar.
//
// Usage:
//
//	pulsebar [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/pulsebar/config.toml)
//	-once           Render until sources settle, then exit
//	-preview        Translate markup to ANSI colors for terminal inspection
//	-send string    Address a running bar: kind:tag[,tag...] (kind: update|action)
//	-pidfile string PID file path (default: runtime dir)
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/pulsebar/pkg/config"
	"gitlab.com/tinyland/lab/pulsebar/pkg/daemon"
	"gitlab.com/tinyland/lab/pulsebar/pkg/dispatch"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		runOnce     = flag.Bool("once", false, "Render until sources settle, then exit")
		preview     = flag.Bool("preview", false, "Translate markup to ANSI colors for terminal inspection")
		sendSpec    = flag.String("send", "", "Address a running bar: kind:tag[,tag...]")
		pidFile     = flag.String("pidfile", "", "PID file path (default: runtime dir)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulsebar %s (%s) built %s\n", version, commit, date)
		return daemon.ExitOK
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return daemon.ExitStartup
	}

	pidPath := *pidFile
	if pidPath == "" {
		pidPath = cfg.General.PIDFile
	}
	if pidPath == "" {
		pidPath = daemon.DefaultPIDPath()
	}
	targetsPath := cfg.General.TargetsFile
	if targetsPath == "" {
		targetsPath = dispatch.DefaultTargetsPath()
	}

	// Client mode: address the running bar and exit.
	if *sendSpec != "" {
		kind, tags, err := parseSendSpec(*sendSpec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return daemon.ExitStartup
		}
		if err := dispatch.Send(pidPath, targetsPath, kind, tags); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return daemon.ExitStartup
		}
		return daemon.ExitOK
	}

	logger, closeLog, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		return daemon.ExitStartup
	}
	defer closeLog()

	var out io.Writer = os.Stdout
	if *preview {
		profile := termenv.Ascii
		if isatty.IsTerminal(os.Stdout.Fd()) {
			profile = termenv.ColorProfile()
		}
		out = &previewWriter{w: os.Stdout, profile: profile}
	}

	eng, err := newEngine(cfg, logger, out)
	if err != nil {
		logger.Error("engine init failed", "error", err)
		return daemon.ExitStartup
	}

	if *runOnce {
		// Let asynchronous sources report in, then stop.
		settle := cfg.General.CommandTimeout.Or(5*time.Second) + time.Second
		ctx, cancel := context.WithTimeout(context.Background(), settle)
		defer cancel()
		if err := eng.run(ctx); err != nil && !isCancellation(err) {
			logger.Error("engine fault", "error", err)
			return daemon.ExitFault
		}
		return daemon.ExitOK
	}

	// Hooks exist before any fallible startup step, so spawned source
	// subprocesses are reaped on every exit path.
	hooks := daemon.NewHooks(logger)
	hooks.Add("source streams", eng.close)
	defer hooks.Run()

	if err := daemon.AcquirePID(pidPath); err != nil {
		logger.Error("startup failed", "error", err)
		return daemon.ExitStartup
	}
	hooks.Add("pid file", func() { daemon.ReleasePID(pidPath) })

	disp := dispatch.NewDispatcher(eng.loop, eng.address, logger)
	signals := dispatch.NewSignalTransport(targetsPath, disp, logger)

	ipc := dispatch.NewIPCServer(dispatch.DefaultSocketPath(), disp)
	if err := ipc.Start(); err != nil {
		logger.Error("control socket failed", "error", err)
		return daemon.ExitStartup
	}
	hooks.Add("control socket", ipc.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exitCode atomic.Int32
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		if sig == unix.SIGTERM {
			exitCode.Store(daemon.ExitTerminate)
		} else {
			exitCode.Store(daemon.ExitInterrupt)
		}
		cancel()
	}()

	logger.Info("pulsebar running",
		"blocks", strings.Join(cfg.General.Order, ","),
		"pid_file", pidPath,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.run(gctx) })
	g.Go(func() error { return signals.Run(gctx) })

	if err := g.Wait(); err != nil && !isCancellation(err) {
		logger.Error("engine fault", "error", err)
		hooks.Run()
		return daemon.ExitFault
	}
	hooks.Run()
	return int(exitCode.Load())
}

// parseSendSpec parses the -send argument: "update:volume,wifi" or
// "action:tray".
func parseSendSpec(spec string) (dispatch.Kind, []string, error) {
	kindStr, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, nil, fmt.Errorf("-send wants kind:tag[,tag...], got %q", spec)
	}
	kind, ok := dispatch.ParseKind(kindStr)
	if !ok {
		return 0, nil, fmt.Errorf("unknown refresh kind %q (update or action)", kindStr)
	}
	var tags []string
	for _, tag := range strings.Split(rest, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return 0, nil, fmt.Errorf("-send has no target tags in %q", spec)
	}
	return kind, tags, nil
}

// newLogger builds the slog logger: stderr always, plus the configured log
// file when set.
func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.General.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	w := io.Writer(os.Stderr)
	closeLog := func() {}
	if cfg.General.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeLog, nil
}

// isCancellation reports whether err is the normal shutdown path rather
// than a fault.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// previewWriter translates each emitted markup line into ANSI sequences.
type previewWriter struct {
	w       io.Writer
	profile termenv.Profile
}

func (p *previewWriter) Write(b []byte) (int, error) {
	line := strings.TrimRight(string(b), "\n")
	if _, err := fmt.Fprintln(p.w, markup.Preview(line, p.profile)); err != nil {
		return 0, err
	}
	return len(b), nil
}
