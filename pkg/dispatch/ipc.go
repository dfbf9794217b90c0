package dispatch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// IPCServer is the second refresh transport: a Unix domain socket accepting
// line-based text commands, so scripts can address blocks without the
// signal-plus-file dance.
//
// Protocol:
//   - Client sends a single line: UPDATE tag [tag...], ACTION tag [tag...],
//     or PING.
//   - Server responds with one JSON line.
type IPCServer struct {
	socketPath string
	dispatcher *Dispatcher
	listener   net.Listener
	wg         sync.WaitGroup
	done       chan struct{}
}

// DefaultSocketPath returns the control socket location inside the user's
// runtime directory.
func DefaultSocketPath() string {
	return filepath.Join(xdg.RuntimeDir, "pulsebar", "control.sock")
}

// NewIPCServer creates a server that will listen on socketPath and feed
// parsed commands to d.
func NewIPCServer(socketPath string, d *Dispatcher) *IPCServer {
	return &IPCServer{
		socketPath: socketPath,
		dispatcher: d,
		done:       make(chan struct{}),
	}
}

// Start begins listening. Any stale socket file at the path is removed
// first; the new socket is owner-only.
func (s *IPCServer) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop shuts the server down, waits for in-flight connections, and removes
// the socket file. Safe to call more than once.
func (s *IPCServer) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *IPCServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn reads one command line, dispatches it, and writes the JSON
// response.
func (s *IPCServer) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return
	}

	resp := s.handleLine(line)
	data, _ := json.Marshal(resp)
	fmt.Fprintf(conn, "%s\n", data)
}

func (s *IPCServer) handleLine(line string) map[string]string {
	parts := strings.Fields(line)
	verb := strings.ToUpper(parts[0])

	switch verb {
	case "PING":
		return map[string]string{"status": "ok"}
	case "UPDATE", "ACTION":
		if len(parts) < 2 {
			return map[string]string{"error": "no targets given"}
		}
		kind := KindUpdate
		if verb == "ACTION" {
			kind = KindAction
		}
		s.dispatcher.Deliver(Command{Kind: kind, Targets: parts[1:]})
		return map[string]string{"status": "ok", "targets": strings.Join(parts[1:], " ")}
	default:
		return map[string]string{"error": fmt.Sprintf("unknown command %q", verb)}
	}
}

// SendLine connects to a running bar's control socket, sends one command
// line, and returns the raw response line.
func SendLine(socketPath, line string) (string, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return "", fmt.Errorf("connect to bar: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "%s\n", line)

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return "", fmt.Errorf("empty response from bar")
	}
	return scanner.Text(), nil
}
