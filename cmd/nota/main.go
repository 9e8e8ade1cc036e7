// Package main is the entry point for the nota editor: a single binary
// that is either the long-lived server (--server) or a thin terminal
// client that attaches to one over a local socket, auto-spawning the
// server on first attach.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/dshills/nota/internal/config"
	"github.com/dshills/nota/internal/editor"
	"github.com/dshills/nota/internal/logging"
	"github.com/dshills/nota/internal/platform"
	"github.com/dshills/nota/internal/proto"
	"github.com/dshills/nota/internal/session"
)

// appName namespaces this program's sockets under os.TempDir() away
// from any other program using internal/session's layout.
const appName = "nota"

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath    string
	KeymapPath    string
	WorkspacePath string
	SessionName   string
	LogLevel      string
	Server        bool
	PrintSession  bool
	Quit          bool
	Files         []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	name := opts.SessionName
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		n, err := session.Name(cwd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		name = n
	}
	socketPath := session.SocketPath(appName, name)

	if opts.PrintSession {
		fmt.Println(socketPath)
		return 0
	}

	if opts.Server {
		return runServer(opts, socketPath)
	}
	return runClient(opts, socketPath)
}

func parseFlags() options {
	var opts options
	var showVersion, showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.KeymapPath, "keymap", "", "Path to a user keymap TOML file, loaded at server start")
	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace/project directory")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Workspace/project directory (shorthand)")
	flag.StringVar(&opts.SessionName, "session", "", "Session name (default: a hash of the working directory)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Server log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Server, "server", false, "Run as the server (used internally by auto-spawn)")
	flag.BoolVar(&opts.PrintSession, "print-session", false, "Print the computed session socket path and exit")
	flag.BoolVar(&opts.Quit, "quit", false, "Exit right after the attach handshake (for scripting/piping)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nota - modal, multi-client terminal text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nota [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nota                       Attach, spawning a server if none runs here\n")
		fmt.Fprintf(os.Stderr, "  nota file.go               Attach and open a file\n")
		fmt.Fprintf(os.Stderr, "  nota --session work f.go   Attach to a named session\n")
		fmt.Fprintf(os.Stderr, "  nota --print-session       Print the session socket path\n")
		fmt.Fprintf(os.Stderr, "  cat f.go | nota --quit     Warm a session without attaching a terminal\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("nota %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid.
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()
	if opts.WorkspacePath == "" && len(opts.Files) > 0 {
		if abs, err := filepath.Abs(opts.Files[0]); err == nil {
			opts.WorkspacePath = filepath.Dir(abs)
		}
	}

	return opts
}

// runServer builds an Editor and drives it from platform.Loop over a
// freshly bound unix-socket listener at socketPath, until a signal or
// a RequestQuit stops the loop.
func runServer(opts options, socketPath string) int {
	settings := config.Default()
	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading config: %v\n", err)
			return 1
		}
		s, err := config.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		settings = s
	}
	if opts.SessionName != "" {
		settings.SessionName = opts.SessionName
	}

	if err := session.EnsureSocketDir(socketPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if session.Probe(socketPath) {
		fmt.Fprintf(os.Stderr, "Error: a server is already listening at %s\n", socketPath)
		return 1
	}
	if err := session.RemoveStaleSocket(socketPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: listen: %v\n", err)
		return 1
	}
	defer os.Remove(socketPath)

	log, err := logging.New(logging.Options{Level: opts.LogLevel, LogPath: socketPath + ".log"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ed := editor.New(editor.Options{
		Settings:      settings,
		WorkspaceRoot: opts.WorkspacePath,
		InitialFiles:  opts.Files,
		KeymapPath:    opts.KeymapPath,
		Logger:        log,
	})

	loop := platform.NewLoop(
		platform.NewListener(ln),
		platform.NewSupervisor(),
		platform.WithIdleDuration(time.Duration(settings.IdleDurationMillis())*time.Millisecond),
		platform.WithMaxClients(settings.MaxClientCount),
		platform.WithMaxProcesses(settings.MaxProcessCount),
	)

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	runErr := loop.Run(ctx, ed)
	ed.Shutdown(context.Background())
	cancel()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// runClient attaches to the server at socketPath, auto-spawning it as a
// detached background process first if nothing answers a probe.
func runClient(opts options, socketPath string) int {
	if !session.Probe(socketPath) {
		if err := spawnServer(opts, socketPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start server: %v\n", err)
			return 1
		}
	}

	conn, err := dialWithRetry(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connect: %v\n", err)
		return 1
	}
	defer conn.Close()

	if opts.Quit {
		// The attach handshake (the dial above) is all --quit asks for:
		// warm the session, then leave without relaying a terminal.
		return 0
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return runPipeClient(conn)
	}
	return runInteractiveClient(conn)
}

// spawnServer re-execs the current binary in --server mode, detached
// from this process's controlling terminal, and waits for it to start
// answering socketPath before returning.
func spawnServer(opts options, socketPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	args := []string{"--server", "--session", filepath.Base(socketPath), "--log-level", opts.LogLevel}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	if opts.WorkspacePath != "" {
		args = append(args, "--workspace", opts.WorkspacePath)
	}
	args = append(args, opts.Files...)

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devnull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn server: %w", err)
	}
	_ = cmd.Process.Release()

	for i := 0; i < 50; i++ {
		if session.Probe(socketPath) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not start listening at %s", socketPath)
}

func dialWithRetry(path string) (net.Conn, error) {
	var lastErr error
	for i := 0; i < 20; i++ {
		conn, err := net.Dial("unix", path)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	return nil, lastErr
}

// runPipeClient forwards stdin verbatim as KindStdin frames until EOF,
// for `producer | nota` piping into a session with no attached
// terminal.
func runPipeClient(conn net.Conn) int {
	buf := make([]byte, 32*1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if werr := proto.WriteFrame(conn, proto.Frame{Kind: proto.KindStdin, Payload: chunk}); werr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", werr)
				return 1
			}
		}
		if err != nil {
			break
		}
	}
	return 0
}

// runInteractiveClient is the thin terminal relay: raw stdin bytes go
// out as KindKey frames exactly as read (the server, not this client,
// parses escape sequences), SIGWINCH goes out as KindResize frames, and
// every KindRender frame's payload is written straight to stdout with
// no interpretation.
func runInteractiveClient(conn net.Conn) int {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: set raw mode: %v\n", err)
		return 1
	}
	defer term.Restore(fd, oldState)

	var writeMu sync.Mutex
	writeFrame := func(f proto.Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return proto.WriteFrame(conn, f)
	}

	sendResize := func() {
		ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
		if err != nil {
			return
		}
		var payload bytes.Buffer
		w := proto.NewWriter(&payload)
		_ = w.WriteU32(uint32(ws.Col))
		_ = w.WriteU32(uint32(ws.Row))
		_ = writeFrame(proto.Frame{Kind: proto.KindResize, Payload: payload.Bytes()})
	}
	sendResize()

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, unix.SIGWINCH)
	defer signal.Stop(sigwinch)
	go func() {
		for range sigwinch {
			sendResize()
		}
	}()

	sigquit := make(chan os.Signal, 1)
	signal.Notify(sigquit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigquit
		term.Restore(fd, oldState)
		conn.Close()
		os.Exit(0)
	}()

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if werr := writeFrame(proto.Frame{Kind: proto.KindKey, Payload: chunk}); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	fr := proto.NewFrameReader(conn)
	for {
		f, err := fr.Next()
		if err != nil {
			term.Restore(fd, oldState)
			if errors.Is(err, io.EOF) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: connection lost: %v\n", err)
			return 1
		}
		if f.Kind == proto.KindRender {
			os.Stdout.Write(f.Payload)
		}
	}
}
