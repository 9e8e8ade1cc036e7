package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Supervisor tracks the external-tool processes a Loop spawns on behalf
// of its clients: formatters, linters, and other shell filters started
// by RequestSpawnProcess and addressed by the request's tag rather than
// an OS pid. It owns the piping, exit monitoring, and shutdown sequence
// shared by every such process so Loop itself only deals in tags and
// events.
//
// Supervisor is safe for concurrent use.
type Supervisor struct {
	mu    sync.RWMutex
	procs map[string]*Process

	// shutdown is closed once Shutdown begins, letting anything
	// selecting on ShutdownChan unblock without polling.
	shutdown chan struct{}

	closed atomic.Bool

	// maxProcesses caps concurrent processes; 0 means unlimited.
	maxProcesses int

	// onProcessExit, if set, fires once per process after it leaves
	// the running set, whether it exited cleanly or was killed.
	onProcessExit func(p *Process)
}

// SupervisorOption configures a Supervisor instance.
type SupervisorOption func(*Supervisor)

// WithMaxProcesses caps concurrent processes; 0 (the default) is
// unlimited.
func WithMaxProcesses(max int) SupervisorOption {
	return func(s *Supervisor) { s.maxProcesses = max }
}

// WithProcessExitCallback registers fn to run once per process after it
// leaves the running set.
func WithProcessExitCallback(fn func(p *Process)) SupervisorOption {
	return func(s *Supervisor) { s.onProcessExit = fn }
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		procs:    make(map[string]*Process),
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches cmd as a new tracked process under a generated ID, with
// name recorded for GetByName lookups.
//
// Returns ErrSupervisorShutdown once Shutdown has begun.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	return s.StartWithID(uuid.New().String(), name, cmd)
}

// StartWithID launches cmd under the given id rather than a generated
// one. RequestSpawnProcess callers pass the request's own tag here so a
// later RequestKillProcess/RequestCloseProcessInput for that tag maps
// straight back to this process without an extra lookup table.
func (s *Supervisor) StartWithID(id, name string, cmd *exec.Cmd) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSupervisorShutdown
	}
	if s.maxProcesses > 0 && len(s.procs) >= s.maxProcesses {
		return nil, fmt.Errorf("process limit reached: %d", s.maxProcesses)
	}
	if _, exists := s.procs[id]; exists {
		return nil, fmt.Errorf("process ID already exists: %s", id)
	}

	proc := NewProcess(id, name, cmd)
	closer, err := wirePipes(cmd, proc)
	if err != nil {
		closer.closeAll()
		return nil, err
	}

	if err := proc.start(); err != nil {
		closer.closeAll()
		return nil, err
	}

	s.procs[id] = proc
	go s.awaitExit(proc)
	return proc, nil
}

// pipeSet collects the std pipes wirePipes opened, so a failed Start can
// close whichever ones it already created instead of leaking them.
type pipeSet []interface{ Close() error }

func (ps pipeSet) closeAll() {
	for _, p := range ps {
		_ = p.Close()
	}
}

// wirePipes attaches stdin/stdout/stderr pipes to proc for any of cmd's
// three streams the caller left unconfigured.
func wirePipes(cmd *exec.Cmd, proc *Process) (pipeSet, error) {
	var opened pipeSet

	if cmd.Stdin == nil {
		p, err := cmd.StdinPipe()
		if err != nil {
			return opened, fmt.Errorf("create stdin pipe: %w", err)
		}
		proc.Stdin = p
		opened = append(opened, p)
	}
	if cmd.Stdout == nil {
		p, err := cmd.StdoutPipe()
		if err != nil {
			return opened, fmt.Errorf("create stdout pipe: %w", err)
		}
		proc.Stdout = p
		opened = append(opened, p)
	}
	if cmd.Stderr == nil {
		p, err := cmd.StderrPipe()
		if err != nil {
			return opened, fmt.Errorf("create stderr pipe: %w", err)
		}
		proc.Stderr = p
		opened = append(opened, p)
	}
	return opened, nil
}

// awaitExit blocks until proc exits, fires the exit callback, and drops
// proc from the tracked set.
func (s *Supervisor) awaitExit(proc *Process) {
	<-proc.Done()

	if s.onProcessExit != nil {
		s.runExitCallback(proc)
	}

	s.mu.Lock()
	delete(s.procs, proc.ID)
	s.mu.Unlock()
}

// runExitCallback isolates the caller-supplied callback behind a
// recover, since a panicking callback must not take the supervisor's
// cleanup goroutine down with it.
func (s *Supervisor) runExitCallback(proc *Process) {
	defer func() { _ = recover() }()
	s.onProcessExit(proc)
}

// Get returns the process tracked under id, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.procs[id]
}

// GetByName returns every tracked process started with the given name;
// a Loop spawning several instances of the same external tool can end up
// with more than one match.
func (s *Supervisor) GetByName(name string) []*Process {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Process
	for _, p := range s.procs {
		if p.Name == name {
			matches = append(matches, p)
		}
	}
	return matches
}

// List returns a snapshot of every tracked process.
func (s *Supervisor) List() []*Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the tracked-process map into a slice. Callers
// must hold s.mu (read or write).
func (s *Supervisor) snapshotLocked() []*Process {
	procs := make([]*Process, 0, len(s.procs))
	for _, p := range s.procs {
		procs = append(procs, p)
	}
	return procs
}

// Count returns the number of tracked processes.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.procs)
}

// Kill sends SIGKILL to the process tracked under id.
// Returns ErrProcessNotFound if id isn't tracked.
func (s *Supervisor) Kill(id string) error {
	return s.signalByID(id, (*Process).Kill)
}

// Terminate sends SIGTERM to the process tracked under id.
// Returns ErrProcessNotFound if id isn't tracked.
func (s *Supervisor) Terminate(id string) error {
	return s.signalByID(id, (*Process).Terminate)
}

// Signal sends sig to the process tracked under id.
// Returns ErrProcessNotFound if id isn't tracked.
func (s *Supervisor) Signal(id string, sig syscall.Signal) error {
	return s.signalByID(id, func(p *Process) error { return p.Signal(sig) })
}

// signalByID looks up id and applies send to it, skipping processes that
// have already exited rather than erroring on them.
func (s *Supervisor) signalByID(id string, send func(*Process) error) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrProcessNotFound
	}
	if !proc.IsRunning() {
		return nil
	}
	return send(proc)
}

// KillAll sends SIGKILL to every tracked, still-running process.
func (s *Supervisor) KillAll() {
	s.signalAll((*Process).Kill)
}

// TerminateAll sends SIGTERM to every tracked, still-running process.
func (s *Supervisor) TerminateAll() {
	s.signalAll((*Process).Terminate)
}

// signalAll applies send to a snapshot of the tracked set, outside the
// lock, so a process's own exit-monitoring goroutine (which needs s.mu
// to remove itself) never deadlocks against it.
func (s *Supervisor) signalAll(send func(*Process) error) {
	s.mu.RLock()
	procs := s.snapshotLocked()
	s.mu.RUnlock()

	for _, p := range procs {
		if p.IsRunning() {
			_ = send(p)
		}
	}
}

// Shutdown terminates every tracked process and blocks until each has
// exited and been removed from tracking.
//
// Every process is sent SIGTERM first; any still running after timeout
// is escalated to SIGKILL. A Loop calls this once, from its own
// shutdown path, so a wedged external tool can never hang the editor's
// exit indefinitely.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	if s.closed.Swap(true) {
		return
	}
	close(s.shutdown)

	s.mu.RLock()
	procs := s.snapshotLocked()
	s.mu.RUnlock()
	if len(procs) == 0 {
		return
	}

	for _, p := range procs {
		if p.IsRunning() {
			_ = p.Terminate()
		}
	}

	exited := make(chan struct{})
	go func() {
		for _, p := range procs {
			<-p.Done()
		}
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(timeout):
		for _, p := range procs {
			if p.IsRunning() {
				_ = p.Kill()
			}
		}
		<-exited
	}

	s.waitForCleanup()
}

// waitForCleanup blocks until every exited process's awaitExit
// goroutine has removed it from s.procs, so Count() reads 0 once
// Shutdown returns.
func (s *Supervisor) waitForCleanup() {
	for s.Count() > 0 {
		time.Sleep(time.Millisecond)
	}
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Supervisor) IsShuttingDown() bool {
	return s.closed.Load()
}

// ShutdownChan returns a channel closed the moment Shutdown begins, for
// callers that want to stop doing new work without blocking on the full
// shutdown sequence.
func (s *Supervisor) ShutdownChan() <-chan struct{} {
	return s.shutdown
}

// Wait blocks until every tracked process has exited on its own, without
// sending any signal. Used by callers that expect their processes to
// finish naturally (e.g. a formatter run to completion) rather than by
// Shutdown's terminate-then-kill escalation.
func (s *Supervisor) Wait() {
	for {
		s.mu.RLock()
		procs := s.snapshotLocked()
		s.mu.RUnlock()
		if len(procs) == 0 {
			return
		}
		for _, p := range procs {
			select {
			case <-p.Done():
			default:
				continue
			}
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Sentinel errors returned by Supervisor's lookup and lifecycle methods.
var (
	ErrProcessNotFound    = errors.New("process not found")
	ErrSupervisorShutdown = errors.New("supervisor is shutting down")
)
