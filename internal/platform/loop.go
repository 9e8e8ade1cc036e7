package platform

import (
	"context"
	"net"
	"os/exec"
	"time"
)

// Loop is the single-threaded, cooperative event loop: it owns the
// client listener, accepted client connections, and spawned child
// processes, and drives Application.Update once per tick.
//
// A raw epoll/kqueue multiplexer is the excluded OS-specific backend;
// readiness is instead multiplexed over channels fed by per-connection
// and per-process reader goroutines, the idiomatic Go stand-in.
type Loop struct {
	listener   *Listener
	supervisor *Supervisor
	pool       *BufferPool
	requests   *RequestQueue

	idleDuration time.Duration
	maxClients   int
	maxProcesses int

	ready chan readiness

	clients  map[uint32]*Conn
	nextID   uint32
	procTags map[string]*Process

	// pending holds synthetic events generated while draining
	// requests (ConnectionClose, ProcessSpawned, ProcessExit for a
	// failed spawn) that must surface on the following tick rather
	// than the one that queued the request.
	pending []Event

	// redraw is set by a queued RequestRedraw and makes Run use T=0
	// for the following tick instead of the idle timeout.
	redraw bool
}

// LoopOption configures a Loop at construction.
type LoopOption func(*Loop)

// WithIdleDuration overrides the default idle-tick timeout.
func WithIdleDuration(d time.Duration) LoopOption {
	return func(l *Loop) { l.idleDuration = d }
}

// WithMaxClients overrides the default accepted-client ceiling.
func WithMaxClients(n int) LoopOption {
	return func(l *Loop) { l.maxClients = n }
}

// WithMaxProcesses overrides the default spawned-process ceiling.
func WithMaxProcesses(n int) LoopOption {
	return func(l *Loop) { l.maxProcesses = n }
}

// NewLoop creates a Loop bound to listener, spawning child processes
// through supervisor.
func NewLoop(listener *Listener, supervisor *Supervisor, opts ...LoopOption) *Loop {
	l := &Loop{
		listener:     listener,
		supervisor:   supervisor,
		pool:         NewBufferPool(),
		requests:     NewRequestQueue(),
		idleDuration: time.Second,
		maxClients:   32,
		maxProcesses: 16,
		ready:        make(chan readiness, 64),
		clients:      make(map[uint32]*Conn),
		procTags:     make(map[string]*Process),
	}
	return l
}

// Requests returns the queue Application.Update should push onto.
func (l *Loop) Requests() *RequestQueue { return l.requests }

// Run blocks, driving ticks until ctx is canceled or the application
// issues RequestQuit.
func (l *Loop) Run(ctx context.Context, app Application) error {
	go l.listener.acceptLoop(l.ready)

	timeout := l.idleDuration
	for {
		quit := l.tick(ctx, app, timeout)
		if quit {
			return nil
		}
		if l.redraw {
			// RequestRedraw schedules an immediate second pass.
			l.redraw = false
			timeout = 0
		} else {
			timeout = l.idleDuration
		}
	}
}

// tick blocks on the multiplexer for up to timeout, translates
// readiness into events, calls Application.Update, and drains the
// resulting requests. It returns whether the loop should stop.
func (l *Loop) tick(ctx context.Context, app Application, timeout time.Duration) bool {
	events := l.pending
	l.pending = nil

	if len(events) == 0 {
		var timer *time.Timer
		var timeoutCh <-chan time.Time
		if timeout > 0 {
			timer = time.NewTimer(timeout)
			timeoutCh = timer.C
			defer timer.Stop()
		}

		select {
		case <-ctx.Done():
			return true
		case r := <-l.ready:
			events = append(events, l.translate(r))
		case <-timeoutCh:
			events = append(events, Event{Kind: EventIdle})
		}
	}

	// Drain whatever else is already queued without blocking, so one
	// readiness signal doesn't trickle in one event per tick.
	for {
		select {
		case r := <-l.ready:
			events = append(events, l.translate(r))
			continue
		default:
		}
		break
	}

	app.Update(events, l.requests)
	return l.drainRequests()
}

func (l *Loop) translate(r readiness) Event {
	switch r.kind {
	case EventConnectionOpen:
		c := l.assignConn(r.raw)
		if c == nil {
			return Event{Kind: EventIdle} // rejected: over the client ceiling
		}
		go c.readLoop(l.pool, l.ready)
		return Event{Kind: EventConnectionOpen, ClientID: c.ID}
	case EventConnectionOutput:
		return Event{Kind: EventConnectionOutput, ClientID: r.conn.ID, Payload: r.data}
	case EventConnectionClose:
		delete(l.clients, r.conn.ID)
		_ = r.conn.close()
		return Event{Kind: EventConnectionClose, ClientID: r.conn.ID, Err: r.err}
	case EventProcessOutput:
		return Event{Kind: EventProcessOutput, Tag: r.tag, Payload: r.data}
	case EventProcessExit:
		delete(l.procTags, r.tag)
		return Event{Kind: EventProcessExit, Tag: r.tag, Err: r.err}
	default:
		return Event{Kind: r.kind}
	}
}

// assignConn registers a freshly accepted connection under a new
// client ID. Called only from the loop goroutine (via translate), so
// map/counter mutation never races with the accept goroutine. Returns
// nil if the client ceiling is already reached; the caller must close
// nc itself in that case.
func (l *Loop) assignConn(nc net.Conn) *Conn {
	if len(l.clients) >= l.maxClients {
		_ = nc.Close()
		return nil
	}
	l.nextID++
	c := newConn(l.nextID, nc)
	l.clients[c.ID] = c
	return c
}

// drainRequests acts on every request queued during Update. Requests
// that logically produce an event (CloseClient, a failed or successful
// SpawnProcess) push that event onto l.pending for the next tick,
// since Update has already returned for this one.
func (l *Loop) drainRequests() (quit bool) {
	for _, req := range l.requests.Drain() {
		switch req.Kind {
		case RequestRedraw:
			l.redraw = true

		case RequestWriteToClient:
			if c, ok := l.clients[req.ID]; ok {
				c.enqueue(req.Payload)
				if err := c.drain(); err != nil {
					l.pending = append(l.pending, Event{Kind: EventConnectionClose, ClientID: req.ID, Err: err})
					delete(l.clients, req.ID)
					_ = c.close()
				}
			}

		case RequestCloseClient:
			if c, ok := l.clients[req.ID]; ok {
				delete(l.clients, req.ID)
				_ = c.close()
				l.pending = append(l.pending, Event{Kind: EventConnectionClose, ClientID: req.ID})
			}

		case RequestSpawnProcess:
			l.spawnProcess(req)

		case RequestWriteToProcess:
			if p, ok := l.procTags[req.Tag]; ok && p.Stdin != nil {
				_, _ = p.Stdin.Write(req.Payload)
			}

		case RequestCloseProcessInput:
			if p, ok := l.procTags[req.Tag]; ok && p.Stdin != nil {
				_ = p.Stdin.Close()
			}

		case RequestKillProcess:
			if p, ok := l.procTags[req.Tag]; ok {
				_ = p.Kill()
			}

		case RequestQuit:
			l.shutdown()
			return true
		}
	}
	return false
}

func (l *Loop) spawnProcess(req Request) {
	if len(l.procTags) >= l.maxProcesses || len(req.Command) == 0 {
		l.pending = append(l.pending, Event{Kind: EventProcessExit, Tag: req.Tag})
		return
	}

	cmd := exec.Command(req.Command[0], req.Command[1:]...)
	proc, err := l.supervisor.StartWithID(req.Tag, req.Tag, cmd)
	if err != nil {
		l.pending = append(l.pending, Event{Kind: EventProcessExit, Tag: req.Tag, Err: err})
		return
	}
	l.procTags[req.Tag] = proc
	go l.processReadLoop(req.Tag, proc)
	l.pending = append(l.pending, Event{Kind: EventProcessSpawned, Tag: req.Tag})
}

func (l *Loop) processReadLoop(tag string, p *Process) {
	if p.Stdout == nil {
		<-p.Done()
		l.ready <- readiness{kind: EventProcessExit, tag: tag, err: p.ExitError()}
		return
	}
	for {
		buf := l.pool.Get()
		n, err := p.Stdout.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			l.pool.Put(buf)
			l.ready <- readiness{kind: EventProcessOutput, tag: tag, data: data}
		} else {
			l.pool.Put(buf)
		}
		if err != nil {
			l.ready <- readiness{kind: EventProcessExit, tag: tag, err: p.ExitError()}
			return
		}
	}
}

func (l *Loop) shutdown() {
	_ = l.listener.Close()
	for _, c := range l.clients {
		_ = c.close()
	}
	l.clients = make(map[uint32]*Conn)
	l.supervisor.KillAll()
}
