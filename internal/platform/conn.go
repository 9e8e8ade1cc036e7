package platform

import (
	"net"
	"sync"
)

// readiness is a single readiness signal fed into the loop's central
// channel by a listener accept goroutine, a per-client reader
// goroutine, or a per-process stdout reader goroutine. Exactly one of
// raw/conn is set for connection-related readiness: raw for a not yet
// registered accept (the loop assigns its ID and starts its reader),
// conn for everything after that (only the loop goroutine registers
// clients, so map access never races with the accept goroutine).
type readiness struct {
	kind EventKind
	raw  net.Conn
	conn *Conn
	tag  string
	data []byte
	err  error
}

// Conn is one accepted client socket: the raw net.Conn plus its
// outbound byte-buffer queue. Reads happen on a dedicated goroutine
// that feeds readiness signals to the owning Loop; writes happen
// synchronously from the loop goroutine when draining requests.
type Conn struct {
	ID   uint32
	conn net.Conn

	mu      sync.Mutex
	pending [][]byte
	closed  bool
}

func newConn(id uint32, nc net.Conn) *Conn {
	return &Conn{ID: id, conn: nc}
}

// enqueue appends data to the outbound queue.
func (c *Conn) enqueue(data []byte) {
	c.mu.Lock()
	c.pending = append(c.pending, data)
	c.mu.Unlock()
}

// drain attempts to flush the outbound queue. On a partial write the
// unwritten remainder is re-queued at the front for the next attempt.
func (c *Conn) drain() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.pending) > 0 {
		buf := c.pending[0]
		n, err := c.conn.Write(buf)
		if err != nil {
			return err
		}
		if n < len(buf) {
			c.pending[0] = buf[n:]
			return nil
		}
		c.pending = c.pending[1:]
	}
	return nil
}

func (c *Conn) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

// readLoop reads chunks from the socket using a pooled buffer, copies
// them out, and reports readiness to out. It returns when the
// connection is closed or errors.
func (c *Conn) readLoop(pool *BufferPool, out chan<- readiness) {
	for {
		buf := pool.Get()
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			pool.Put(buf)
			out <- readiness{kind: EventConnectionOutput, conn: c, data: data}
		} else {
			pool.Put(buf)
		}
		if err != nil {
			out <- readiness{kind: EventConnectionClose, conn: c, err: err}
			return
		}
	}
}

// Listener accepts client connections on a local socket (typically
// "unix") and feeds EventConnectionOpen readiness to the loop.
type Listener struct {
	ln net.Listener
}

// NewListener wraps an already-bound net.Listener (the caller dials up
// the socket path via internal/session).
func NewListener(ln net.Listener) *Listener {
	return &Listener{ln: ln}
}

// acceptLoop accepts connections until the listener is closed, handing
// each raw net.Conn to the loop's central channel unregistered; the
// loop goroutine assigns the client ID and starts the reader.
func (l *Listener) acceptLoop(out chan<- readiness) {
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			return
		}
		out <- readiness{kind: EventConnectionOpen, raw: nc}
	}
}

// Close closes the underlying listener, ending acceptLoop.
func (l *Listener) Close() error {
	return l.ln.Close()
}
