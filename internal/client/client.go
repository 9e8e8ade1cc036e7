package client

import (
	"strconv"

	"github.com/dshills/nota/internal/buffer"
)

// Handle is a stable, weak reference to a Client held in the editor's
// slot list.
type Handle uint32

// Client is one attached terminal's state: its viewport/scroll, the
// buffer view it is currently looking through, its navigation history,
// and (if its process pipes stdin) the in-progress stdin buffer.
type Client struct {
	Active bool
	Handle Handle

	Viewport Viewport
	Nav      *NavHistory

	HasView bool
	View    uint32 // view.View handle, opaque to this package

	StdinBuffer    buffer.Handle
	HasStdinBuffer bool
	stdinPipe      StdinPipe
}

// NewClient returns an inactive Client ready to be assigned a handle
// and activated on attach.
func NewClient() *Client {
	return &Client{Nav: NewNavHistory()}
}

// Attach activates the client with an initial viewport size.
func (c *Client) Attach(handle Handle, cols, rows int) {
	c.Active = true
	c.Handle = handle
	c.Viewport = Viewport{Cols: cols, Rows: rows}
	c.HasView = false
	c.HasStdinBuffer = false
	c.stdinPipe = StdinPipe{}
}

// Detach marks the client inactive so its slot can be reused.
func (c *Client) Detach() {
	*c = Client{Nav: c.Nav}
}

// FeedStdin returns the complete-UTF-8 text ready to insert from a new
// chunk of piped stdin bytes, holding back any trailing partial rune
// for the next call. The caller is responsible for creating the
// pipe.<index> buffer on first call (HasStdinBuffer is still false)
// and routing the returned text through the normal edit path.
func (c *Client) FeedStdin(chunk []byte) string {
	return c.stdinPipe.Feed(chunk)
}

// StdinBufferName returns the non-file buffer name a stdin pipe buffer
// is created under for client index idx.
func StdinBufferName(idx int) string {
	return "pipe." + strconv.Itoa(idx)
}
