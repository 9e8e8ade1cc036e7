package proto

import (
	"bufio"
	"io"
)

// Kind tags a frame's payload shape. Each client->server frame is one
// input event; each server->client frame is one rendered update.
type Kind uint8

const (
	// KindKey carries raw bytes read from the client's terminal stdin,
	// exactly as os.Stdin.Read returned them; the server decodes escape
	// sequences, not the client.
	KindKey Kind = iota
	// KindResize carries a new viewport size (cols, rows).
	KindResize
	// KindStdin carries raw bytes piped into the client's stdin.
	KindStdin
	// KindRender carries opaque rendered frame bytes, server->client.
	KindRender
)

// Frame is one length-prefixed message on the client<->server socket:
// a one-byte Kind tag followed by a u32-length-prefixed payload.
type Frame struct {
	Kind    Kind
	Payload []byte
}

// WriteFrame writes f to w as `kind:u8, len:u32, payload`.
func WriteFrame(w io.Writer, f Frame) error {
	enc := NewWriter(w)
	if err := enc.WriteU8(uint8(f.Kind)); err != nil {
		return err
	}
	return enc.WriteBytes(f.Payload)
}

// ReadFrame reads one Frame from r, blocking until a full frame has
// arrived or r returns an error (including io.EOF on a clean close).
func ReadFrame(r io.Reader) (Frame, error) {
	dec := NewReader(r)
	kind, err := dec.ReadU8()
	if err != nil {
		return Frame{}, err
	}
	payload, err := dec.ReadBytes()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Kind: Kind(kind), Payload: payload}, nil
}

// FrameReader buffers a connection for repeated ReadFrame calls without
// re-wrapping it each time.
type FrameReader struct {
	br *bufio.Reader
}

// NewFrameReader wraps r in a buffered reader sized for typical
// keystroke/render frame traffic.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{br: bufio.NewReaderSize(r, 32*1024)}
}

// Next reads the next frame from the underlying connection.
func (fr *FrameReader) Next() (Frame, error) {
	return ReadFrame(fr.br)
}
