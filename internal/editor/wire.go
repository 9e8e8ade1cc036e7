package editor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/nota/internal/mode/key_pkg"
	"github.com/dshills/nota/internal/proto"
)

// frameDecoder incrementally extracts proto.Frames (u8 kind, u32 length,
// payload) out of a byte stream that arrives split across arbitrary
// platform.EventConnectionOutput chunk boundaries, the same pull-style
// shape internal/lsp.FrameDecoder uses for the LSP base protocol.
type frameDecoder struct {
	buf []byte
}

// Feed appends data and returns every complete frame it can extract,
// leaving a trailing partial frame buffered for the next call.
func (d *frameDecoder) Feed(data []byte) []proto.Frame {
	d.buf = append(d.buf, data...)

	var frames []proto.Frame
	for {
		if len(d.buf) < 5 {
			break
		}
		kind := proto.Kind(d.buf[0])
		length := binary.LittleEndian.Uint32(d.buf[1:5])
		total := 5 + int(length)
		if len(d.buf) < total {
			break
		}
		payload := make([]byte, length)
		copy(payload, d.buf[5:total])
		frames = append(frames, proto.Frame{Kind: kind, Payload: payload})
		d.buf = d.buf[total:]
	}
	return frames
}

// encodeRender turns a snapshot into the literal bytes the client writes
// to stdout. The client never interprets a render frame (it is a thin
// relay, see §6), so those bytes must already be a complete terminal
// redraw: this produces a minimal plain ANSI frame (clear, each visible
// line, a reverse-video status line, then a cursor placement), not a
// cell-grid renderer in the teacher's tcell-backed sense — attribute runs,
// syntax color, and scroll-region optimization are the excluded
// renderer's job (see DESIGN.md); this writes one full frame per changed
// tick.
func encodeRender(snap renderSnapshot) []byte {
	var buf bytes.Buffer
	buf.WriteString(ansiClearHome)
	for _, line := range snap.Lines {
		buf.WriteString(line)
		buf.WriteString(ansiClearEOL)
		buf.WriteString("\r\n")
	}
	buf.WriteString(ansiReverseVideo)
	buf.WriteString(snap.StatusLine)
	buf.WriteString(ansiClearEOL)
	buf.WriteString(ansiReset)
	row := int(snap.CursorLine) - snap.Scroll + 1
	if row < 1 {
		row = 1
	}
	fmt.Fprintf(&buf, ansiCursorTo, row, snap.CursorCol+1)
	return buf.Bytes()
}

const (
	ansiClearHome    = "\x1b[H\x1b[2J"
	ansiClearEOL     = "\x1b[K"
	ansiReverseVideo = "\x1b[7m"
	ansiReset        = "\x1b[0m"
	ansiCursorTo     = "\x1b[%d;%dH"
)

// keyDecoder turns the raw bytes a client relays verbatim from its
// terminal's stdin (KindKey payloads) into key_pkg.Events. The client
// never parses terminal escape sequences itself (§6: a thin relay), so
// a KindKey payload is just whatever os.Stdin.Read returned, possibly
// splitting one escape sequence or one multi-byte rune across two
// payloads; Feed buffers a trailing partial sequence the same way
// frameDecoder buffers a trailing partial frame.
//
// This covers plain runes, Enter/Tab/Backspace/Delete/Escape, arrow
// keys, Home/End, and Page Up/Down, plus Ctrl+letter. Anything beyond
// that (function keys, bracketed paste, the kitty keyboard protocol)
// is the excluded full-terminal-input-parser's job.
type keyDecoder struct {
	buf []byte
}

// Feed appends data and returns every key event it can decode from the
// buffered bytes, leaving a trailing partial escape sequence or UTF-8
// rune for the next call.
func (d *keyDecoder) Feed(data []byte) []key_pkg.Event {
	d.buf = append(d.buf, data...)
	var evs []key_pkg.Event
	for len(d.buf) > 0 {
		ev, n, ok := decodeOneKey(d.buf)
		if !ok {
			break
		}
		evs = append(evs, ev)
		d.buf = d.buf[n:]
	}
	return evs
}

// decodeOneKey decodes the key event at the front of b, returning how
// many bytes it consumed. ok is false when b holds an incomplete
// sequence that more input could still complete.
func decodeOneKey(b []byte) (ev key_pkg.Event, n int, ok bool) {
	switch b[0] {
	case 0x1b:
		return decodeEscape(b)
	case '\r', '\n':
		return key_pkg.NewSpecialEvent(key_pkg.KeyEnter, key_pkg.ModNone), 1, true
	case '\t':
		return key_pkg.NewSpecialEvent(key_pkg.KeyTab, key_pkg.ModNone), 1, true
	case 0x7f, 0x08:
		return key_pkg.NewSpecialEvent(key_pkg.KeyBackspace, key_pkg.ModNone), 1, true
	}
	if b[0] < 0x20 {
		// Terminals send control codes 1-26 for Ctrl+A..Ctrl+Z.
		return key_pkg.NewRuneEvent(rune('a'+b[0]-1), key_pkg.ModCtrl), 1, true
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		if len(b) < utf8.UTFMax {
			return key_pkg.Event{}, 0, false
		}
		return key_pkg.NewRuneEvent(rune(b[0]), key_pkg.ModNone), 1, true
	}
	return key_pkg.NewRuneEvent(r, key_pkg.ModNone), size, true
}

// decodeEscape decodes a CSI sequence (ESC '[' ...) or a bare Escape
// key press starting at b[0] == 0x1b.
func decodeEscape(b []byte) (ev key_pkg.Event, n int, ok bool) {
	if len(b) < 2 {
		return key_pkg.Event{}, 0, false
	}
	if b[1] != '[' {
		return key_pkg.NewSpecialEvent(key_pkg.KeyEscape, key_pkg.ModNone), 1, true
	}
	if len(b) < 3 {
		return key_pkg.Event{}, 0, false
	}
	switch b[2] {
	case 'A':
		return key_pkg.NewSpecialEvent(key_pkg.KeyUp, key_pkg.ModNone), 3, true
	case 'B':
		return key_pkg.NewSpecialEvent(key_pkg.KeyDown, key_pkg.ModNone), 3, true
	case 'C':
		return key_pkg.NewSpecialEvent(key_pkg.KeyRight, key_pkg.ModNone), 3, true
	case 'D':
		return key_pkg.NewSpecialEvent(key_pkg.KeyLeft, key_pkg.ModNone), 3, true
	case 'H':
		return key_pkg.NewSpecialEvent(key_pkg.KeyHome, key_pkg.ModNone), 3, true
	case 'F':
		return key_pkg.NewSpecialEvent(key_pkg.KeyEnd, key_pkg.ModNone), 3, true
	case '3', '5', '6':
		if len(b) < 4 {
			return key_pkg.Event{}, 0, false
		}
		if b[3] != '~' {
			return key_pkg.NewSpecialEvent(key_pkg.KeyEscape, key_pkg.ModNone), 1, true
		}
		switch b[2] {
		case '3':
			return key_pkg.NewSpecialEvent(key_pkg.KeyDelete, key_pkg.ModNone), 4, true
		case '5':
			return key_pkg.NewSpecialEvent(key_pkg.KeyPageUp, key_pkg.ModNone), 4, true
		default:
			return key_pkg.NewSpecialEvent(key_pkg.KeyPageDown, key_pkg.ModNone), 4, true
		}
	}
	// Unrecognized CSI sequence: drop the ESC alone so the rest of the
	// stream isn't blocked behind it.
	return key_pkg.NewSpecialEvent(key_pkg.KeyEscape, key_pkg.ModNone), 1, true
}

// decodeResize parses a KindResize payload (u32 cols, u32 rows).
func decodeResize(payload []byte) (cols, rows int, err error) {
	r := proto.NewReader(bytes.NewReader(payload))
	c, err := r.ReadU32()
	if err != nil {
		return 0, 0, err
	}
	rr, err := r.ReadU32()
	if err != nil {
		return 0, 0, err
	}
	return int(c), int(rr), nil
}

// renderSnapshot is the server's view of what a client's terminal should
// show after a tick: the visible line range plus cursor and status
// state. clientSession.snapshot builds one for Editor.renderTo, which
// sends it only when its encoding differs from the last one sent.
type renderSnapshot struct {
	Lines      []string
	Scroll     int
	CursorLine uint32
	CursorCol  uint32
	Modified   bool
	StatusLine string
}
