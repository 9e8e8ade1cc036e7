package proto

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxStringLen bounds a single length-prefixed read, so a corrupt or
// hostile length prefix cannot force an unbounded allocation.
const maxStringLen = 64 << 20

// Writer encodes wire primitives in the little-endian layout the
// client<->server socket uses.
type Writer struct {
	w   io.Writer
	buf [4]byte
}

// NewWriter wraps w for primitive encoding.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteU8 writes a single byte.
func (e *Writer) WriteU8(v uint8) error {
	e.buf[0] = v
	_, err := e.w.Write(e.buf[:1])
	return err
}

// WriteU16 writes a little-endian uint16.
func (e *Writer) WriteU16(v uint16) error {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	_, err := e.w.Write(e.buf[:2])
	return err
}

// WriteU32 writes a little-endian uint32.
func (e *Writer) WriteU32(v uint32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	_, err := e.w.Write(e.buf[:4])
	return err
}

// WriteChar writes r encoded as a u32 code point, matching the wire
// format's `char` primitive.
func (e *Writer) WriteChar(r rune) error {
	return e.WriteU32(uint32(r))
}

// WriteBytes writes a u32 length prefix followed by b.
func (e *Writer) WriteBytes(b []byte) error {
	if err := e.WriteU32(uint32(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

// WriteString writes a u32 length prefix followed by s's bytes.
func (e *Writer) WriteString(s string) error {
	return e.WriteBytes([]byte(s))
}

// Reader decodes wire primitives in the little-endian layout the
// client<->server socket uses.
type Reader struct {
	r   io.Reader
	buf [4]byte
}

// NewReader wraps r for primitive decoding.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadU8 reads a single byte.
func (d *Reader) ReadU8() (uint8, error) {
	if _, err := io.ReadFull(d.r, d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// ReadU16 reads a little-endian uint16.
func (d *Reader) ReadU16() (uint16, error) {
	if _, err := io.ReadFull(d.r, d.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.buf[:2]), nil
}

// ReadU32 reads a little-endian uint32.
func (d *Reader) ReadU32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.buf[:4]), nil
}

// ReadChar reads a u32 code point and validates it as a rune.
func (d *Reader) ReadChar() (rune, error) {
	v, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if r < 0 || r > 0x10FFFF {
		return 0, fmt.Errorf("proto: invalid char code point %d", v)
	}
	return r, nil
}

// ReadBytes reads a u32 length prefix then that many bytes.
func (d *Reader) ReadBytes() ([]byte, error) {
	n, err := d.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > maxStringLen {
		return nil, fmt.Errorf("proto: length %d exceeds max %d", n, maxStringLen)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadString reads a u32 length prefix then that many bytes as a string.
func (d *Reader) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
