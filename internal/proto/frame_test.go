package proto

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := Frame{Kind: KindKey, Payload: []byte{1, 2, 3}}
	if err := WriteFrame(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != want.Kind || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFrameReaderReadsSuccessiveFrames(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, Frame{Kind: KindResize, Payload: []byte{80, 0, 24, 0}})
	WriteFrame(&buf, Frame{Kind: KindRender, Payload: []byte("frame")})

	fr := NewFrameReader(&buf)
	f1, err := fr.Next()
	if err != nil || f1.Kind != KindResize {
		t.Fatalf("first frame: %+v, %v", f1, err)
	}
	f2, err := fr.Next()
	if err != nil || f2.Kind != KindRender || string(f2.Payload) != "frame" {
		t.Fatalf("second frame: %+v, %v", f2, err)
	}
	if _, err := fr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}
