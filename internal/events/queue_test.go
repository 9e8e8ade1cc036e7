package events

import (
	"testing"

	"github.com/dshills/nota/internal/buffer"
)

func TestFlipMovesWriteToRead(t *testing.T) {
	q := New()
	q.PushInsertText(1, buffer.Position{}, "hi")
	if len(q.Read()) != 0 {
		t.Fatal("expected nothing readable before flip")
	}
	q.Flip()
	read := q.Read()
	if len(read) != 1 {
		t.Fatalf("expected 1 event after flip, got %d", len(read))
	}
	if q.Text(read[0]) != "hi" {
		t.Fatalf("expected text %q, got %q", "hi", q.Text(read[0]))
	}
}

func TestFlipClearsPriorReadHalf(t *testing.T) {
	q := New()
	q.PushInsertText(1, buffer.Position{}, "first")
	q.Flip()
	q.PushInsertText(1, buffer.Position{}, "second")
	q.Flip()

	read := q.Read()
	if len(read) != 1 {
		t.Fatalf("expected 1 event, got %d", len(read))
	}
	if q.Text(read[0]) != "second" {
		t.Fatalf("expected %q, got %q", "second", q.Text(read[0]))
	}
}

func TestSinkImplementsBufferEventSink(t *testing.T) {
	q := New()
	sink := NewSink(q)
	sink.BufferInsertText(1, buffer.Position{Line: 2}, "x")
	sink.BufferDeleteText(1, buffer.Range{To: buffer.Position{Column: 3}}, "abc")
	q.Flip()

	read := q.Read()
	if len(read) != 2 {
		t.Fatalf("expected 2 events, got %d", len(read))
	}
	if read[0].Kind != BufferInsertText || read[1].Kind != BufferDeleteText {
		t.Fatalf("unexpected kinds: %v %v", read[0].Kind, read[1].Kind)
	}
}

func TestIdleEvent(t *testing.T) {
	q := New()
	q.PushIdle()
	q.Flip()
	read := q.Read()
	if len(read) != 1 || read[0].Kind != Idle {
		t.Fatalf("expected single Idle event, got %+v", read)
	}
}
