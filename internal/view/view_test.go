package view

import (
	"testing"

	"github.com/dshills/nota/internal/buffer"
	"github.com/dshills/nota/internal/cursor"
)

type recordingSink struct {
	inserts int
	deletes int
}

func (r *recordingSink) BufferLoaded(buffer.Handle) {}
func (r *recordingSink) BufferOpened(buffer.Handle) {}
func (r *recordingSink) BufferInsertText(buffer.Handle, buffer.Position, string) {
	r.inserts++
}
func (r *recordingSink) BufferDeleteText(buffer.Handle, buffer.Range, string) {
	r.deletes++
}
func (r *recordingSink) BufferSaved(buffer.Handle) {}
func (r *recordingSink) BufferClosed(buffer.Handle) {}

func newTestView(text string) (*View, *buffer.Buffer, *recordingSink) {
	sink := &recordingSink{}
	buf := buffer.New(1, buffer.WithSink(sink))
	if text != "" {
		buf.InsertText(buffer.Position{}, text)
	}
	sink.inserts, sink.deletes = 0, 0
	return New(1, 1, 1, buf), buf, sink
}

func TestInsertAtCursorsRecordsHistoryAndEvents(t *testing.T) {
	v, buf, sink := newTestView("a\nb")
	v.Cursors().SetAll([]cursor.Cursor{
		cursor.AtPosition(buffer.Position{Line: 0, Column: 0}),
		cursor.AtPosition(buffer.Position{Line: 1, Column: 0}),
	})

	v.InsertAtCursors("X")

	if got := buf.Content().Text(); got != "Xa\nXb" {
		t.Fatalf("unexpected content: %q", got)
	}
	if sink.inserts != 2 {
		t.Fatalf("expected 2 insert events (one per cursor), got %d", sink.inserts)
	}
	if !buf.NeedsSave() {
		t.Fatal("expected needsSave after cursor-driven insert")
	}

	cursors := v.Cursors().All()
	if len(cursors) != 2 {
		t.Fatalf("expected 2 cursors, got %d", len(cursors))
	}
	if cursors[0].Position != (buffer.Position{Line: 0, Column: 1}) {
		t.Fatalf("unexpected cursor 0 position: %v", cursors[0].Position)
	}
	if cursors[1].Position != (buffer.Position{Line: 1, Column: 1}) {
		t.Fatalf("unexpected cursor 1 position: %v", cursors[1].Position)
	}

	buf.Undo()
	if got := buf.Content().Text(); got != "a\nb" {
		t.Fatalf("expected undo to restore original content, got %q", got)
	}
}

func TestDeleteAtCursorsRecordsHistoryAndEvents(t *testing.T) {
	v, buf, sink := newTestView("abcdef")
	v.Cursors().SetAll([]cursor.Cursor{
		cursor.NewSelection(buffer.Position{Column: 0}, buffer.Position{Column: 2}),
		cursor.NewSelection(buffer.Position{Column: 4}, buffer.Position{Column: 6}),
	})

	v.DeleteAtCursors()

	if got := buf.Content().Text(); got != "cd" {
		t.Fatalf("unexpected content: %q", got)
	}
	if sink.deletes != 2 {
		t.Fatalf("expected 2 delete events (one per cursor), got %d", sink.deletes)
	}
}

func TestUndoRedoShiftsCursors(t *testing.T) {
	v, buf, _ := newTestView("")
	v.InsertAtCursors("hello")
	if buf.Content().Text() != "hello" {
		t.Fatalf("unexpected content: %q", buf.Content().Text())
	}

	v.Undo()
	if buf.Content().Text() != "" {
		t.Fatalf("expected empty content after undo, got %q", buf.Content().Text())
	}
	if v.Cursors().Main().Position != (buffer.Position{}) {
		t.Fatalf("expected cursor back at origin after undo, got %v", v.Cursors().Main().Position)
	}

	v.Redo()
	if buf.Content().Text() != "hello" {
		t.Fatalf("expected hello after redo, got %q", buf.Content().Text())
	}
	if v.Cursors().Main().Position != (buffer.Position{Column: 5}) {
		t.Fatalf("expected cursor after redo at column 5, got %v", v.Cursors().Main().Position)
	}
}

func TestReconcileExternalEditsShiftsCursors(t *testing.T) {
	v, buf, _ := newTestView("hello world")
	v.Cursors().Set(cursor.AtPosition(buffer.Position{Column: 8}))

	buf.InsertText(buffer.Position{Column: 0}, "say ")
	v.ReconcileExternalEdits([]buffer.Edit{buffer.NewInsertEdit(buffer.Position{Column: 0}, "say ")})

	if v.Cursors().Main().Position != (buffer.Position{Column: 12}) {
		t.Fatalf("expected cursor shifted by external insert, got %v", v.Cursors().Main().Position)
	}
}
