package buffer

import (
	"os"
	"path/filepath"
	"testing"
)

type recordingSink struct {
	inserts []string
	deletes []string
	saved   []Handle
	closed  []Handle
}

func (r *recordingSink) BufferLoaded(Handle) {}
func (r *recordingSink) BufferOpened(Handle) {}
func (r *recordingSink) BufferInsertText(h Handle, at Position, text string) {
	r.inserts = append(r.inserts, text)
}
func (r *recordingSink) BufferDeleteText(h Handle, rng Range, text string) {
	r.deletes = append(r.deletes, text)
}
func (r *recordingSink) BufferSaved(h Handle) { r.saved = append(r.saved, h) }
func (r *recordingSink) BufferClosed(h Handle) { r.closed = append(r.closed, h) }

func TestNewBufferIsScratch(t *testing.T) {
	b := New(1)
	if b.Properties().IsFile {
		t.Fatal("expected scratch buffer to not be file-backed")
	}
	if b.Content().Text() != "" {
		t.Fatalf("expected empty content, got %q", b.Content().Text())
	}
}

func TestInsertDeleteRoundTripsThroughUndo(t *testing.T) {
	sink := &recordingSink{}
	b := New(1, WithSink(sink))

	b.InsertText(Position{}, "hello")
	if b.Content().Text() != "hello" {
		t.Fatalf("unexpected content after insert: %q", b.Content().Text())
	}
	if !b.NeedsSave() {
		t.Fatal("expected needsSave after insert")
	}

	b.Undo()
	if b.Content().Text() != "" {
		t.Fatalf("expected empty content after undo, got %q", b.Content().Text())
	}

	b.Redo()
	if b.Content().Text() != "hello" {
		t.Fatalf("expected hello after redo, got %q", b.Content().Text())
	}

	if len(sink.inserts) != 2 {
		t.Fatalf("expected 2 insert notifications (direct + redo), got %d", len(sink.inserts))
	}
	if len(sink.deletes) != 1 {
		t.Fatalf("expected 1 delete notification (undo), got %d", len(sink.deletes))
	}
}

func TestBeginEditGroupNesting(t *testing.T) {
	b := New(1)
	b.BeginEditGroup()
	b.InsertText(Position{}, "a")
	b.InsertText(Position{Column: 1}, "b")
	b.CommitEditGroup()

	b.Undo()
	if b.Content().Text() != "" {
		t.Fatalf("expected grouped edits to undo together, got %q", b.Content().Text())
	}
}

func TestOpenSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Open(1, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.SyntaxBinding() != "go" {
		t.Fatalf("expected go syntax binding, got %q", b.SyntaxBinding())
	}
	if !b.Properties().IsFile {
		t.Fatal("expected file-backed buffer")
	}

	b.InsertText(Position{Line: 1, Column: 0}, "func main() {}\n")
	if err := b.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if b.NeedsSave() {
		t.Fatal("expected needsSave false after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "package main\nfunc main() {}\n" {
		t.Fatalf("unexpected saved content: %q", data)
	}
}

func TestSaveRejectsNonFileBuffer(t *testing.T) {
	b := New(1)
	if err := b.Save(); err != ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestCloseRejectsDirtyWithoutForce(t *testing.T) {
	b := New(1)
	b.InsertText(Position{}, "x")
	if err := b.Close(false); err != ErrUnsavedChanges {
		t.Fatalf("expected ErrUnsavedChanges, got %v", err)
	}
	if err := b.Close(true); err != nil {
		t.Fatalf("expected force close to succeed, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(1, filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error opening missing file")
	}
	pe, ok := err.(*PathError)
	if !ok {
		t.Fatalf("expected *PathError, got %T", err)
	}
	if pe.Kind != IoNotFound {
		t.Fatalf("expected IoNotFound, got %v", pe.Kind)
	}
}
