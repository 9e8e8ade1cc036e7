package filewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.delay = 10 * time.Millisecond

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-w.Changes():
		if ch.Path != path {
			t.Fatalf("unexpected change path: %q, want %q", ch.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestUnwatchStopsNotifications(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.delay = 10 * time.Millisecond

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Unwatch(path)

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-w.Changes():
		t.Fatalf("unexpected change after Unwatch: %+v", ch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchSharedDirectoryRefCounts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.delay = 10 * time.Millisecond

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch a: %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch b: %v", err)
	}

	w.Unwatch(a)

	if err := os.WriteFile(b, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-w.Changes():
		if ch.Path != b {
			t.Fatalf("unexpected change path: %q, want %q", ch.Path, b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification on b after unwatching a")
	}
}

func TestDebounceCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.delay = 200 * time.Millisecond

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coalesced change notification")
	}

	select {
	case ch := <-w.Changes():
		t.Fatalf("expected rapid writes to coalesce into one change, got a second: %+v", ch)
	case <-time.After(300 * time.Millisecond):
	}
}
