package session

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestNameIsStableForSameDirectory(t *testing.T) {
	dir := t.TempDir()
	n1, err := Name(dir)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Name(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n1 != n2 {
		t.Fatalf("expected stable name, got %q then %q", n1, n2)
	}
}

func TestNameDiffersAcrossDirectories(t *testing.T) {
	a, _ := Name(t.TempDir())
	b, _ := Name(t.TempDir())
	if a == b {
		t.Fatal("expected distinct names for distinct directories")
	}
}

func TestProbeFalseWhenNothingListening(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sock")
	if Probe(path) {
		t.Fatal("expected no server listening on a path nobody bound")
	}
}

func TestProbeTrueWhenListenerPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	if !Probe(path) {
		t.Fatal("expected Probe to detect the listening socket")
	}
}

func TestRemoveStaleSocketIgnoresMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing")
	if err := RemoveStaleSocket(path); err != nil {
		t.Fatalf("expected no error removing a nonexistent socket, got %v", err)
	}
}

func TestEnsureSocketDirCreatesParent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sock")
	if err := EnsureSocketDir(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Fatalf("expected parent dir to exist: %v", err)
	}
}
