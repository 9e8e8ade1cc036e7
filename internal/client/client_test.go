package client

import "testing"

func TestAttachActivatesClient(t *testing.T) {
	c := NewClient()
	c.Attach(3, 80, 24)
	if !c.Active || c.Handle != 3 || c.Viewport.Cols != 80 || c.Viewport.Rows != 24 {
		t.Fatalf("unexpected client state after attach: %+v", c)
	}
}

func TestDetachClearsStateButKeepsNavHistory(t *testing.T) {
	c := NewClient()
	c.Attach(1, 80, 24)
	c.Nav.Push(entry(5))
	c.Detach()

	if c.Active {
		t.Fatal("expected client inactive after detach")
	}
	if c.Nav.Len() != 1 {
		t.Fatalf("expected nav history preserved across detach, got len %d", c.Nav.Len())
	}
}

func TestStdinBufferNameFormat(t *testing.T) {
	if got := StdinBufferName(0); got != "pipe.0" {
		t.Fatalf("got %q", got)
	}
	if got := StdinBufferName(7); got != "pipe.7" {
		t.Fatalf("got %q", got)
	}
}
