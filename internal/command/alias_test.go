package command

import "testing"

func TestAliasCollectionAddFind(t *testing.T) {
	c := NewAliasCollection()
	c.Add("q", "quit")
	c.Add("w", "write")

	to, ok := c.Find("q")
	if !ok || to != "quit" {
		t.Fatalf("expected q -> quit, got %q ok=%v", to, ok)
	}
	to, ok = c.Find("w")
	if !ok || to != "write" {
		t.Fatalf("expected w -> write, got %q ok=%v", to, ok)
	}
	if _, ok := c.Find("missing"); ok {
		t.Fatal("expected missing alias to be absent")
	}
}

func TestAliasCollectionReAddShiftsOffsets(t *testing.T) {
	c := NewAliasCollection()
	c.Add("q", "quit")
	c.Add("qa", "quit-all")
	c.Add("q", "quit!!") // re-add the first alias, must not corrupt qa

	to, ok := c.Find("q")
	if !ok || to != "quit!!" {
		t.Fatalf("expected updated q -> quit!!, got %q ok=%v", to, ok)
	}
	to, ok = c.Find("qa")
	if !ok || to != "quit-all" {
		t.Fatalf("expected qa untouched by reshuffle, got %q ok=%v", to, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 aliases after re-add, got %d", c.Len())
	}
}
