package client

import "testing"

func TestStdinPipeFeedsCompleteASCII(t *testing.T) {
	var p StdinPipe
	if got := p.Feed([]byte("hello")); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestStdinPipeHoldsBackPartialUTF8(t *testing.T) {
	var p StdinPipe
	full := "λ" // 2-byte UTF-8 sequence: 0xCE 0xBB
	first, second := []byte(full)[:1], []byte(full)[1:]

	got := p.Feed(first)
	if got != "" {
		t.Fatalf("expected empty output holding back partial rune, got %q", got)
	}
	got = p.Feed(second)
	if got != full {
		t.Fatalf("expected completed rune %q, got %q", full, got)
	}
}

func TestStdinPipeHoldsBackOnlyTrailingPartialRune(t *testing.T) {
	var p StdinPipe
	full := []byte("ok " + "λ")
	got := p.Feed(full[:len(full)-1]) // drop the last byte of λ
	if got != "ok " {
		t.Fatalf("expected complete prefix 'ok ', got %q", got)
	}
	got = p.Feed(full[len(full)-1:])
	if got != "λ" {
		t.Fatalf("expected completed rune, got %q", got)
	}
}
