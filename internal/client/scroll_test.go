package client

import "testing"

func TestScrollToCursorShiftsMinimallyWhenNearby(t *testing.T) {
	v := &Viewport{Cols: 80, Rows: 25, Scroll: 10} // height = 24
	v.ScrollToCursor(12)
	if v.Scroll != 10 {
		t.Fatalf("expected no scroll for a cursor already visible, got %d", v.Scroll)
	}

	v.ScrollToCursor(40) // beyond scroll+height(34) but within +margin(12) => 46
	if v.Scroll != 17 {
		t.Fatalf("expected minimal shift to keep cursor at bottom edge, got %d", v.Scroll)
	}
}

func TestScrollToCursorRecentersWhenFarAway(t *testing.T) {
	v := &Viewport{Cols: 80, Rows: 25, Scroll: 0} // height = 24, margin = 12
	v.ScrollToCursor(1000)
	want := 1000 - 12
	if v.Scroll != want {
		t.Fatalf("expected recenter at half-height, got %d want %d", v.Scroll, want)
	}
}

func TestPlaceAtAnchor(t *testing.T) {
	v := &Viewport{Cols: 80, Rows: 25} // height = 24
	v.PlaceAtAnchor(100, AnchorTop)
	if v.Scroll != 100 {
		t.Fatalf("AnchorTop: got %d", v.Scroll)
	}
	v.PlaceAtAnchor(100, AnchorCenter)
	if v.Scroll != 100-12 {
		t.Fatalf("AnchorCenter: got %d", v.Scroll)
	}
	v.PlaceAtAnchor(100, AnchorBottom)
	if v.Scroll != 100-24+1 {
		t.Fatalf("AnchorBottom: got %d", v.Scroll)
	}
}

func TestPlaceAtAnchorClampsNonNegative(t *testing.T) {
	v := &Viewport{Cols: 80, Rows: 25}
	v.PlaceAtAnchor(2, AnchorBottom)
	if v.Scroll != 0 {
		t.Fatalf("expected clamp to 0, got %d", v.Scroll)
	}
}
