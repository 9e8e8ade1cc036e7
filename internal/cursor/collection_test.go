package cursor

import (
	"testing"

	"github.com/dshills/nota/internal/buffer"
)

func p(line, col uint32) buffer.Position { return buffer.Position{Line: line, Column: col} }

func TestNormalizeSortsDisjointCursors(t *testing.T) {
	cc := NewCollectionFrom([]Cursor{
		AtPosition(p(2, 0)),
		AtPosition(p(0, 0)),
		NewSelection(p(1, 0), p(1, 5)),
	})
	all := cc.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 cursors, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].Start().Before(all[i].Start()) {
			t.Fatalf("cursors not sorted: %+v", all)
		}
	}
}

func TestNormalizeMergesOverlapping(t *testing.T) {
	cc := NewCollectionFrom([]Cursor{
		NewSelection(p(0, 0), p(0, 5)),
		NewSelection(p(0, 3), p(0, 8)),
	})
	if cc.Count() != 1 {
		t.Fatalf("expected overlapping selections to merge, got %d cursors", cc.Count())
	}
	merged := cc.All()[0]
	if merged.Start() != p(0, 0) || merged.End() != p(0, 8) {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
}

func TestNormalizeMergeKeepsEarlierAnchorLaterPosition(t *testing.T) {
	// A backward selection (Position before Anchor) merged with an
	// earlier-starting forward selection must still come out with
	// Anchor at the union's start and Position at its end.
	cc := NewCollectionFrom([]Cursor{
		NewSelection(p(0, 0), p(0, 5)),
		NewSelection(p(0, 8), p(0, 3)),
	})
	if cc.Count() != 1 {
		t.Fatalf("expected overlapping selections to merge, got %d cursors", cc.Count())
	}
	merged := cc.All()[0]
	if merged.Anchor != p(0, 0) || merged.Position != p(0, 8) {
		t.Fatalf("expected Anchor=0,Position=8, got %+v", merged)
	}
}

func TestColumnsForwardScenario(t *testing.T) {
	content := buffer.NewContentFromString("ab\nc e\nefgh\ni k\nlm")
	got := content.ColumnsForward(p(2, 2), 3)
	if got != (buffer.Position{Line: 3, Column: 0}) {
		t.Fatalf("ColumnsForward(3) from (2,2): got %v, want (3:0)", got)
	}
	got = content.ColumnsForward(p(2, 2), 7)
	if got != (buffer.Position{Line: 4, Column: 0}) {
		t.Fatalf("ColumnsForward(7) from (2,2): got %v, want (4:0)", got)
	}
}

func TestMultiCursorInsertScenario(t *testing.T) {
	content := buffer.NewContentFromString("a\nb")
	cc := NewCollectionFrom([]Cursor{AtPosition(p(0, 0)), AtPosition(p(1, 0))})

	cc.ApplyInsertAtCursors(content, "X")

	if content.Text() != "Xa\nXb" {
		t.Fatalf("unexpected content: %q", content.Text())
	}
	all := cc.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 cursors, got %d", len(all))
	}
	if all[0].Position != p(0, 1) || all[1].Position != p(1, 1) {
		t.Fatalf("unexpected cursor positions: %+v", all)
	}
}

func TestMultiCursorInsertSameLinePropagatesShift(t *testing.T) {
	content := buffer.NewContentFromString("abcdef")
	cc := NewCollectionFrom([]Cursor{AtPosition(p(0, 0)), AtPosition(p(0, 3))})

	cc.ApplyInsertAtCursors(content, "X")

	if content.Text() != "XabcXdef" {
		t.Fatalf("unexpected content: %q", content.Text())
	}
	all := cc.All()
	if all[0].Position != p(0, 1) {
		t.Fatalf("expected first cursor at col 1, got %v", all[0].Position)
	}
	if all[1].Position != p(0, 5) {
		t.Fatalf("expected second cursor at col 5 after both shifts, got %v", all[1].Position)
	}
}

func TestApplyDeleteAtCursorsCollapsesAndShifts(t *testing.T) {
	content := buffer.NewContentFromString("abcdef")
	cc := NewCollectionFrom([]Cursor{
		NewSelection(p(0, 0), p(0, 2)),
		NewSelection(p(0, 4), p(0, 6)),
	})

	cc.ApplyDeleteAtCursors(content)

	if content.Text() != "cd" {
		t.Fatalf("unexpected content after delete: %q", content.Text())
	}
	all := cc.All()
	if all[0].Position != p(0, 0) {
		t.Fatalf("expected first cursor collapsed to 0, got %v", all[0].Position)
	}
	if all[1].Position != p(0, 2) {
		t.Fatalf("expected second cursor shifted to 2, got %v", all[1].Position)
	}
}

func TestApplyDeleteAtCursorsShiftsEmptyCursorsToo(t *testing.T) {
	content := buffer.NewContentFromString("abcdefgh")
	cc := NewCollectionFrom([]Cursor{
		NewSelection(p(0, 0), p(0, 2)),
		AtPosition(p(0, 5)),
	})

	cc.ApplyDeleteAtCursors(content)

	if content.Text() != "cdefgh" {
		t.Fatalf("unexpected content after delete: %q", content.Text())
	}
	all := cc.All()
	if all[0].Position != p(0, 0) {
		t.Fatalf("expected deleted-selection cursor collapsed to 0, got %v", all[0].Position)
	}
	if all[1].Position != p(0, 3) {
		t.Fatalf("expected cursor with no selection of its own to still shift to 3, got %v", all[1].Position)
	}
}

func TestShiftForEditsTransformsOtherCursors(t *testing.T) {
	cc := NewCollectionFrom([]Cursor{AtPosition(p(0, 5))})
	cc.ShiftForEdits([]buffer.Edit{buffer.NewInsertEdit(p(0, 0), "XXX")})
	if cc.Main().Position != p(0, 8) {
		t.Fatalf("expected cursor shifted to col 8, got %v", cc.Main().Position)
	}
}
