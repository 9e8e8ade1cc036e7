package cursor

import (
	"fmt"

	"github.com/dshills/nota/internal/buffer"
)

// Cursor is one insertion point or selection within a buffer. Position is
// where typing would occur; Anchor is where a selection started. Anchor
// equal to Position means the cursor carries no selection.
type Cursor struct {
	Anchor   buffer.Position
	Position buffer.Position
}

// AtPosition returns a cursor with no selection at p.
func AtPosition(p buffer.Position) Cursor {
	return Cursor{Anchor: p, Position: p}
}

// NewSelection returns a cursor selecting from anchor to pos.
func NewSelection(anchor, pos buffer.Position) Cursor {
	return Cursor{Anchor: anchor, Position: pos}
}

// IsEmpty reports whether the cursor has no selection extent.
func (c Cursor) IsEmpty() bool { return c.Anchor == c.Position }

// Range returns the ordered [from, to) span the cursor covers; From <= To
// regardless of selection direction.
func (c Cursor) Range() buffer.Range {
	return buffer.NewRange(c.Anchor, c.Position)
}

// Collapse drops the selection, keeping only Position.
func (c Cursor) Collapse() Cursor {
	return Cursor{Anchor: c.Position, Position: c.Position}
}

// Start returns the earlier of Anchor/Position.
func (c Cursor) Start() buffer.Position { return buffer.MinPosition(c.Anchor, c.Position) }

// End returns the later of Anchor/Position.
func (c Cursor) End() buffer.Position { return buffer.MaxPosition(c.Anchor, c.Position) }

// String returns a human-readable form.
func (c Cursor) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("Cursor%s", c.Position)
	}
	return fmt.Sprintf("Cursor(%s->%s)", c.Anchor, c.Position)
}

// Clamp returns c with both endpoints clamped into content's valid range.
func (c Cursor) Clamp(content *buffer.Content) Cursor {
	return Cursor{Anchor: content.Clamp(c.Anchor), Position: content.Clamp(c.Position)}
}

// mergeWith returns the union of two overlapping/adjacent cursors,
// keeping the earlier anchor and later position regardless of either
// input's selection direction.
func (c Cursor) mergeWith(other Cursor) Cursor {
	from := buffer.MinPosition(c.Start(), other.Start())
	to := buffer.MaxPosition(c.End(), other.End())
	return Cursor{Anchor: from, Position: to}
}
