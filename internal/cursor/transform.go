package cursor

import (
	"sort"

	"github.com/dshills/nota/internal/buffer"
)

// Editor is the subset of buffer.Buffer (or buffer.Content, for callers
// that don't need history/event recording) that cursor-driven edits need:
// apply one edit, get back the range or text it touched. Routing through
// this interface rather than mutating a *buffer.Content directly lets
// multi-cursor edits flow through a buffer's own history recording and
// event emission instead of bypassing it.
type Editor interface {
	InsertText(pos buffer.Position, text string) buffer.Range
	DeleteText(r buffer.Range) string
}

// TransformPositionForInsert returns pos as it reads after text is
// inserted at at. Positions before at are unchanged; positions at or
// after at shift by the inserted span.
func TransformPositionForInsert(pos, at buffer.Position, text string) buffer.Position {
	if pos.Before(at) {
		return pos
	}
	nl, lastLen := advanceSpan(text)
	if pos.Line == at.Line {
		if nl == 0 {
			return buffer.Position{Line: pos.Line, Column: pos.Column + uint32(len(text))}
		}
		return buffer.Position{Line: pos.Line + nl, Column: lastLen + (pos.Column - at.Column)}
	}
	return buffer.Position{Line: pos.Line + nl, Column: pos.Column}
}

// TransformPositionForDelete returns pos as it reads after the text
// spanning r is deleted. Positions fully inside r collapse to r.From;
// positions at or after r.To translate back by r's span; positions before
// r.From are unchanged.
func TransformPositionForDelete(pos buffer.Position, r buffer.Range) buffer.Position {
	if pos.Before(r.From) {
		return pos
	}
	if pos.Before(r.To) {
		return r.From
	}
	if pos.Line == r.To.Line {
		return buffer.Position{Line: r.From.Line, Column: r.From.Column + (pos.Column - r.To.Column)}
	}
	return buffer.Position{Line: pos.Line - (r.To.Line - r.From.Line), Column: pos.Column}
}

func advanceSpan(text string) (nl uint32, lastLineLen uint32) {
	lastNL := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			nl++
			lastNL = i
		}
	}
	if lastNL < 0 {
		return 0, uint32(len(text))
	}
	return nl, uint32(len(text) - lastNL - 1)
}

// ShiftForEdits adjusts every cursor for edits already applied to
// content, in their application order. Used whenever an edit originates
// outside a cursor's own typing path: undo/redo, an LSP workspace edit,
// another client's edit on a shared buffer.
func (cc *Collection) ShiftForEdits(edits []buffer.Edit) {
	for i := range cc.cursors {
		c := cc.cursors[i]
		for _, e := range edits {
			switch e.Kind {
			case buffer.EditInsert:
				c.Anchor = TransformPositionForInsert(c.Anchor, e.Range.From, e.Text)
				c.Position = TransformPositionForInsert(c.Position, e.Range.From, e.Text)
			case buffer.EditDelete:
				c.Anchor = TransformPositionForDelete(c.Anchor, e.Range)
				c.Position = TransformPositionForDelete(c.Position, e.Range)
			}
		}
		cc.cursors[i] = c
	}
	cc.normalize()
}

// insertOp tracks one cursor's pending self-insertion through the
// reverse-document-order application pass.
type insertOp struct {
	idx int
	pos buffer.Position
	end buffer.Position
}

// ApplyInsertAtCursors inserts text at every cursor's own position,
// applying in reverse document order so each cursor's original coordinate
// stays valid through the pass, then back-propagates the shift from
// every insertion applied after it onto its own final resting position.
// Applies each insertion through ed, so a *buffer.Buffer editor still
// records history and emits events for every cursor's edit. Returns the
// edits applied, in application order.
func (cc *Collection) ApplyInsertAtCursors(ed Editor, text string) []buffer.Edit {
	n := len(cc.cursors)
	ops := make([]insertOp, n)
	for i, c := range cc.cursors {
		ops[i] = insertOp{idx: i, pos: c.Position}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[j].pos.Before(ops[i].pos) })

	edits := make([]buffer.Edit, 0, n)
	for i := range ops {
		ed.InsertText(ops[i].pos, text)
		nl, lastLen := advanceSpan(text)
		if nl == 0 {
			ops[i].end = buffer.Position{Line: ops[i].pos.Line, Column: ops[i].pos.Column + uint32(len(text))}
		} else {
			ops[i].end = buffer.Position{Line: ops[i].pos.Line + nl, Column: lastLen}
		}
		edits = append(edits, buffer.NewInsertEdit(ops[i].pos, text))
	}

	for i := range ops {
		final := ops[i].end
		for j := i + 1; j < len(ops); j++ {
			final = TransformPositionForInsert(final, ops[j].pos, text)
		}
		cc.cursors[ops[i].idx] = AtPosition(final)
	}
	cc.normalize()
	return edits
}

// ApplyDeleteAtCursors deletes every cursor's own selection range (a
// single-position cursor deletes nothing), applying in reverse document
// order. Every cursor, including ones with no selection of their own, is
// then folded through every applied deletion via TransformPositionForDelete
// in application order: a cursor whose own range was deleted collapses to
// that range's From (folding a position against its own deletion range
// always yields From, regardless of which endpoint it started at), and
// every other cursor translates by each deletion that landed before it,
// matching the "every cursor strictly after a deleted range shifts back
// by the deleted length" requirement. Applies each deletion through ed,
// preserving history/event recording when ed is a *buffer.Buffer.
func (cc *Collection) ApplyDeleteAtCursors(ed Editor) []buffer.Edit {
	n := len(cc.cursors)
	originals := make([]buffer.Position, n)
	for i, c := range cc.cursors {
		originals[i] = c.Position
	}

	var ranges []buffer.Range
	for _, c := range cc.cursors {
		if !c.IsEmpty() {
			ranges = append(ranges, c.Range())
		}
	}
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[j].From.Before(ranges[i].From) })

	edits := make([]buffer.Edit, 0, len(ranges))
	for _, r := range ranges {
		removed := ed.DeleteText(r)
		edits = append(edits, buffer.NewDeleteEdit(r, removed))
	}

	for i := range cc.cursors {
		final := originals[i]
		for _, r := range ranges {
			final = TransformPositionForDelete(final, r)
		}
		cc.cursors[i] = AtPosition(final)
	}
	cc.normalize()
	return edits
}
