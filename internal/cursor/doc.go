// Package cursor implements the editor's multi-cursor model: an
// anchor/position pair per cursor, kept sorted and merged into a
// non-overlapping collection, with a tracked "main" cursor and the
// transform rules that keep every cursor correct across the edits the
// other cursors in the same collection make.
//
// A Cursor's Position is where typing would occur; Anchor is where a
// selection (if any) started. Anchor == Position means no selection.
//
//	cc := cursor.NewCollection(buffer.Position{})
//	cc.Add(cursor.AtPosition(buffer.Position{Line: 1}))
//	cc.ApplyInsertAtCursors(buf, "X") // every cursor's own position, in
//	                                  // reverse document order, then
//	                                  // shifted for edits after it
//
// Package cursor imports internal/buffer for Position/Range but is never
// imported back, keeping the dependency one-directional.
package cursor
