// Package history implements undo/redo for buffer edits as grouped,
// replayable data rather than executable commands.
//
// # Edits, not commands
//
// An Edit is a plain value: an insert or delete over a Range, carrying the
// text needed to invert it. Callers append edits to the active group as
// they apply them to a buffer's content; CommitGroup seals the group and
// clears the redo stack.
//
//	h := history.New(1000)
//	h.BeginGroup()
//	h.Append(history.NewInsertEdit(pos, "x"))
//	h.CommitGroup()
//
//	inverse := h.Undo() // apply these to the buffer, in order
//	forward := h.Redo() // apply these to redo
//
// # Grouping
//
// GroupScope gives the same defer-friendly ergonomics a Command-pattern
// history would, without requiring Command objects:
//
//	defer h.GroupScope().End()
//	h.Append(edit1)
//	h.Append(edit2)
//
// # Arena reclamation
//
// Edit text payloads are owned by their group; groups fall off the undo
// stack (and their text with them) once the configured undo-depth bound is
// exceeded.
package history
