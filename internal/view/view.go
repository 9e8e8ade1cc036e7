// Package view implements the buffer view: one client's window onto one
// buffer, carrying the cursor state and the movement/selection/editing
// operations a mode handler drives.
package view

import (
	"github.com/dshills/nota/internal/buffer"
	"github.com/dshills/nota/internal/cursor"
)

// Handle is a stable reference to a View in the editor's slot list.
type Handle uint32

// View is a (client, buffer, cursors) triple: the cursor and scroll state
// one client maintains while looking at one buffer.
type View struct {
	handle Handle
	client uint32 // opaque client handle; internal/client owns the type
	bufH   buffer.Handle
	buf    *buffer.Buffer
	cur    *cursor.Collection

	scroll int // first visible visual line
}

// New returns a view of buf for the given client, with a single cursor
// at the buffer origin.
func New(handle Handle, clientHandle uint32, bufH buffer.Handle, buf *buffer.Buffer) *View {
	return &View{
		handle: handle,
		client: clientHandle,
		bufH:   bufH,
		buf:    buf,
		cur:    cursor.NewCollection(buffer.Position{}),
	}
}

// Handle returns the view's slot handle.
func (v *View) Handle() Handle { return v.handle }

// BufferHandle returns the handle of the buffer this view looks at.
func (v *View) BufferHandle() buffer.Handle { return v.bufH }

// Buffer returns the buffer this view looks at.
func (v *View) Buffer() *buffer.Buffer { return v.buf }

// Cursors returns the view's cursor collection.
func (v *View) Cursors() *cursor.Collection { return v.cur }

// Scroll returns the first visible visual line.
func (v *View) Scroll() int { return v.scroll }

// SetScroll sets the first visible visual line, clamped to 0.
func (v *View) SetScroll(line int) {
	if line < 0 {
		line = 0
	}
	v.scroll = line
}

// InsertAtCursors inserts text at every cursor, in reverse document
// order, as one undo group. Each cursor's insertion goes through v.buf
// itself (not its Content directly), so the buffer's history and event
// sink see every cursor's edit.
func (v *View) InsertAtCursors(text string) {
	v.buf.BeginEditGroup()
	v.cur.ApplyInsertAtCursors(v.buf, text)
	v.buf.CommitEditGroup()
	v.cur.Clamp(v.buf.Content())
}

// DeleteAtCursors deletes every cursor's current selection, in reverse
// document order, as one undo group, the same way InsertAtCursors does.
func (v *View) DeleteAtCursors() {
	v.buf.BeginEditGroup()
	v.cur.ApplyDeleteAtCursors(v.buf)
	v.buf.CommitEditGroup()
	v.cur.Clamp(v.buf.Content())
}

// Undo applies the buffer's most recent undo group and reconciles the
// view's cursors against the edits it produced.
func (v *View) Undo() {
	edits := v.buf.Undo()
	v.cur.ShiftForEdits(edits)
	v.cur.Clamp(v.buf.Content())
}

// Redo applies the buffer's most recently undone group and reconciles
// cursors the same way Undo does.
func (v *View) Redo() {
	edits := v.buf.Redo()
	v.cur.ShiftForEdits(edits)
	v.cur.Clamp(v.buf.Content())
}

// ReconcileExternalEdits shifts this view's cursors for edits applied to
// its buffer by another view or subsystem (an LSP workspace edit, another
// client's concurrent edit), keeping the cursor collection sorted,
// merged, and clamped without this view having applied the edits itself.
func (v *View) ReconcileExternalEdits(edits []buffer.Edit) {
	v.cur.ShiftForEdits(edits)
	v.cur.Clamp(v.buf.Content())
}
