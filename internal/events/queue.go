package events

import "github.com/dshills/nota/internal/buffer"

type half struct {
	events []Event
	arena  []byte
}

// Queue is the double-buffered edit-event stream.
type Queue struct {
	write *half
	read  *half
	a, b  half
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	q.write = &q.a
	q.read = &q.b
	return q
}

// Flip swaps the write- and read-halves and clears the new write-half
// (the prior read-half) so its arena and event slice are reused rather
// than reallocated.
func (q *Queue) Flip() {
	q.write, q.read = q.read, q.write
	q.write.events = q.write.events[:0]
	q.write.arena = q.write.arena[:0]
}

// Read returns the events available to consumers this tick.
func (q *Queue) Read() []Event {
	return q.read.events
}

// Text resolves an event's text payload from the read-half's arena. Only
// valid for events read via Read() from the same Queue before the next
// Flip.
func (q *Queue) Text(e Event) string {
	if e.textLen == 0 {
		return ""
	}
	return string(q.read.arena[e.textOff : e.textOff+e.textLen])
}

func (q *Queue) push(e Event, text string) {
	if text != "" {
		e.textOff = len(q.write.arena)
		e.textLen = len(text)
		q.write.arena = append(q.write.arena, text...)
	}
	q.write.events = append(q.write.events, e)
}

// PushBufferLoad records that a buffer's content was (re)loaded wholesale.
func (q *Queue) PushBufferLoad(h buffer.Handle) {
	q.push(Event{Kind: BufferLoad, Buffer: h}, "")
}

// PushBufferOpen records that a buffer was newly opened.
func (q *Queue) PushBufferOpen(h buffer.Handle) {
	q.push(Event{Kind: BufferOpen, Buffer: h}, "")
}

// PushInsertText records an insertion at pos of text.
func (q *Queue) PushInsertText(h buffer.Handle, pos buffer.Position, text string) {
	q.push(Event{Kind: BufferInsertText, Buffer: h, Range: buffer.Range{From: pos, To: pos}}, text)
}

// PushDeleteText records the deletion of r, whose removed text was
// `text` (needed by consumers that must reconstruct what was there, e.g.
// LSP incremental sync).
func (q *Queue) PushDeleteText(h buffer.Handle, r buffer.Range, text string) {
	q.push(Event{Kind: BufferDeleteText, Buffer: h, Range: r}, text)
}

// PushBufferSave records a save, optionally to a new path (Save As).
func (q *Queue) PushBufferSave(h buffer.Handle, newPath string) {
	e := Event{Kind: BufferSave, Buffer: h}
	if newPath != "" {
		e.NewPath = newPath
		e.HasPath = true
	}
	q.push(e, "")
}

// PushBufferClose records that a buffer was closed.
func (q *Queue) PushBufferClose(h buffer.Handle) {
	q.push(Event{Kind: BufferClose, Buffer: h}, "")
}

// PushIdle records that a tick elapsed with no other readiness, per the
// platform loop's IDLE_DURATION timeout.
func (q *Queue) PushIdle() {
	q.push(Event{Kind: Idle}, "")
}
