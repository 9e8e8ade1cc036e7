package events

import "github.com/dshills/nota/internal/buffer"

// Sink adapts a Queue to buffer.EventSink, the interface internal/buffer
// uses to report mutations without importing this package.
type Sink struct {
	Queue *Queue
}

// NewSink returns a Sink writing into q.
func NewSink(q *Queue) Sink { return Sink{Queue: q} }

func (s Sink) BufferLoaded(h buffer.Handle) { s.Queue.PushBufferLoad(h) }
func (s Sink) BufferOpened(h buffer.Handle) { s.Queue.PushBufferOpen(h) }
func (s Sink) BufferInsertText(h buffer.Handle, at buffer.Position, text string) {
	s.Queue.PushInsertText(h, at, text)
}
func (s Sink) BufferDeleteText(h buffer.Handle, r buffer.Range, text string) {
	s.Queue.PushDeleteText(h, r, text)
}
func (s Sink) BufferSaved(h buffer.Handle) { s.Queue.PushBufferSave(h, "") }
func (s Sink) BufferClosed(h buffer.Handle) { s.Queue.PushBufferClose(h) }

var _ buffer.EventSink = Sink{}
