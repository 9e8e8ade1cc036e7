// Package events implements the editor's double-buffered edit-event
// queue: the one mechanism by which a subsystem (buffer view cursor
// reconciliation, syntax rehighlighting, LSP didChange, the word
// database) observes another subsystem's buffer mutations, instead of
// direct cross-subsystem callbacks or pointer traversal.
//
// The editor appends events to the write-half every tick; Flip swaps
// halves at a defined point in the tick (after platform event dispatch,
// before consumers run) and clears the prior read-half's text arena.
// Consumers range over Queue.Read() during their turn in the tick.
package events

import "github.com/dshills/nota/internal/buffer"

// Kind is the closed set of edit events a Queue carries.
type Kind uint8

const (
	BufferLoad Kind = iota
	BufferOpen
	BufferInsertText
	BufferDeleteText
	BufferSave
	BufferClose
	Idle
)

func (k Kind) String() string {
	switch k {
	case BufferLoad:
		return "BufferLoad"
	case BufferOpen:
		return "BufferOpen"
	case BufferInsertText:
		return "BufferInsertText"
	case BufferDeleteText:
		return "BufferDeleteText"
	case BufferSave:
		return "BufferSave"
	case BufferClose:
		return "BufferClose"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Event is one fixed-size entry on the queue: Text's actual bytes live in
// the queue's side arena, referenced by offset/length rather than stored
// inline, so the event slice itself never holds the payload.
type Event struct {
	Kind    Kind
	Buffer  buffer.Handle
	Range   buffer.Range
	NewPath string
	HasPath bool

	textOff int
	textLen int
}
