// Package buffer implements the editor's text documents.
//
// A Buffer pairs line-indexed Content (backed by the kernel's immutable
// rope) with a history.History for grouped undo/redo, optional file I/O,
// and the Properties that gate saving and word-database participation.
// Buffer never imports the event-queue package; it reports every mutation
// through the small EventSink interface handed to it at construction,
// keeping the dependency one-directional.
//
// Position and Range model a buffer-local (line, byte-column) coordinate
// space; Content exposes the word- and column-motion arithmetic built on
// top of it.
package buffer
