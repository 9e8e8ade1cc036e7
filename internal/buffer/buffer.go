// Package buffer implements the editor's in-memory text documents:
// line-indexed content with position arithmetic, grouped undo/redo, file
// I/O, and the properties that gate saving and word-database
// participation.
package buffer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/nota/internal/history"
)

// Properties are the per-buffer flags that gate file I/O and the ambient
// subsystems that observe edits.
type Properties struct {
	// IsFile marks the buffer as bound to a path on disk. Stdin-pipe and
	// scratch buffers set this false, which also excludes them from
	// save-all.
	IsFile bool
	// SavingEnabled gates Save; false for read-only views (e.g. a diff
	// preview) that happen to be file-backed.
	SavingEnabled bool
	// WordDatabaseEnabled controls whether InsertText/DeleteText feed the
	// word database used for Insert-mode completion.
	WordDatabaseEnabled bool
	// LogOnly marks buffers such as the LSP server log: append-only,
	// never saved, never sourced for word completion.
	LogOnly bool
}

// DefaultProperties are the properties given to a buffer opened from a
// file path.
func DefaultProperties() Properties {
	return Properties{IsFile: true, SavingEnabled: true, WordDatabaseEnabled: true}
}

// ScratchProperties are the properties for an in-memory buffer with no
// disk binding (stdin pipes, the LSP log, `:new`-style scratch buffers).
func ScratchProperties() Properties {
	return Properties{WordDatabaseEnabled: true}
}

// EventSink receives notification of buffer mutations. It is the one
// boundary through which the buffer package talks to the rest of the
// editor — buffer never imports the event-queue package, it is handed a
// sink that implements this interface.
type EventSink interface {
	BufferLoaded(h Handle)
	BufferOpened(h Handle)
	BufferInsertText(h Handle, at Position, text string)
	BufferDeleteText(h Handle, r Range, text string)
	BufferSaved(h Handle)
	BufferClosed(h Handle)
}

type nopSink struct{}

func (nopSink) BufferLoaded(Handle)                      {}
func (nopSink) BufferOpened(Handle)                       {}
func (nopSink) BufferInsertText(Handle, Position, string) {}
func (nopSink) BufferDeleteText(Handle, Range, string)    {}
func (nopSink) BufferSaved(Handle)                        {}
func (nopSink) BufferClosed(Handle)                       {}

// NopSink is an EventSink that discards every notification, useful in
// tests that exercise Buffer without an editor wired up.
var NopSink EventSink = nopSink{}

// Buffer is an in-memory text document: content, undo/redo history, an
// optional syntax binding, file-I/O properties, and a dirty flag.
type Buffer struct {
	handle Handle
	sink   EventSink

	path           string
	content        *Content
	hist           *history.History
	syntaxBinding  string
	properties     Properties
	needsSave      bool
	lineEnding     LineEnding
	tabSize        int
	indentWithTabs bool
	diskModTime    time.Time
	groupDepth     int
}

// Option configures a Buffer at construction.
type Option func(*Buffer)

// WithTabSize sets the tab width used by indentation and visual-column
// arithmetic.
func WithTabSize(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.tabSize = n
		}
	}
}

// WithIndentWithTabs selects tab-based (vs. space-based) indentation.
func WithIndentWithTabs(v bool) Option {
	return func(b *Buffer) { b.indentWithTabs = v }
}

// WithSink attaches the event sink edits are reported through.
func WithSink(s EventSink) Option {
	return func(b *Buffer) {
		if s != nil {
			b.sink = s
		}
	}
}

// WithProperties overrides the default properties.
func WithProperties(p Properties) Option {
	return func(b *Buffer) { b.properties = p }
}

// WithUndoDepth overrides the default 1000-group undo history depth.
func WithUndoDepth(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.hist = history.New(n)
		}
	}
}

// New constructs an empty, non-file-backed buffer.
func New(handle Handle, opts ...Option) *Buffer {
	b := &Buffer{
		handle:     handle,
		sink:       NopSink,
		content:    NewContent(),
		hist:       history.New(1000),
		properties: ScratchProperties(),
		lineEnding: LineEndingLF,
		tabSize:    4,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Open loads path from disk into a new file-backed Buffer.
func Open(handle Handle, path string, opts ...Option) (*Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, NewPathError("open", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, NewPathError("open", path, err)
	}
	if info.IsDir() {
		return nil, &PathError{Op: "open", Path: path, Kind: IoOther, Err: ErrIsDirectory}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, NewPathError("open", path, err)
	}
	text := string(data)

	b := New(handle, opts...)
	b.path = abs
	b.properties = DefaultProperties()
	b.lineEnding = DetectLineEnding(text)
	b.content = NewContentFromString(text)
	b.syntaxBinding = languageIDForPath(abs)
	b.diskModTime = info.ModTime()
	for _, o := range opts {
		o(b)
	}
	b.sink.BufferLoaded(handle)
	b.sink.BufferOpened(handle)
	return b, nil
}

// Handle returns the buffer's slot handle.
func (b *Buffer) Handle() Handle { return b.handle }

// Path returns the absolute file path, or "" for a non-file buffer.
func (b *Buffer) Path() string { return b.path }

// Properties returns the buffer's current properties.
func (b *Buffer) Properties() Properties { return b.properties }

// SetProperties replaces the buffer's properties.
func (b *Buffer) SetProperties(p Properties) { b.properties = p }

// Content returns the buffer's text content accessor.
func (b *Buffer) Content() *Content { return b.content }

// TabSize returns the configured tab width.
func (b *Buffer) TabSize() int { return b.tabSize }

// IndentWithTabs reports whether indentation inserts use tabs.
func (b *Buffer) IndentWithTabs() bool { return b.indentWithTabs }

// NeedsSave reports whether the buffer has edits since its last load/save.
func (b *Buffer) NeedsSave() bool { return b.needsSave }

// SyntaxBinding returns the language/syntax identifier bound to the
// buffer, or "" if none.
func (b *Buffer) SyntaxBinding() string { return b.syntaxBinding }

// SetSyntaxBinding binds a language identifier to the buffer.
func (b *Buffer) SetSyntaxBinding(id string) { b.syntaxBinding = id }

// BeginEditGroup opens a new undo group; edits applied via InsertText and
// DeleteText before the matching CommitEditGroup undo/redo together.
// Nesting is supported: only the outermost Begin/Commit pair opens and
// seals the underlying history group.
func (b *Buffer) BeginEditGroup() {
	if b.groupDepth == 0 {
		b.hist.BeginGroup()
	}
	b.groupDepth++
}

// CommitEditGroup closes one level of BeginEditGroup nesting, sealing the
// undo group once the outermost call returns.
func (b *Buffer) CommitEditGroup() {
	if b.groupDepth == 0 {
		return
	}
	b.groupDepth--
	if b.groupDepth == 0 {
		b.hist.CommitGroup()
	}
}

// InsertText inserts text at pos, recording the edit into the currently
// open undo group (or, if no group is open, a single-edit group of its
// own), and reports it to the event sink.
func (b *Buffer) InsertText(pos Position, text string) Range {
	r := b.content.InsertText(pos, text)
	b.recordAndEmitInsert(pos, text)
	return r
}

// DeleteText deletes the text spanning r, recording and reporting the
// edit the same way InsertText does.
func (b *Buffer) DeleteText(r Range) string {
	removed := b.content.DeleteText(r)
	b.recordAndEmitDelete(r, removed)
	return removed
}

func (b *Buffer) recordAndEmitInsert(pos Position, text string) {
	b.needsSave = true
	wasOpen := b.histGroupOpen()
	if !wasOpen {
		b.hist.BeginGroup()
	}
	b.hist.Append(history.NewInsertEdit(toHistPos(pos), text))
	if !wasOpen {
		b.hist.CommitGroup()
	}
	b.sink.BufferInsertText(b.handle, pos, text)
}

func (b *Buffer) recordAndEmitDelete(r Range, text string) {
	b.needsSave = true
	wasOpen := b.histGroupOpen()
	if !wasOpen {
		b.hist.BeginGroup()
	}
	b.hist.Append(history.NewDeleteEdit(toHistRange(r), text))
	if !wasOpen {
		b.hist.CommitGroup()
	}
	b.sink.BufferDeleteText(b.handle, r, text)
}

// histGroupOpen reports whether a group is currently open. History does
// not expose this directly since callers normally bracket their own
// groups; Buffer tracks it locally to support both explicit
// BeginEditGroup/CommitEditGroup pairs and implicit single-edit groups.
func (b *Buffer) histGroupOpen() bool {
	return b.groupDepth > 0
}

// Undo applies the most recent undo group's inverse edits to content and
// returns them, in application order, so callers (cursor reconciliation,
// the view layer) can adjust cursors the same way a live edit would.
func (b *Buffer) Undo() []Edit {
	edits := b.hist.Undo()
	return b.applyHistoryEdits(edits)
}

// Redo re-applies the most recently undone group and returns its edits.
func (b *Buffer) Redo() []Edit {
	edits := b.hist.Redo()
	return b.applyHistoryEdits(edits)
}

func (b *Buffer) applyHistoryEdits(hes []history.Edit) []Edit {
	if len(hes) == 0 {
		return nil
	}
	out := make([]Edit, 0, len(hes))
	for _, he := range hes {
		e := fromHistEdit(he)
		switch e.Kind {
		case EditInsert:
			b.content.InsertText(e.Range.From, e.Text)
			b.sink.BufferInsertText(b.handle, e.Range.From, e.Text)
		case EditDelete:
			b.content.DeleteText(e.Range)
			b.sink.BufferDeleteText(b.handle, e.Range, e.Text)
		}
		out = append(out, e)
	}
	b.needsSave = true
	return out
}

// Save writes the buffer's content to its bound path, honoring the
// original line-ending style. Returns ErrReadOnly if the buffer is not
// file-backed or saving has been disabled.
func (b *Buffer) Save() error {
	if !b.properties.IsFile || !b.properties.SavingEnabled {
		return ErrReadOnly
	}
	text := b.lineEnding.Denormalize(b.content.Text())
	if err := os.WriteFile(b.path, []byte(text), 0o644); err != nil {
		return NewPathError("save", b.path, err)
	}
	if info, err := os.Stat(b.path); err == nil {
		b.diskModTime = info.ModTime()
	}
	b.needsSave = false
	b.sink.BufferSaved(b.handle)
	return nil
}

// SaveAs writes the buffer to a new path and rebinds it there.
func (b *Buffer) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewPathError("save", path, err)
	}
	text := b.lineEnding.Denormalize(b.content.Text())
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return NewPathError("save", path, err)
	}
	b.path = abs
	b.properties.IsFile = true
	b.properties.SavingEnabled = true
	b.syntaxBinding = languageIDForPath(abs)
	if info, err := os.Stat(abs); err == nil {
		b.diskModTime = info.ModTime()
	}
	b.needsSave = false
	b.sink.BufferSaved(b.handle)
	return nil
}

// HasExternalChanges reports whether the file backing the buffer has been
// modified on disk since it was last loaded or saved, by comparing the
// file's current mod-time with the one recorded at that load or save.
func (b *Buffer) HasExternalChanges() bool {
	if !b.properties.IsFile {
		return false
	}
	info, err := os.Stat(b.path)
	if err != nil {
		return false
	}
	return !info.ModTime().Equal(b.diskModTime)
}

// Reload replaces the buffer's content with the file's current on-disk
// contents, clearing needsSave and history. Returns ErrUnsavedChanges if
// the buffer is dirty and force is false.
func (b *Buffer) Reload(force bool) error {
	if b.needsSave && !force {
		return ErrUnsavedChanges
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return NewPathError("reload", b.path, err)
	}
	info, err := os.Stat(b.path)
	if err != nil {
		return NewPathError("reload", b.path, err)
	}
	text := string(data)
	b.lineEnding = DetectLineEnding(text)
	b.content = NewContentFromString(text)
	b.diskModTime = info.ModTime()
	b.needsSave = false
	b.hist = history.New(1000)
	b.sink.BufferLoaded(b.handle)
	return nil
}

// Close marks the buffer closed and notifies the sink. Returns
// ErrUnsavedChanges if the buffer is dirty and force is false.
func (b *Buffer) Close(force bool) error {
	if b.needsSave && !force {
		return ErrUnsavedChanges
	}
	b.sink.BufferClosed(b.handle)
	return nil
}

func toHistPos(p Position) history.Position {
	return history.Position{Line: p.Line, Column: p.Column}
}

func toHistRange(r Range) history.Range {
	return history.Range{From: toHistPos(r.From), To: toHistPos(r.To)}
}

func fromHistPos(p history.Position) Position {
	return Position{Line: p.Line, Column: p.Column}
}

func fromHistEdit(e history.Edit) Edit {
	kind := EditInsert
	if e.Kind == history.Delete {
		kind = EditDelete
	}
	return Edit{
		Kind:  kind,
		Range: Range{From: fromHistPos(e.Range.From), To: fromHistPos(e.Range.To)},
		Text:  e.Text,
	}
}
