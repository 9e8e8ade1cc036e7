package editor

import "strconv"

// sessionVariables answers internal/command's @name(args) variables
// (see command.VariableResolver) against one client session's state. A
// fresh value is built per mode.Context rather than cached, since the
// session's view and register can change between key events.
type sessionVariables struct {
	ed *Editor
	cs *clientSession
}

// BufferIndex returns cs's current buffer's position in the editor's
// sorted buffer list, for @buffer-index().
func (sv sessionVariables) BufferIndex() (string, bool) {
	if !sv.cs.hasView {
		return "", false
	}
	h := sv.cs.view.BufferHandle()
	for i, bh := range sortedBufferHandles(sv.ed.buffers) {
		if bh == h {
			return strconv.Itoa(i), true
		}
	}
	return "", false
}

// BufferPath resolves @buffer-path() (args == "", the session's current
// buffer) or @buffer-path(<index>) (a slot index from @buffer-index()).
func (sv sessionVariables) BufferPath(args string) (string, bool) {
	if args == "" {
		if !sv.cs.hasView {
			return "", false
		}
		path := sv.cs.view.Buffer().Path()
		return path, path != ""
	}
	idx, err := strconv.Atoi(args)
	if err != nil {
		return "", false
	}
	handles := sortedBufferHandles(sv.ed.buffers)
	if idx < 0 || idx >= len(handles) {
		return "", false
	}
	path := sv.ed.buffers[handles[idx]].Path()
	return path, path != ""
}

// bufferedMode is satisfied by any mode that owns a single-line input
// buffer (CommandMode, ReadLineMode), without internal/editor needing
// to import internal/mode's concrete types.
type bufferedMode interface {
	Buffer() string
}

// ReadlineInput returns the current session's active prompt input for
// @readline-input(). By the time a command dispatches, CommandMode has
// already cleared its own buffer, so this only ever resolves to a
// different read-line-flavored mode left active underneath it.
func (sv sessionVariables) ReadlineInput() (string, bool) {
	bm, ok := sv.cs.modes.Current().(bufferedMode)
	if !ok {
		return "", false
	}
	line := bm.Buffer()
	return line, line != ""
}

// Register resolves @register(<single-char>). nota carries only the one
// unnamed register (see clientSession.register); any single-character
// name resolves to it rather than a distinct named slot.
func (sv sessionVariables) Register(args string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	if sv.cs.register == "" {
		return "", false
	}
	return sv.cs.register, true
}
