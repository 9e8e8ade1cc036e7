package mode

import (
	"unicode"

	"github.com/dshills/nota/internal/mode/key_pkg"
)

// ReadLineMode is a generic single-line prompt used by plugins (a find
// file prompt, a rename prompt, a confirmation sentence) that need one
// line of input without command dispatch or history navigation.
type ReadLineMode struct {
	buffer    []rune
	cursorPos int
	prompt    string

	// onSubmit, if set, receives the line on Enter. The caller (Enter
	// set through ctx.Extra) decides whether to chain back into an
	// action, so this mode stays dispatch-agnostic like the teacher's
	// command prompt was before it grew command semantics.
	onSubmit func(line string)
	onCancel func()
}

// NewReadLineMode creates an empty read-line prompt.
func NewReadLineMode() *ReadLineMode {
	return &ReadLineMode{buffer: make([]rune, 0, 64)}
}

// Name returns the mode identifier.
func (m *ReadLineMode) Name() string { return ModeReadLine }

// DisplayName returns the human-readable mode name.
func (m *ReadLineMode) DisplayName() string { return "READLINE" }

// CursorStyle returns the cursor style for read-line mode.
func (m *ReadLineMode) CursorStyle() CursorStyle { return CursorBar }

// Enter configures the prompt text and callbacks from ctx.Extra:
// "prompt" (string), "onSubmit" (func(string)), "onCancel" (func()).
func (m *ReadLineMode) Enter(ctx *Context) error {
	m.buffer = m.buffer[:0]
	m.cursorPos = 0
	m.prompt = ""
	m.onSubmit = nil
	m.onCancel = nil

	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Extra["prompt"].(string); ok {
		m.prompt = p
	}
	if f, ok := ctx.Extra["onSubmit"].(func(string)); ok {
		m.onSubmit = f
	}
	if f, ok := ctx.Extra["onCancel"].(func()); ok {
		m.onCancel = f
	}
	return nil
}

// Exit is called when leaving read-line mode.
func (m *ReadLineMode) Exit(ctx *Context) error {
	return nil
}

// Prompt returns the prompt text shown before the input.
func (m *ReadLineMode) Prompt() string { return m.prompt }

// Buffer returns the current input.
func (m *ReadLineMode) Buffer() string { return string(m.buffer) }

// SetBuffer sets the current input, placing the cursor at its end.
func (m *ReadLineMode) SetBuffer(s string) {
	m.buffer = []rune(s)
	m.cursorPos = len(m.buffer)
}

// CursorPos returns the cursor position within the input.
func (m *ReadLineMode) CursorPos() int { return m.cursorPos }

// HandleUnmapped handles key events that have no explicit binding.
func (m *ReadLineMode) HandleUnmapped(event key.Event, ctx *Context) *UnmappedResult {
	switch {
	case event.Key == key.KeyEscape:
		if m.onCancel != nil {
			m.onCancel()
		}
		return &UnmappedResult{Consumed: true, Action: &Action{Name: "mode.normal"}}

	case event.Key == key.KeyRune && event.Rune == 'c' && event.Modifiers.HasCtrl():
		if m.onCancel != nil {
			m.onCancel()
		}
		return &UnmappedResult{Consumed: true, Action: &Action{Name: "mode.normal"}}

	case event.Key == key.KeyEnter:
		line := m.Buffer()
		if m.onSubmit != nil {
			m.onSubmit(line)
		}
		return &UnmappedResult{Consumed: true, Action: &Action{Name: "mode.normal"}}

	case event.Key == key.KeyBackspace:
		if m.cursorPos == 0 {
			return &UnmappedResult{Consumed: true}
		}
		m.buffer = append(m.buffer[:m.cursorPos-1], m.buffer[m.cursorPos:]...)
		m.cursorPos--
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyDelete:
		if m.cursorPos < len(m.buffer) {
			m.buffer = append(m.buffer[:m.cursorPos], m.buffer[m.cursorPos+1:]...)
		}
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyLeft:
		if m.cursorPos > 0 {
			m.cursorPos--
		}
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyRight:
		if m.cursorPos < len(m.buffer) {
			m.cursorPos++
		}
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyHome:
		m.cursorPos = 0
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyEnd:
		m.cursorPos = len(m.buffer)
		return &UnmappedResult{Consumed: true}
	}

	if event.IsRune() && !event.IsModified() && unicode.IsPrint(event.Rune) {
		if m.cursorPos >= len(m.buffer) {
			m.buffer = append(m.buffer, event.Rune)
		} else {
			m.buffer = append(m.buffer[:m.cursorPos+1], m.buffer[m.cursorPos:]...)
			m.buffer[m.cursorPos] = event.Rune
		}
		m.cursorPos++
		return &UnmappedResult{Consumed: true}
	}

	if event.Key == key.KeySpace && !event.IsModified() {
		m.buffer = append(m.buffer[:m.cursorPos], append([]rune{' '}, m.buffer[m.cursorPos:]...)...)
		m.cursorPos++
		return &UnmappedResult{Consumed: true}
	}

	return &UnmappedResult{Consumed: false}
}
