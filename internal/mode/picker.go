package mode

import (
	"github.com/dshills/nota/internal/mode/fuzzy_pkg"
	"github.com/dshills/nota/internal/mode/key_pkg"
)

// PickerMode is a filtered selection list: type to narrow, j/k/n/p or
// the arrow keys to move the cursor, Enter to submit. Filtering is
// fuzzy-matched through fuzzy_pkg against the item set supplied at
// Enter.
type PickerMode struct {
	matcher *fuzzy.Matcher
	items   []fuzzy.Item
	query   []rune
	results []fuzzy.Result
	cursor  int

	onSubmit func(item fuzzy.Item)
	onCancel func()
}

// NewPickerMode creates a picker using fuzzy_pkg's default scoring.
func NewPickerMode() *PickerMode {
	return &PickerMode{matcher: fuzzy.NewMatcher(fuzzy.DefaultOptions())}
}

// Name returns the mode identifier.
func (m *PickerMode) Name() string { return ModePicker }

// DisplayName returns the human-readable mode name.
func (m *PickerMode) DisplayName() string { return "PICKER" }

// CursorStyle returns the cursor style for picker mode.
func (m *PickerMode) CursorStyle() CursorStyle { return CursorBlock }

// Enter configures the item set and callbacks from ctx.Extra: "items"
// ([]fuzzy.Item), "onSubmit" (func(fuzzy.Item)), "onCancel" (func()).
func (m *PickerMode) Enter(ctx *Context) error {
	m.query = m.query[:0]
	m.cursor = 0
	m.items = nil
	m.onSubmit = nil
	m.onCancel = nil

	if ctx == nil {
		m.refilter()
		return nil
	}
	if items, ok := ctx.Extra["items"].([]fuzzy.Item); ok {
		m.items = items
	}
	if f, ok := ctx.Extra["onSubmit"].(func(fuzzy.Item)); ok {
		m.onSubmit = f
	}
	if f, ok := ctx.Extra["onCancel"].(func()); ok {
		m.onCancel = f
	}
	m.refilter()
	return nil
}

// Exit is called when leaving picker mode.
func (m *PickerMode) Exit(ctx *Context) error {
	m.matcher.ClearCache()
	return nil
}

// Query returns the current filter text.
func (m *PickerMode) Query() string { return string(m.query) }

// Results returns the current filtered, scored result list.
func (m *PickerMode) Results() []fuzzy.Result { return m.results }

// Cursor returns the index of the highlighted result.
func (m *PickerMode) Cursor() int { return m.cursor }

func (m *PickerMode) refilter() {
	m.results = m.matcher.Match(string(m.query), m.items, 0)
	if m.cursor >= len(m.results) {
		m.cursor = maxInt(0, len(m.results)-1)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (m *PickerMode) moveCursor(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.results) {
		m.cursor = len(m.results) - 1
	}
}

// HandleUnmapped handles key events that have no explicit binding.
func (m *PickerMode) HandleUnmapped(event key.Event, ctx *Context) *UnmappedResult {
	switch {
	case event.Key == key.KeyEscape:
		if m.onCancel != nil {
			m.onCancel()
		}
		return &UnmappedResult{Consumed: true, Action: &Action{Name: "mode.normal"}}

	case event.Key == key.KeyEnter:
		if len(m.results) > 0 && m.onSubmit != nil {
			m.onSubmit(m.results[m.cursor].Item)
		}
		return &UnmappedResult{Consumed: true, Action: &Action{Name: "mode.normal"}}

	case event.Key == key.KeyUp:
		m.moveCursor(-1)
		return &UnmappedResult{Consumed: true}
	case event.Key == key.KeyDown:
		m.moveCursor(1)
		return &UnmappedResult{Consumed: true}

	case event.Key == key.KeyBackspace:
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
			m.refilter()
		}
		return &UnmappedResult{Consumed: true}
	}

	if event.IsRune() && !event.IsModified() {
		switch event.Rune {
		case 'j':
			m.moveCursor(1)
			return &UnmappedResult{Consumed: true}
		case 'k':
			m.moveCursor(-1)
			return &UnmappedResult{Consumed: true}
		case 'n':
			m.moveCursor(1)
			return &UnmappedResult{Consumed: true}
		case 'p':
			m.moveCursor(-1)
			return &UnmappedResult{Consumed: true}
		}
		m.query = append(m.query, event.Rune)
		m.refilter()
		return &UnmappedResult{Consumed: true}
	}

	if event.Key == key.KeySpace && !event.IsModified() {
		m.query = append(m.query, ' ')
		m.refilter()
		return &UnmappedResult{Consumed: true}
	}

	return &UnmappedResult{Consumed: false}
}
