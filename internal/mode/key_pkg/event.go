package key

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{
		Key:       key,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// (since Shift changes the character itself).
func (e Event) IsModified() bool {
	if e.IsRune() {
		// For characters, Shift is part of the character
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// IsSpecial returns true if this is a special (non-character) key.
func (e Event) IsSpecial() bool {
	return e.Key.IsSpecial()
}

// canonicalKeyNames and vimKeyNames give String and VimString their
// per-key spelling for every special key they render differently from
// Key.String's own default name; a key absent from one of these falls
// through to Key.String itself. Keeping the two tables side by side
// makes it obvious where the two notations actually diverge (Enter vs.
// CR, PgUp vs. PageUp) instead of burying that in two parallel switches.
var (
	canonicalKeyNames = map[Key]string{
		KeyEscape: "Esc", KeyEnter: "Enter", KeyTab: "Tab",
		KeyBackspace: "BS", KeyDelete: "Del", KeyInsert: "Ins",
		KeyHome: "Home", KeyEnd: "End", KeyPageUp: "PgUp", KeyPageDown: "PgDn",
		KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right",
		KeySpace: "Space",
	}
	vimKeyNames = map[Key]string{
		KeyEscape: "Esc", KeyEnter: "CR", KeyTab: "Tab",
		KeyBackspace: "BS", KeyDelete: "Del", KeySpace: "Space",
		KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right",
		KeyHome: "Home", KeyEnd: "End", KeyPageUp: "PageUp", KeyPageDown: "PageDown",
	}
)

// modifierPrefix collects the active-modifier letters common to both
// notations (C/A/M, plus S for non-character keys — Shift is folded into
// the rune itself for a character event, so it's only ever shown on a
// special key).
func (e Event) modifierPrefix(metaLetter string) []string {
	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, metaLetter)
	}
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}
	return parts
}

// String returns a canonical string representation.
// Examples: "a", "A", "C-s", "C-A-f", "Enter", "C-Enter", "Space"
func (e Event) String() string {
	parts := e.modifierPrefix("M")

	var keyName string
	if e.Key == KeyRune {
		if e.Rune == ' ' {
			keyName = "Space"
		} else {
			keyName = string(e.Rune)
		}
	} else if name, ok := canonicalKeyNames[e.Key]; ok {
		keyName = name
	} else {
		keyName = e.Key.String()
	}

	parts = append(parts, keyName)
	return strings.Join(parts, "-")
}

// VimString returns a Vim-style string representation.
// Examples: "<Esc>", "<C-s>", "<C-A-f>", "<CR>", "<C-CR>", "a", "A"
func (e Event) VimString() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}

	parts := e.modifierPrefix("D") // Vim uses D for command/meta

	var keyName string
	if e.Key == KeyRune {
		keyName = strings.ToLower(string(e.Rune))
	} else if name, ok := vimKeyNames[e.Key]; ok {
		keyName = name
	} else {
		keyName = e.Key.String()
	}

	parts = append(parts, keyName)
	return "<" + strings.Join(parts, "-") + ">"
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}

// IsEscape returns true if this is the Escape key (with no modifiers).
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key (with no modifiers).
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// IsBackspace returns true if this is Backspace (with no modifiers).
func (e Event) IsBackspace() bool {
	return e.Key == KeyBackspace && e.Modifiers == ModNone
}

// IsTab returns true if this is Tab (with no modifiers).
func (e Event) IsTab() bool {
	return e.Key == KeyTab && e.Modifiers == ModNone
}

// Clone returns a copy of the event.
func (e Event) Clone() Event {
	return Event{
		Key:       e.Key,
		Rune:      e.Rune,
		Modifiers: e.Modifiers,
		Timestamp: e.Timestamp,
	}
}

// WithModifier returns a copy with the specified modifier added.
func (e Event) WithModifier(mod Modifier) Event {
	clone := e.Clone()
	clone.Modifiers = clone.Modifiers.With(mod)
	return clone
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String())
}
