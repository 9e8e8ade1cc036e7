// Package key defines the key-event vocabulary the rest of nota's input
// handling builds on: the platform.Loop decodes a terminal escape
// sequence into a key.Event, mode.Manager accumulates consecutive
// events into a key.Sequence looking for a binding, and
// internal/mode/keymap_pkg matches both against the specs a keymap file
// writes, such as "Ctrl+S" or "<C-x><C-s>".
//
//   - Key identifies which key was pressed: a rune or one of the
//     special/function/arrow/keypad keys.
//   - Modifier is the bitset of Ctrl/Alt/Shift/Meta held at the time.
//   - Event pairs a Key, an optional Rune, Modifiers, and a Timestamp.
//   - Sequence is an ordered run of Events, e.g. normal mode's "d i w".
//
// # Key specifications
//
// A binding's key spec accepts three notations, all normalized by Parse:
//
//   - Simple keys: "a", "A", "1", "Enter", "Escape"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
//
// # Sequences
//
// ParseSequence accepts both a space-separated spec ("g g") and a
// continuous Vim-style one ("gg", "<C-x><C-s>"). mode.Manager builds a
// Sequence one Event at a time as keys arrive and asks the active
// keymap whether it HasPrefix of any bound sequence before deciding
// whether to wait for more input or fall through to an unmapped-key
// handler.
package key
