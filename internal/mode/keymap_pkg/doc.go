// Package keymap resolves a key sequence to a mode.Action name before a
// mode's own HandleUnmapped dispatch gets a chance at it, so a `:map`
// command the user ran overrides the built-in vocabulary for that one
// binding. internal/editor's lookupUserBinding is the one caller: it
// looks up a single incoming key event, one Registry shared across every
// client session.
//
// # Key Concepts
//
// Keymap: one named, orderable collection of bindings — nota's own
// defaults and each `:map` pair both produce one.
//
// Binding: a key sequence, the action name it runs, and an optional
// "when" condition.
//
// Registry: holds every registered Keymap and answers Lookup/HasPrefix
// queries against all of them at once via a shared prefix tree.
//
// # Binding Precedence
//
// When more than one binding matches, BindingMatch.Less (via
// CalculateScore) orders them by:
//  1. Keymap.Priority, higher first
//  2. mode-specific over global
//  3. filetype-specific over any-filetype
//
// # Key Sequence Parsing
//
//	"j"        single key
//	"g g"      two-key chord
//	"C-s"      Ctrl+S, vim notation
//	"<C-S-a>"  Ctrl+Shift+A, angle-bracket notation
//
// # Conditional Bindings
//
//	b := Binding{Keys: "C-s", Action: "buffer.save", When: "editorTextFocus && !editorReadonly"}
//
// # Usage
//
//	reg := keymap.NewRegistry()
//	km := keymap.NewKeymap("user:normal:C-s").ForMode("normal")
//	km.Add("C-s", "buffer.save")
//	reg.Register(km)
//
//	ctx := keymap.NewLookupContext()
//	ctx.Mode = "normal"
//	if b := reg.Lookup(key_pkg.NewSequenceFrom(ev), ctx); b != nil {
//	    // dispatch mode.Action{Name: b.Action, Args: b.Args}
//	}
package keymap
