package editor

import (
	"github.com/dshills/nota/internal/mode"
	"github.com/dshills/nota/internal/mode/key_pkg"
	keymap "github.com/dshills/nota/internal/mode/keymap_pkg"
)

// loadUserKeymap reads one keymap TOML file via keymap.Loader and
// registers it with this editor's shared Registry, the same table
// cmdMap/cmdUnmap build entries into by hand.
func (ed *Editor) loadUserKeymap(path string) error {
	km, err := keymap.NewLoader().LoadFile(path)
	if err != nil {
		return err
	}
	return ed.keymaps.Register(km)
}

// userKeymapName is the registry name a `:map`/`:unmap` pair agree on
// for one (mode, keys) binding, so unmapping finds exactly the keymap
// mapping created it.
func userKeymapName(modeArg, keys string) string {
	return "user:" + modeArg + ":" + keys
}

// lookupUserBinding consults the user keybinding registry ahead of a
// mode's own hardcoded HandleUnmapped dispatch, so a `:map` the user
// ran takes precedence over the built-in vocabulary for that single key
// event. Multi-key sequences ("g g"-style chords) are outside this
// pass's scope: each incoming key_pkg.Event is looked up as a
// one-element sequence.
func (ed *Editor) lookupUserBinding(cs *clientSession, ev key_pkg.Event) *mode.Action {
	if ed.keymaps == nil {
		return nil
	}
	modeName := ""
	if cs.modes != nil && cs.modes.Current() != nil {
		modeName = cs.modes.Current().Name()
	}
	lctx := keymap.NewLookupContext()
	lctx.Mode = modeName

	b := ed.keymaps.Lookup(key_pkg.NewSequenceFrom(ev), lctx)
	if b == nil {
		return nil
	}
	return &mode.Action{Name: b.Action, Args: b.Args}
}
