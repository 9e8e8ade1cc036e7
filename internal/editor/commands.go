package editor

import (
	"fmt"

	"github.com/dshills/nota/internal/command"
	keymap "github.com/dshills/nota/internal/mode/keymap_pkg"
)

// registerBuiltinCommands wires the command language's built-in verbs to
// the editor. Each Func receives the clientSession that ran it as ctx
// (set via mode.Context.Extra["editorCtx"] in modeContext), type-asserted
// here so internal/command stays free of an editor import.
func registerBuiltinCommands(reg *command.Registry, ed *Editor) {
	reg.Register(command.Spec{Name: "write", BangAllowed: true, Completions: []command.CompletionSource{command.CompleteFiles}, Func: ed.cmdWrite})
	reg.Register(command.Spec{Name: "w", BangAllowed: true, Completions: []command.CompletionSource{command.CompleteFiles}, Func: ed.cmdWrite})

	reg.Register(command.Spec{Name: "quit", BangAllowed: true, Func: ed.cmdQuit})
	reg.Register(command.Spec{Name: "q", BangAllowed: true, Func: ed.cmdQuit})

	reg.Register(command.Spec{Name: "wq", BangAllowed: true, Func: ed.cmdWriteQuit})
	reg.Register(command.Spec{Name: "x", BangAllowed: true, Func: ed.cmdWriteQuit})

	reg.Register(command.Spec{Name: "quitall", BangAllowed: true, Func: ed.cmdQuitAll})
	reg.Register(command.Spec{Name: "qa", BangAllowed: true, Func: ed.cmdQuitAll})

	reg.Register(command.Spec{Name: "wqa", BangAllowed: true, Func: ed.cmdWriteQuitAll})
	reg.Register(command.Spec{Name: "xa", BangAllowed: true, Func: ed.cmdWriteQuitAll})

	reg.Register(command.Spec{Name: "edit", Completions: []command.CompletionSource{command.CompleteFiles}, Func: ed.cmdEdit})
	reg.Register(command.Spec{Name: "e", Completions: []command.CompletionSource{command.CompleteFiles}, Func: ed.cmdEdit})

	reg.Register(command.Spec{Name: "buffer", Completions: []command.CompletionSource{command.CompleteBuffers}, Func: ed.cmdBuffer})
	reg.Register(command.Spec{Name: "b", Completions: []command.CompletionSource{command.CompleteBuffers}, Func: ed.cmdBuffer})

	reg.Register(command.Spec{Name: "map", Func: ed.cmdMap})
	reg.Register(command.Spec{Name: "unmap", Func: ed.cmdUnmap})
}

func (ed *Editor) session(io *command.IO) (*clientSession, error) {
	h, err := io.ClientHandle()
	if err != nil {
		return nil, err
	}
	cs, ok := ed.sessions[h]
	if !ok {
		return nil, command.NewError(command.ErrNoTargetClient, "")
	}
	return cs, nil
}

func (ed *Editor) cmdWrite(ctxAny any, io *command.IO) error {
	cs, err := ed.session(io)
	if err != nil {
		return err
	}
	if !cs.hasView {
		return command.NewError(command.ErrNoBufferOpened, "")
	}
	b := cs.view.Buffer()
	if path, ok := io.Args.Next(); ok {
		return b.SaveAs(path)
	}
	if !b.Properties().SavingEnabled {
		return command.NewError(command.ErrBufferWriteError, "buffer is not file-backed")
	}
	return b.Save()
}

func (ed *Editor) cmdQuit(ctxAny any, io *command.IO) error {
	cs, err := ed.session(io)
	if err != nil {
		return err
	}
	if !io.Bang && cs.hasView && cs.view.Buffer().NeedsSave() {
		return command.NewError(command.ErrUnsavedChanges, "")
	}
	io.Flow = command.Quit
	return nil
}

func (ed *Editor) cmdWriteQuit(ctxAny any, io *command.IO) error {
	if err := ed.cmdWrite(ctxAny, io); err != nil {
		return err
	}
	io.Flow = command.Quit
	return nil
}

func (ed *Editor) cmdQuitAll(ctxAny any, io *command.IO) error {
	if !io.Bang {
		if dirty := ed.modifiedFileBuffers(); len(dirty) > 0 {
			return command.NewError(command.ErrUnsavedChanges, dirty[0].Path())
		}
	}
	io.Flow = command.QuitAll
	return nil
}

func (ed *Editor) cmdWriteQuitAll(ctxAny any, io *command.IO) error {
	for _, b := range ed.modifiedFileBuffers() {
		if err := b.Save(); err != nil {
			return command.NewError(command.ErrBufferWriteError, b.Path())
		}
	}
	io.Flow = command.QuitAll
	return nil
}

func (ed *Editor) cmdEdit(ctxAny any, io *command.IO) error {
	cs, err := ed.session(io)
	if err != nil {
		return err
	}
	path, err := io.Args.Required()
	if err != nil {
		return err
	}
	if err := io.Args.AssertEmpty(); err != nil {
		return err
	}
	b, err := ed.openFile(path)
	if err != nil {
		return command.NewError(command.ErrBufferReadError, err.Error())
	}
	prev := cs.view
	v := ed.attachView(cs, b)
	v.Cursors().Clamp(b.Content())
	if prev != nil {
		_ = ed.closeBufferIfUnused(prev.BufferHandle(), false)
	}
	return nil
}

func (ed *Editor) cmdBuffer(ctxAny any, io *command.IO) error {
	cs, err := ed.session(io)
	if err != nil {
		return err
	}
	idxStr, err := io.Args.Required()
	if err != nil {
		return err
	}
	if err := io.Args.AssertEmpty(); err != nil {
		return err
	}
	target, ok := ed.bufferForPath(idxStr)
	if !ok {
		return command.NewError(command.ErrNoSuchBufferProperty, idxStr)
	}
	ed.attachView(cs, target)
	return nil
}

// cmdMap implements `:map <mode> <keys> <action>`, binding keys (in
// internal/mode/key_pkg's spec syntax, e.g. "C-s", "g g") to an action
// name in the given mode ("all" for every mode) ahead of that mode's
// own built-in key vocabulary. A rebind just re-registers the same
// keymap name, replacing the previous binding.
func (ed *Editor) cmdMap(ctxAny any, io *command.IO) error {
	modeArg, err := io.Args.Required()
	if err != nil {
		return err
	}
	keys, err := io.Args.Required()
	if err != nil {
		return err
	}
	action, err := io.Args.Required()
	if err != nil {
		return err
	}

	modeName := modeArg
	if modeArg == "all" {
		modeName = ""
	}

	km := keymap.NewKeymap(userKeymapName(modeArg, keys)).
		ForMode(modeName).
		WithSource("user").
		WithPriority(10)
	km.Add(keys, action)

	if err := ed.keymaps.Register(km); err != nil {
		return command.NewError(command.ErrKeyParseError, err.Error())
	}
	return nil
}

// cmdUnmap implements `:unmap <mode> <keys>`, removing a binding a
// prior `:map` created for exactly that (mode, keys) pair.
func (ed *Editor) cmdUnmap(ctxAny any, io *command.IO) error {
	modeArg, err := io.Args.Required()
	if err != nil {
		return err
	}
	keys, err := io.Args.Required()
	if err != nil {
		return err
	}
	if err := io.Args.AssertEmpty(); err != nil {
		return err
	}

	name := userKeymapName(modeArg, keys)
	if ed.keymaps.Get(name) == nil {
		return command.NewError(command.ErrKeyMapError, fmt.Sprintf("no mapping for %q in mode %q", keys, modeArg))
	}
	ed.keymaps.Unregister(name)
	return nil
}
