// Package editor wires the buffer, view, cursor, mode, command, and LSP
// subsystems into the platform event loop's Application contract. It owns
// every piece of per-session state (which client is looking at which view
// of which buffer, in which mode) and is the one place that translates
// wire frames into edits and edits back into wire frames.
package editor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/dshills/nota/internal/buffer"
	"github.com/dshills/nota/internal/command"
	"github.com/dshills/nota/internal/config"
	"github.com/dshills/nota/internal/events"
	"github.com/dshills/nota/internal/filewatch"
	"github.com/dshills/nota/internal/lsp"
	keymap "github.com/dshills/nota/internal/mode/keymap_pkg"
	"github.com/dshills/nota/internal/platform"
	"github.com/dshills/nota/internal/proto"
	"github.com/dshills/nota/internal/view"
	"github.com/dshills/nota/internal/wordindex"
)

// Editor is the central coordinator: it implements platform.Application
// and owns the buffer/view/client slot tables plus the shared command
// registry and LSP manager.
type Editor struct {
	settings config.Settings

	buffers        map[buffer.Handle]*buffer.Buffer
	nextBufferID   uint32
	views          map[view.Handle]*view.View
	nextViewID     uint32
	sessions       map[uint32]*clientSession
	commands       *command.Registry
	keymaps        *keymap.Registry
	lsp            *lsp.Manager
	words          *wordindex.Database
	watch          *filewatch.Watcher
	eventQ         *events.Queue
	sink           events.Sink
	workspaceRoot  string
	log            *slog.Logger

	quitAll bool
}

// Options configures a new Editor.
type Options struct {
	Settings      config.Settings
	WorkspaceRoot string
	// InitialFiles are opened into a fresh view the first time a client
	// attaches with no buffer of its own.
	InitialFiles []string
	// KeymapPath, if set, is loaded as a user keymap TOML file (the
	// format keymap.Loader reads, the same one `:map` bindings could be
	// saved to with Keymap.SaveFile) and registered before any client
	// attaches. A failed load is logged and otherwise ignored — a typo
	// in a keymap file shouldn't keep the editor from starting.
	KeymapPath string
	// Logger receives structured lifecycle events. Defaults to a
	// discarding logger if nil.
	Logger *slog.Logger
}

// New builds an Editor ready to be driven by platform.Loop.Run.
func New(opts Options) *Editor {
	q := events.New()
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	ed := &Editor{
		settings:      opts.Settings,
		buffers:       make(map[buffer.Handle]*buffer.Buffer),
		views:         make(map[view.Handle]*view.View),
		sessions:      make(map[uint32]*clientSession),
		commands:      command.NewRegistry(),
		keymaps:       keymap.NewRegistry(),
		words:         wordindex.New(),
		eventQ:        q,
		sink:          events.NewSink(q),
		workspaceRoot: opts.WorkspaceRoot,
		log:           log,
	}
	if w, err := filewatch.New(); err != nil {
		log.Warn("external file-change detection unavailable", "error", err)
	} else {
		ed.watch = w
	}
	registerBuiltinCommands(ed.commands, ed)

	if opts.KeymapPath != "" {
		if err := ed.loadUserKeymap(opts.KeymapPath); err != nil {
			log.Warn("loading keymap file", "path", opts.KeymapPath, "error", err)
		}
	}

	ed.lsp = lsp.NewManager(
		lsp.WithDiagnosticsCallback(func(uri lsp.DocumentURI, diags []lsp.Diagnostic) {
			// Diagnostics are pulled on demand through lsp.Manager.Diagnostics
			// rather than pushed to clients; nothing to do on arrival besides
			// letting the manager cache them.
		}),
	)
	for lang, cfg := range lsp.DefaultServerConfigs() {
		if _, err := exec.LookPath(cfg.Command); err == nil {
			ed.lsp.RegisterServer(lang, cfg)
		}
	}
	if opts.WorkspaceRoot != "" {
		ed.lsp.SetWorkspaceFolders(lsp.DetectWorkspaceFolders(opts.WorkspaceRoot))
	}

	for _, path := range opts.InitialFiles {
		if _, err := ed.openFile(path); err != nil {
			continue
		}
	}

	return ed
}

// Update implements platform.Application. It is called once per tick with
// every readiness event the loop translated, and queues the requests it
// wants acted on before returning.
func (ed *Editor) Update(evs []platform.Event, out *platform.RequestQueue) {
	for _, ev := range evs {
		ed.handleEvent(ev, out)
	}
	ed.eventQ.Flip()
	ed.syncLSPDocuments()
	ed.syncFileWatch()

	if ed.quitAll {
		out.Push(platform.Request{Kind: platform.RequestQuit})
		return
	}
}

// handleEvent dispatches one readiness translation. Language server I/O is
// not routed through here: internal/lsp.Manager supervises its own server
// subprocesses and feeds its transports from a dedicated goroutine, so the
// tick loop only ever sees client connection traffic.
func (ed *Editor) handleEvent(ev platform.Event, out *platform.RequestQueue) {
	switch ev.Kind {
	case platform.EventConnectionOpen:
		ed.onClientOpen(ev.ClientID)
	case platform.EventConnectionOutput:
		ed.onClientBytes(ev.ClientID, ev.Payload, out)
	case platform.EventConnectionClose:
		ed.onClientClose(ev.ClientID)
	case platform.EventProcessSpawned, platform.EventProcessOutput, platform.EventProcessExit, platform.EventIdle:
		// No editor-owned subprocesses exist outside the LSP manager's own
		// supervision; nothing to react to here.
	}
}

func (ed *Editor) onClientOpen(id uint32) {
	cs := newClientSession(id, ed.commands)
	ed.sessions[id] = cs
	if !cs.hasView {
		ed.attachDefaultBuffer(cs)
	}
	ed.log.Info("client attached", "client", id)
}

// attachDefaultBuffer gives a freshly connected client a view: the
// already-open buffer with the lowest handle, file-backed or scratch, if
// one exists (so multiple clients opened
// against the same files share a view onto them), otherwise a fresh
// scratch buffer.
func (ed *Editor) attachDefaultBuffer(cs *clientSession) {
	for _, h := range sortedBufferHandles(ed.buffers) {
		ed.attachView(cs, ed.buffers[h])
		return
	}
	ed.attachView(cs, ed.newScratchBuffer())
}

func sortedBufferHandles(m map[buffer.Handle]*buffer.Buffer) []buffer.Handle {
	out := make([]buffer.Handle, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// onClientBytes decodes every complete wire frame newly available from a
// client's socket and applies it, then pushes a fresh render frame back
// if the session's visible state changed.
func (ed *Editor) onClientBytes(id uint32, data []byte, out *platform.RequestQueue) {
	cs, ok := ed.sessions[id]
	if !ok {
		return
	}
	for _, f := range cs.dec.Feed(data) {
		switch f.Kind {
		case proto.KindKey:
			ed.handleKeyFrame(cs, f.Payload)
		case proto.KindResize:
			if cols, rows, err := decodeResize(f.Payload); err == nil {
				cs.client.Viewport.Resize(cols, rows)
			}
		case proto.KindStdin:
			ed.handleStdinFrame(cs, f.Payload)
		}
	}

	if cs.pendingQuit {
		out.Push(platform.Request{Kind: platform.RequestCloseClient, ID: id})
		return
	}
	ed.renderTo(cs, id, out)
}

// handleKeyFrame decodes every key event a raw stdin chunk yields (a
// single KindKey frame can carry more than one keystroke once a client
// is typing faster than a tick drains its socket) and applies each in
// turn against the session's current mode.
func (ed *Editor) handleKeyFrame(cs *clientSession, payload []byte) {
	for _, ev := range cs.keyDec.Feed(payload) {
		if act := ed.lookupUserBinding(cs, ev); act != nil {
			cs.applyAction(ed, act)
			continue
		}

		m := cs.modes.Current()
		if m == nil {
			continue
		}
		result := m.HandleUnmapped(ev, cs.modeContext(ed))
		if result == nil {
			continue
		}
		if result.InsertText != "" && cs.view != nil {
			cs.view.InsertAtCursors(result.InsertText)
		}
		cs.applyAction(ed, result.Action)
	}
}

func (ed *Editor) handleStdinFrame(cs *clientSession, chunk []byte) {
	text := cs.client.FeedStdin(chunk)
	if text == "" {
		return
	}
	if !cs.client.HasStdinBuffer {
		b := ed.newScratchBuffer()
		cs.client.StdinBuffer = b.Handle()
		cs.client.HasStdinBuffer = true
		ed.attachView(cs, b)
	}
	if cs.view != nil {
		cs.view.Buffer().InsertText(cs.view.Buffer().Content().End(), text)
	}
}

// renderTo builds this session's render snapshot and, if it differs from
// the last one sent, pushes a RequestWriteToClient frame.
func (ed *Editor) renderTo(cs *clientSession, id uint32, out *platform.RequestQueue) {
	snap := cs.snapshot()
	payload := encodeRender(snap)
	if bytes.Equal(payload, cs.lastRender) {
		return
	}
	cs.lastRender = payload
	var buf bytes.Buffer
	_ = proto.WriteFrame(&buf, proto.Frame{Kind: proto.KindRender, Payload: payload})
	out.Push(platform.Request{Kind: platform.RequestWriteToClient, ID: id, Payload: buf.Bytes()})
}

func (ed *Editor) onClientClose(id uint32) {
	cs, ok := ed.sessions[id]
	if !ok {
		return
	}
	if cs.hasView {
		delete(ed.views, cs.viewHandle)
	}
	delete(ed.sessions, id)
	ed.log.Info("client detached", "client", id)
}

// bufferForPath returns an existing buffer bound to path, if any.
func (ed *Editor) bufferForPath(path string) (*buffer.Buffer, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, b := range ed.buffers {
		if b.Path() == abs {
			return b, true
		}
	}
	return nil, false
}

func (ed *Editor) openFile(path string) (*buffer.Buffer, error) {
	if b, ok := ed.bufferForPath(path); ok {
		return b, nil
	}
	handle := buffer.Handle(ed.nextBufferID)
	ed.nextBufferID++
	b, err := buffer.Open(handle, path,
		buffer.WithTabSize(ed.settings.TabSize),
		buffer.WithIndentWithTabs(ed.settings.IndentWithTabs),
		buffer.WithUndoDepth(ed.settings.UndoDepth),
		buffer.WithSink(ed.sink),
	)
	if err != nil {
		ed.nextBufferID--
		return nil, err
	}
	ed.buffers[handle] = b
	if ed.watch != nil {
		_ = ed.watch.Watch(b.Path())
	}
	return b, nil
}

// newScratchBuffer returns a fresh non-file buffer (a scratch pane or a
// client's stdin-pipe destination). internal/buffer has no name field
// for non-file buffers; callers needing a label for one keep it
// alongside the handle themselves rather than through the buffer API.
func (ed *Editor) newScratchBuffer() *buffer.Buffer {
	handle := buffer.Handle(ed.nextBufferID)
	ed.nextBufferID++
	b := buffer.New(handle,
		buffer.WithTabSize(ed.settings.TabSize),
		buffer.WithIndentWithTabs(ed.settings.IndentWithTabs),
		buffer.WithUndoDepth(ed.settings.UndoDepth),
		buffer.WithSink(ed.sink),
	)
	ed.buffers[handle] = b
	return b
}

// attachView gives a session a view over b, replacing any view it
// already had (the old view slot is freed; the underlying buffer stays
// open for other sessions).
func (ed *Editor) attachView(cs *clientSession, b *buffer.Buffer) *view.View {
	if cs.hasView {
		delete(ed.views, cs.viewHandle)
	}
	handle := view.Handle(ed.nextViewID)
	ed.nextViewID++
	v := view.New(handle, cs.id, b.Handle(), b)
	ed.views[handle] = v
	cs.hasView = true
	cs.viewHandle = handle
	cs.view = v
	cs.client.HasView = true
	cs.client.View = uint32(handle)
	return v
}

// closeBufferIfUnused closes and frees a buffer no session's view still
// references.
func (ed *Editor) closeBufferIfUnused(h buffer.Handle, force bool) error {
	for _, v := range ed.views {
		if v.BufferHandle() == h {
			return nil
		}
	}
	b, ok := ed.buffers[h]
	if !ok {
		return nil
	}
	if err := b.Close(force); err != nil {
		return err
	}
	if ed.watch != nil && b.Properties().IsFile {
		ed.watch.Unwatch(b.Path())
	}
	delete(ed.buffers, h)
	return nil
}

// modifiedFileBuffers returns every file-backed buffer with unsaved
// changes, in handle order (for :wqa / :qa's unsaved-changes check).
func (ed *Editor) modifiedFileBuffers() []*buffer.Buffer {
	var out []*buffer.Buffer
	for _, b := range ed.buffers {
		if b.Properties().IsFile && b.NeedsSave() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle() < out[j].Handle() })
	return out
}

// syncLSPDocuments drains this tick's buffer events, feeds the word index
// (every buffer, LSP-backed or not), and forwards file-backed buffers to
// the LSP manager as didOpen/didChange/didClose notifications —
// the one place buffer mutation, word completion, and language-server
// document sync all meet. BufferSave events are not forwarded.
func (ed *Editor) syncLSPDocuments() {
	ctx := context.Background()
	for _, e := range ed.eventQ.Read() {
		if wb, ok := ed.buffers[e.Buffer]; !ok || wb.Properties().WordDatabaseEnabled {
			switch e.Kind {
			case events.BufferInsertText:
				ed.words.Add(e.Buffer, ed.eventQ.Text(e))
			case events.BufferDeleteText:
				ed.words.Remove(e.Buffer, ed.eventQ.Text(e))
			case events.BufferClose:
				ed.words.Forget(e.Buffer)
			}
		}

		b, ok := ed.buffers[e.Buffer]
		if !ok || !b.Properties().IsFile || !ed.lsp.IsAvailable(b.Path()) {
			continue
		}
		switch e.Kind {
		case events.BufferOpen, events.BufferLoad:
			_ = ed.lsp.OpenDocument(ctx, b.Path(), b.Content().Text())
		case events.BufferInsertText, events.BufferDeleteText:
			_ = ed.lsp.ChangeDocument(ctx, b.Path(), []lsp.TextDocumentContentChangeEvent{
				{Text: b.Content().Text()},
			})
		case events.BufferClose:
			_ = ed.lsp.CloseDocument(ctx, b.Path())
		}
	}
}

// syncFileWatch drains pending external-change notifications. A buffer
// with no unsaved edits of its own is reloaded in place and every
// session viewing it gets its cursors clamped and a status line set; a
// dirty buffer is left alone and only gets the status line, since
// reloading would discard the session's in-progress edit.
func (ed *Editor) syncFileWatch() {
	if ed.watch == nil {
		return
	}
	for {
		select {
		case chg := <-ed.watch.Changes():
			ed.handleFileChange(chg)
		default:
			return
		}
	}
}

func (ed *Editor) handleFileChange(chg filewatch.Change) {
	b, ok := ed.bufferForPath(chg.Path)
	if !ok || !b.HasExternalChanges() {
		return
	}

	status := fmt.Sprintf("%s changed on disk", filepath.Base(chg.Path))
	if b.NeedsSave() {
		status = fmt.Sprintf("%s changed on disk; not reloaded (unsaved local changes)", filepath.Base(chg.Path))
	} else if err := b.Reload(false); err != nil {
		status = fmt.Sprintf("%s changed on disk; reload failed: %v", filepath.Base(chg.Path), err)
	} else {
		status = fmt.Sprintf("%s reloaded (changed on disk)", filepath.Base(chg.Path))
	}

	for _, cs := range ed.sessions {
		if !cs.hasView || cs.view.BufferHandle() != b.Handle() {
			continue
		}
		cs.lastStatus = status
		cs.view.Cursors().Clamp(b.Content())
	}
}

// Shutdown releases server-side resources: running LSP servers and any
// supervised subprocess they spawned.
func (ed *Editor) Shutdown(ctx context.Context) {
	ed.log.Info("shutdown")
	if ed.lsp != nil {
		_ = ed.lsp.Shutdown(ctx)
	}
	if ed.watch != nil {
		_ = ed.watch.Close()
	}
}
