package editor

import (
	"github.com/dshills/nota/internal/client"
	"github.com/dshills/nota/internal/command"
	"github.com/dshills/nota/internal/mode"
	"github.com/dshills/nota/internal/view"
)

// clientSession is everything the editor tracks for one connected
// terminal: its wire-level client state, the view it is looking
// through (if any), its own mode machine, and its unnamed register.
//
// A mode.Manager is per-session because the concrete modes carry
// per-session state (pending operator, insert start position, the
// command-line buffer); the command.Registry and its history are
// shared across sessions.
type clientSession struct {
	id uint32

	client *client.Client
	modes  *mode.Manager

	hasView    bool
	viewHandle view.Handle
	view       *view.View

	// register holds the text of the last yank or delete, the one
	// unnamed register nota supports (named registers are out of
	// scope for this pass, see DESIGN.md).
	register     string
	registerLine bool

	lastStatus string
	lastError  string

	pendingQuit bool

	// completionPrefix/completionIndex/completionPick track Insert-mode
	// word completion cycling: completionPrefix is the word as the user
	// actually typed it, completionPick is the suggestion last inserted
	// in its place. A editor.word_complete press whose word-at-cursor
	// still reads back as completionPick is treated as "cycle again on
	// the same prefix"; any other word-at-cursor starts a fresh search.
	completionPrefix string
	completionPick   string
	completionIndex  int

	dec        frameDecoder
	keyDec     keyDecoder
	lastRender []byte
}

func newClientSession(id uint32, registry *command.Registry) *clientSession {
	cs := &clientSession{
		id:     id,
		client: client.NewClient(),
		modes:  mode.NewManager(),
	}
	cs.client.Attach(client.Handle(id), 80, 24)

	cs.modes.Register(mode.NewNormalMode())
	cs.modes.Register(mode.NewInsertMode())
	cs.modes.Register(mode.NewVisualMode())
	cs.modes.Register(mode.NewVisualLineMode())
	cs.modes.Register(mode.NewVisualBlockMode())
	cs.modes.Register(mode.NewCommandMode(registry))
	cs.modes.Register(mode.NewOperatorPendingMode())
	cs.modes.Register(mode.NewReplaceMode())
	cs.modes.SetInitialMode(mode.ModeNormal)
	return cs
}

// modeContext builds a fresh mode.Context for a single key event,
// wiring in this session's editor-facing state, command-evaluation
// context value, and @name(args) variable resolver.
func (cs *clientSession) modeContext(ed *Editor) *mode.Context {
	ctx := mode.NewContext()
	ctx.Editor = cs
	ctx.ClientID = cs.id
	ctx.HasClientID = true
	ctx.Extra["editorCtx"] = cs
	ctx.Extra["varResolver"] = sessionVariables{ed: ed, cs: cs}
	return ctx
}

// --- mode.EditorState ---

func (cs *clientSession) CursorPosition() (line, col uint32) {
	if cs.view == nil {
		return 0, 0
	}
	p := cs.view.Cursors().Main().Position
	return p.Line, p.Column
}

func (cs *clientSession) HasSelection() bool {
	if cs.view == nil {
		return false
	}
	return !cs.view.Cursors().Main().IsEmpty()
}

func (cs *clientSession) CurrentLine() string {
	if cs.view == nil {
		return ""
	}
	line, _ := cs.CursorPosition()
	content := cs.view.Buffer().Content()
	return content.Line(line)
}

func (cs *clientSession) LineCount() uint32 {
	if cs.view == nil {
		return 0
	}
	return uint32(cs.view.Buffer().Content().LineCount())
}

func (cs *clientSession) FilePath() string {
	if cs.view == nil {
		return ""
	}
	return cs.view.Buffer().Path()
}

func (cs *clientSession) FileType() string {
	if cs.view == nil {
		return ""
	}
	return cs.view.Buffer().SyntaxBinding()
}

func (cs *clientSession) IsModified() bool {
	if cs.view == nil {
		return false
	}
	return cs.view.Buffer().NeedsSave()
}

// snapshot renders the lines currently visible in this session's
// viewport, for the wire's opaque KindRender payload.
func (cs *clientSession) snapshot() renderSnapshot {
	status := cs.lastError
	if status == "" {
		status = cs.lastStatus
	}
	if cs.view == nil {
		return renderSnapshot{StatusLine: status}
	}
	content := cs.view.Buffer().Content()
	height := cs.client.Viewport.Height()
	if height <= 0 {
		height = 1
	}
	scroll := cs.client.Viewport.Scroll
	lc := int(content.LineCount())
	lines := make([]string, 0, height)
	for i := 0; i < height && scroll+i < lc; i++ {
		lines = append(lines, content.Line(uint32(scroll+i)))
	}
	line, col := cs.CursorPosition()
	return renderSnapshot{
		Lines:      lines,
		Scroll:     scroll,
		CursorLine: line,
		CursorCol:  col,
		Modified:   cs.IsModified(),
		StatusLine: status,
	}
}
