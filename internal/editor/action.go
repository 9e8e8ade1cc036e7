package editor

import (
	"unicode"

	"github.com/dshills/nota/internal/buffer"
	"github.com/dshills/nota/internal/cursor"
	"github.com/dshills/nota/internal/mode"
)

// applyAction executes the side effect named by a mode.Action against
// this session's view. Motions and mode switches that were already
// fully resolved by the mode package (Consumed with no Action) never
// reach here; this is only the generic vocabulary every mode funnels
// editing and view intents through.
func (cs *clientSession) applyAction(ed *Editor, act *mode.Action) {
	if act == nil {
		return
	}
	count := intArg(act.Args, "count", 1)
	if count < 1 {
		count = 1
	}

	switch act.Name {
	case "app.quit":
		cs.pendingQuit = true
	case "app.quit_all":
		ed.quitAll = true

	case "cursor.left":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.ColumnsBackward(c.Position, count)
		})
	case "cursor.right":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.ColumnsForward(c.Position, count)
		})
	case "cursor.up":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			col := content.VisualColumn(c.Position, cs.tabSize())
			return content.LinesBackward(c.Position, count, cs.tabSize(), &col)
		})
	case "cursor.down":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			col := content.VisualColumn(c.Position, cs.tabSize())
			return content.LinesForward(c.Position, count, cs.tabSize(), &col)
		})
	case "cursor.word_forward":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.WordsForward(c.Position, count)
		})
	case "cursor.word_backward":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.WordsBackward(c.Position, count)
		})
	case "cursor.word_end":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.WordEndForward(c.Position, count)
		})
	case "cursor.line_start":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return buffer.Position{Line: c.Position.Line, Column: 0}
		})
	case "cursor.line_end":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return buffer.Position{Line: c.Position.Line, Column: content.LineLen(c.Position.Line)}
		})
	case "cursor.first_non_blank":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return firstNonBlank(content, c.Position.Line)
		})
	case "cursor.file_end":
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			return content.End()
		})
	case "cursor.go_to_line":
		line := intArg(act.Args, "line", 1)
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			target := uint32(0)
			if line > 1 {
				target = uint32(line - 1)
			}
			return content.Clamp(buffer.Position{Line: target, Column: c.Position.Column})
		})

	case "view.page_down":
		cs.pageBy(cs.client.Viewport.Height())
	case "view.page_up":
		cs.pageBy(-cs.client.Viewport.Height())
	case "view.half_page_down":
		cs.pageBy(cs.client.Viewport.Height() / 2)
	case "view.half_page_up":
		cs.pageBy(-(cs.client.Viewport.Height() / 2))

	case "editor.insertText":
		if text, ok := act.Args["text"].(string); ok && cs.view != nil {
			cs.view.InsertAtCursors(text)
		}
	case "editor.newline":
		// The \n itself was already sent as InsertText alongside this
		// Action by insert.go; nothing further to apply.
	case "editor.backspace":
		cs.deleteRelative(-1)
	case "editor.delete_char_before":
		cs.deleteRelative(-1)
	case "editor.delete_char":
		cs.deleteRelative(1)
	case "editor.delete_line":
		cs.deleteLines(count, false)
	case "editor.change_line":
		cs.deleteLines(count, true)
		_ = cs.modes.SwitchWithContext(mode.ModeInsert, cs.modeContext(ed))
	case "editor.yank_line":
		cs.yankLines(count)
	case "editor.paste":
		cs.paste()
	case "editor.replaceChar":
		ch, _ := act.Args["char"].(string)
		cs.replaceChar(ch)
	case "editor.undo":
		if cs.view != nil {
			cs.view.Undo()
		}
	case "editor.redo":
		if cs.view != nil {
			cs.view.Redo()
		}
	case "editor.delete_selection":
		cs.deleteSelection()
		_ = cs.modes.SwitchWithContext(mode.ModeNormal, cs.modeContext(ed))
	case "editor.yank_selection":
		cs.yankSelection()
		_ = cs.modes.SwitchWithContext(mode.ModeNormal, cs.modeContext(ed))
	case "editor.change_selection":
		cs.deleteSelection()
		_ = cs.modes.SwitchWithContext(mode.ModeInsert, cs.modeContext(ed))

	case "editor.word_complete":
		cs.completeWord(ed)

	case "mode.normal", "mode.insert", "mode.visual", "mode.replace", "mode.command":
		if msg, ok := act.Args["statusError"].(string); ok {
			ed.log.Warn("command error", "client", cs.id, "error", msg)
		}
		cs.enterModeForAction(ed, act)
	}

	if cs.view != nil {
		cs.view.Cursors().Clamp(cs.view.Buffer().Content())
		line, _ := cs.CursorPosition()
		cs.client.Viewport.ScrollToCursor(int(line))
		cs.view.SetScroll(cs.client.Viewport.Scroll)
	}
}

// enterModeForAction switches mode, applying the cursor repositioning
// that mode.insert's "position" argument implies before the switch
// (InsertMode.Enter itself does not consume that argument).
func (cs *clientSession) enterModeForAction(ed *Editor, act *mode.Action) {
	if act.Name == "mode.insert" {
		if pos, ok := act.Args["position"].(string); ok {
			cs.positionForInsert(pos)
		}
	}
	if msg, ok := act.Args["statusError"].(string); ok {
		cs.lastError = msg
	}
	ctx := cs.modeContext(ed)
	if cs.view != nil {
		line, col := cs.CursorPosition()
		ctx.Selection = &mode.Selection{Start: mode.Position{Line: line, Column: col}, End: mode.Position{Line: line, Column: col}}
	}
	target := act.Name[len("mode."):]
	if act.Name == "mode.visual" {
		if t, ok := act.Args["type"].(string); ok && t == "line" {
			target = mode.ModeVisualLine
		}
	}
	_ = cs.modes.SwitchWithContext(target, ctx)
}

func (cs *clientSession) positionForInsert(position string) {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
		p := c.Position
		switch position {
		case "after":
			p = content.ColumnsForward(p, 1)
		case "line_start":
			p = buffer.Position{Line: p.Line, Column: 0}
		case "line_end":
			p = buffer.Position{Line: p.Line, Column: content.LineLen(p.Line)}
		case "new_line_below":
			end := buffer.Position{Line: p.Line, Column: content.LineLen(p.Line)}
			r := cs.view.Buffer().InsertText(end, "\n")
			p = r.To
		case "new_line_above":
			start := buffer.Position{Line: p.Line, Column: 0}
			cs.view.Buffer().InsertText(start, "\n")
			p = start
		}
		return cursor.AtPosition(p)
	})
}

// moveEach applies f to every cursor's Position. Outside a visual mode
// the result collapses to a plain insertion point; inside one, the
// cursor's Anchor is preserved so the motion extends the selection
// instead of moving it.
func (cs *clientSession) moveEach(f func(cursor.Cursor, *buffer.Content) buffer.Position) {
	if cs.view == nil {
		return
	}
	extend := cs.inVisualMode()
	content := cs.view.Buffer().Content()
	cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
		newPos := f(c, content)
		if extend {
			return cursor.NewSelection(c.Anchor, newPos)
		}
		return cursor.AtPosition(newPos)
	})
}

func (cs *clientSession) inVisualMode() bool {
	if cs.modes == nil || cs.modes.Current() == nil {
		return false
	}
	switch cs.modes.Current().Name() {
	case mode.ModeVisual, mode.ModeVisualLine, mode.ModeVisualBlock:
		return true
	default:
		return false
	}
}

// deleteSelection removes the text spanned by every cursor's selection
// and records the main cursor's selection into the unnamed register (vim's d/x/c in
// visual mode act on the selection rather than a motion).
func (cs *clientSession) deleteSelection() {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	main := cs.view.Cursors().Main()
	cs.register = content.Slice(main.Range())
	cs.registerLine = false
	cs.view.DeleteAtCursors()
}

// yankSelection copies the main cursor's selection into the unnamed
// register and collapses every cursor to its selection start.
func (cs *clientSession) yankSelection() {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	main := cs.view.Cursors().Main()
	cs.register = content.Slice(main.Range())
	cs.registerLine = false
	cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
		return cursor.AtPosition(c.Start())
	})
}

// pageBy moves every cursor n lines (negative scrolls up) and jumps the
// viewport's scroll by the same amount, so a page motion both repositions
// the cursor and the window in lockstep the way a line motion's trailing
// ScrollToCursor otherwise would not for a jump this large.
func (cs *clientSession) pageBy(n int) {
	if cs.view == nil {
		return
	}
	if n >= 0 {
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			col := content.VisualColumn(c.Position, cs.tabSize())
			return content.LinesForward(c.Position, n, cs.tabSize(), &col)
		})
	} else {
		cs.moveEach(func(c cursor.Cursor, content *buffer.Content) buffer.Position {
			col := content.VisualColumn(c.Position, cs.tabSize())
			return content.LinesBackward(c.Position, -n, cs.tabSize(), &col)
		})
	}
	cs.client.Viewport.Scroll = clampScroll(cs.client.Viewport.Scroll + n)
}

func clampScroll(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// deleteRelative deletes the n columns before (n<0) or after (n>0) each
// cursor's position, collapsing to the deletion start (see
// cursor.ApplyDeleteAtCursors).
func (cs *clientSession) deleteRelative(n int) {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
		if !c.IsEmpty() {
			return c
		}
		if n < 0 {
			return cursor.NewSelection(content.ColumnsBackward(c.Position, -n), c.Position)
		}
		return cursor.NewSelection(c.Position, content.ColumnsForward(c.Position, n))
	})
	cs.view.DeleteAtCursors()
}

// deleteLines deletes count lines starting at the main cursor's line,
// recording the removed text into the unnamed register; the other
// cursors are dropped. When asLine is
// true the caller is about to switch to Insert mode (vim's cc).
func (cs *clientSession) deleteLines(count int, asLine bool) {
	if cs.view == nil {
		return
	}
	b := cs.view.Buffer()
	content := b.Content()
	main := cs.view.Cursors().Main()
	startLine := main.Position.Line
	endLine := startLine + uint32(count)
	lc := content.LineCount()
	var from, to buffer.Position
	if endLine >= lc {
		from = buffer.Position{Line: startLine, Column: 0}
		if startLine > 0 {
			from = buffer.Position{Line: startLine - 1, Column: content.LineLen(startLine - 1)}
		}
		to = content.End()
	} else {
		from = buffer.Position{Line: startLine, Column: 0}
		to = buffer.Position{Line: endLine, Column: 0}
	}
	cs.register = content.Slice(buffer.NewRange(from, to))
	cs.registerLine = true
	cs.view.Cursors().Set(cursor.NewSelection(from, to))
	cs.view.DeleteAtCursors()
}

func (cs *clientSession) yankLines(count int) {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	main := cs.view.Cursors().Main()
	startLine := main.Position.Line
	endLine := startLine + uint32(count)
	if endLine > content.LineCount() {
		endLine = content.LineCount()
	}
	from := buffer.Position{Line: startLine, Column: 0}
	to := buffer.Position{Line: endLine, Column: 0}
	if endLine >= content.LineCount() {
		to = content.End()
		to = buffer.Position{Line: to.Line, Column: content.LineLen(to.Line)}
	}
	cs.register = content.Slice(buffer.NewRange(from, to))
	cs.registerLine = true
}

func (cs *clientSession) paste() {
	if cs.view == nil || cs.register == "" {
		return
	}
	if cs.registerLine {
		content := cs.view.Buffer().Content()
		cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
			at := buffer.Position{Line: c.Position.Line + 1, Column: 0}
			if c.Position.Line+1 >= content.LineCount() {
				at = buffer.Position{Line: c.Position.Line, Column: content.LineLen(c.Position.Line)}
				return cursor.AtPosition(at)
			}
			return cursor.AtPosition(at)
		})
		cs.view.InsertAtCursors(cs.register)
		return
	}
	cs.view.InsertAtCursors(cs.register)
}

// replaceChar implements vim's r: deletes one column forward and types
// ch in its place. The cursor lands just past the typed character
// rather than on it, a simplification shared with delete-then-insert
// compositions elsewhere in this package.
func (cs *clientSession) replaceChar(ch string) {
	if cs.view == nil || ch == "" {
		return
	}
	content := cs.view.Buffer().Content()
	cs.view.Cursors().Map(func(c cursor.Cursor) cursor.Cursor {
		if !c.IsEmpty() {
			return c
		}
		return cursor.NewSelection(c.Position, content.ColumnsForward(c.Position, 1))
	})
	cs.view.DeleteAtCursors()
	cs.view.InsertAtCursors(ch)
}

// completeWord implements editor.word_complete: it looks up the
// identifier word ending at the main cursor, offers the next entry from
// ed.words' frequency-ranked suggestions for it (cycling on repeated
// presses against the same typed prefix), and replaces the typed word
// with the suggestion. Only the main cursor participates; multi-cursor
// completion is out of scope for this pass.
func (cs *clientSession) completeWord(ed *Editor) {
	if cs.view == nil {
		return
	}
	content := cs.view.Buffer().Content()
	pos := cs.view.Cursors().Main().Position
	wr := content.WordAt(content.PositionBefore(pos))
	if wr.To != pos || wr.From == wr.To {
		cs.completionPrefix = ""
		return
	}
	word := content.Slice(wr)
	if len(word) == 0 || buffer.ClassifyByte(word[0]) != buffer.WordIdentifier {
		cs.completionPrefix = ""
		return
	}

	if cs.completionPrefix != "" && word == cs.completionPick {
		cs.completionIndex++
	} else {
		cs.completionPrefix = word
		cs.completionIndex = 0
	}

	suggestions := ed.words.Suggestions(cs.completionPrefix, 32)
	if len(suggestions) == 0 {
		return
	}
	pick := suggestions[cs.completionIndex%len(suggestions)]
	cs.completionPick = pick

	cs.view.Cursors().Set(cursor.NewSelection(wr.From, wr.To))
	cs.view.DeleteAtCursors()
	cs.view.InsertAtCursors(pick)

	if im, ok := cs.modes.Current().(interface{ SetCompletionActive(bool) }); ok {
		im.SetCompletionActive(true)
	}
}

func (cs *clientSession) tabSize() int {
	if cs.view == nil {
		return 4
	}
	return cs.view.Buffer().TabSize()
}

func firstNonBlank(content *buffer.Content, line uint32) buffer.Position {
	text := content.Line(line)
	col := uint32(0)
	for _, r := range text {
		if !unicode.IsSpace(r) {
			break
		}
		col += uint32(len(string(r)))
	}
	if col > uint32(len(text)) {
		col = uint32(len(text))
	}
	return buffer.Position{Line: line, Column: col}
}

func intArg(args map[string]any, key string, def int) int {
	if args == nil {
		return def
	}
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
