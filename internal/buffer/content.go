package buffer

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/nota/internal/rope"
)

// WordKind classifies a character for word-motion purposes.
type WordKind uint8

const (
	WordWhitespace WordKind = iota
	WordIdentifier
	WordSymbol
)

// ClassifyByte returns the WordKind for a single ASCII byte. Every byte
// of a multi-byte UTF-8 sequence classifies as WordSymbol.
func ClassifyByte(b byte) WordKind {
	switch {
	case b == ' ' || b == '\t':
		return WordWhitespace
	case b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'):
		return WordIdentifier
	default:
		return WordSymbol
	}
}

// ClassifyRune returns the WordKind for a full rune, extending ClassifyByte
// to Unicode letters/digits.
func ClassifyRune(r rune) WordKind {
	switch {
	case r == ' ' || r == '\t':
		return WordWhitespace
	case r == '_' || isWordRune(r):
		return WordIdentifier
	default:
		return WordSymbol
	}
}

func isWordRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

// Content is the ordered sequence of UTF-8 lines that makes up a buffer's
// text, backed by the kernel's immutable rope for O(log n)
// edits and line indexing. A line feed is a line boundary; it is never
// part of the line text itself.
type Content struct {
	rope rope.Rope
}

// NewContent returns an empty content.
func NewContent() *Content {
	return &Content{rope: rope.New()}
}

// NewContentFromString builds content from a string, normalizing CRLF/CR
// to LF (the buffer's canonical in-memory line ending; on-disk endings are
// restored by the file-I/O layer per the buffer's LineEnding setting).
func NewContentFromString(s string) *Content {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return &Content{rope: rope.FromString(s)}
}

// Text returns the full content.
func (c *Content) Text() string { return c.rope.String() }

// LineCount returns the number of lines; an empty buffer has one (empty)
// line, matching the rope's line-counting convention.
func (c *Content) LineCount() uint32 { return c.rope.LineCount() }

// Line returns the text of a single line, without its line feed.
func (c *Content) Line(line uint32) string { return c.rope.LineText(line) }

// LineLen returns the byte length of a line, not including its line feed.
func (c *Content) LineLen(line uint32) uint32 { return uint32(c.rope.LineLen(line)) }

// End returns the position just past the last character of the content.
func (c *Content) End() Position {
	lc := c.LineCount()
	last := lc - 1
	return Position{Line: last, Column: c.LineLen(last)}
}

// Clamp saturates pos into valid buffer bounds: line clamped to the last
// line, column clamped to that line's length.
func (c *Content) Clamp(pos Position) Position {
	lc := c.LineCount()
	if pos.Line >= lc {
		pos.Line = lc - 1
	}
	lineLen := c.LineLen(pos.Line)
	if pos.Column > lineLen {
		pos.Column = lineLen
	}
	return pos
}

func (c *Content) offset(pos Position) rope.ByteOffset {
	return c.rope.PointToOffset(rope.Point{Line: pos.Line, Column: pos.Column})
}

func (c *Content) position(off rope.ByteOffset) Position {
	p := c.rope.OffsetToPoint(off)
	return Position{Line: p.Line, Column: p.Column}
}

// InsertText splices text into the content at pos: the first piece of
// text is spliced into the existing line, embedded line feeds start new
// lines, and the trailing piece becomes the new prefix of whatever
// followed pos. Returns the range the inserted text now occupies.
func (c *Content) InsertText(pos Position, text string) Range {
	pos = c.Clamp(pos)
	off := c.offset(pos)
	c.rope = c.rope.Insert(off, text)
	end := c.position(off + rope.ByteOffset(len(text)))
	return Range{From: pos, To: end}
}

// DeleteText removes the text spanning r and returns it.
func (c *Content) DeleteText(r Range) string {
	from := c.Clamp(r.From)
	to := c.Clamp(r.To)
	if to.Before(from) {
		from, to = to, from
	}
	startOff := c.offset(from)
	endOff := c.offset(to)
	removed := c.rope.Slice(startOff, endOff)
	c.rope = c.rope.Delete(startOff, endOff)
	return removed
}

// Slice returns the text spanning r without mutating the content.
func (c *Content) Slice(r Range) string {
	from := c.Clamp(r.From)
	to := c.Clamp(r.To)
	return c.rope.Slice(c.offset(from), c.offset(to))
}

// PositionBefore returns the previous valid character boundary before p,
// or p unchanged if p is already at the start of the content.
func (c *Content) PositionBefore(p Position) Position {
	p = c.Clamp(p)
	if p.Column > 0 {
		line := c.Line(p.Line)
		prev := rope.FromString(line).CharBoundaryBefore(rope.ByteOffset(p.Column))
		return Position{Line: p.Line, Column: uint32(prev)}
	}
	if p.Line == 0 {
		return p
	}
	prevLine := p.Line - 1
	return Position{Line: prevLine, Column: c.LineLen(prevLine)}
}

// positionAfter returns the next valid character boundary after p, or p
// unchanged if p is already at the end of the content.
func (c *Content) positionAfter(p Position) Position {
	p = c.Clamp(p)
	lineLen := c.LineLen(p.Line)
	if p.Column < lineLen {
		line := c.Line(p.Line)
		_, size := utf8.DecodeRuneInString(line[p.Column:])
		if size == 0 {
			size = 1
		}
		return Position{Line: p.Line, Column: p.Column + uint32(size)}
	}
	if p.Line+1 >= c.LineCount() {
		return p
	}
	return Position{Line: p.Line + 1, Column: 0}
}

// ColumnsForward advances p by n characters (not bytes), crossing line
// boundaries; each line boundary crossed counts as one character.
func (c *Content) ColumnsForward(p Position, n int) Position {
	for i := 0; i < n; i++ {
		next := c.positionAfter(p)
		if next == p {
			break
		}
		p = next
	}
	return p
}

// ColumnsBackward retreats p by n characters, crossing line boundaries.
func (c *Content) ColumnsBackward(p Position, n int) Position {
	for i := 0; i < n; i++ {
		prev := c.PositionBefore(p)
		if prev == p {
			break
		}
		p = prev
	}
	return p
}

// WordAt returns the maximal word containing position p.
func (c *Content) WordAt(p Position) Range {
	p = c.Clamp(p)
	line := c.Line(p.Line)
	if len(line) == 0 {
		return Range{From: p, To: p}
	}
	col := p.Column
	if col >= uint32(len(line)) {
		col = uint32(len(line)) - 1
	}
	kind := ClassifyByte(line[col])
	start := col
	for start > 0 && ClassifyByte(line[start-1]) == kind {
		start--
	}
	end := col
	for end < uint32(len(line)) && ClassifyByte(line[end]) == kind {
		end++
	}
	return Range{From: Position{Line: p.Line, Column: start}, To: Position{Line: p.Line, Column: end}}
}

// lineWords returns the word/symbol/whitespace spans of a line as
// column ranges on line 0, used by the Words* motions.
func lineWords(line string) []Range {
	var out []Range
	i := 0
	for i < len(line) {
		kind := ClassifyByte(line[i])
		start := i
		for i < len(line) && ClassifyByte(line[i]) == kind {
			i++
		}
		out = append(out, Range{From: Position{Column: uint32(start)}, To: Position{Column: uint32(i)}})
	}
	return out
}

// WordsForward skips whitespace-only words and advances by n
// identifier/symbol word starts, wrapping across line boundaries and
// consuming one unit per line boundary crossed.
func (c *Content) WordsForward(p Position, n int) Position {
	p = c.Clamp(p)
	for i := 0; i < n; i++ {
		p = c.nextWordStart(p)
	}
	return p
}

func (c *Content) nextWordStart(p Position) Position {
	line := c.Line(p.Line)
	words := lineWords(line)
	for _, w := range words {
		if w.From.Column > p.Column {
			if ClassifyByte(line[w.From.Column]) != WordWhitespace {
				return Position{Line: p.Line, Column: w.From.Column}
			}
			// Whitespace word: its end is the next candidate.
			if w.To.Column > p.Column {
				return Position{Line: p.Line, Column: w.To.Column}
			}
		}
	}
	if p.Line+1 >= c.LineCount() {
		return Position{Line: p.Line, Column: c.LineLen(p.Line)}
	}
	nextLine := p.Line + 1
	nextText := c.Line(nextLine)
	if len(nextText) == 0 || ClassifyByte(nextText[0]) != WordWhitespace {
		return Position{Line: nextLine, Column: 0}
	}
	nw := lineWords(nextText)
	if len(nw) > 0 && ClassifyByte(nextText[0]) == WordWhitespace && len(nw) > 1 {
		return Position{Line: nextLine, Column: nw[0].To.Column}
	}
	return Position{Line: nextLine, Column: 0}
}

// WordsBackward is the inverse of WordsForward.
func (c *Content) WordsBackward(p Position, n int) Position {
	p = c.Clamp(p)
	for i := 0; i < n; i++ {
		p = c.prevWordStart(p)
	}
	return p
}

func (c *Content) prevWordStart(p Position) Position {
	line := c.Line(p.Line)
	words := lineWords(line)
	for i := len(words) - 1; i >= 0; i-- {
		w := words[i]
		if w.From.Column < p.Column {
			if ClassifyByte(line[w.From.Column]) != WordWhitespace {
				return Position{Line: p.Line, Column: w.From.Column}
			}
			continue
		}
	}
	if p.Line == 0 {
		return Position{Line: 0, Column: 0}
	}
	prevLine := p.Line - 1
	prevText := c.Line(prevLine)
	pw := lineWords(prevText)
	for i := len(pw) - 1; i >= 0; i-- {
		if ClassifyByte(prevText[pw[i].From.Column]) != WordWhitespace {
			return Position{Line: prevLine, Column: pw[i].From.Column}
		}
	}
	return Position{Line: prevLine, Column: 0}
}

// WordEndForward advances to the end of the nth following
// identifier/symbol word.
func (c *Content) WordEndForward(p Position, n int) Position {
	p = c.Clamp(p)
	for i := 0; i < n; i++ {
		line := c.Line(p.Line)
		words := lineWords(line)
		found := false
		for _, w := range words {
			if w.To.Column > p.Column+1 && ClassifyByte(line[w.From.Column]) != WordWhitespace {
				p = Position{Line: p.Line, Column: w.To.Column - 1}
				found = true
				break
			}
		}
		if found {
			continue
		}
		if p.Line+1 >= c.LineCount() {
			p = Position{Line: p.Line, Column: c.LineLen(p.Line)}
			continue
		}
		p = Position{Line: p.Line + 1, Column: 0}
		i-- // retry the word-end search from the new line without consuming a unit
	}
	return p
}

// VisualColumn expands tabs to compute the on-screen column for pos, used
// to preserve apparent column across LinesForward/Backward.
func (c *Content) VisualColumn(pos Position, tabSize int) int {
	line := c.Line(pos.Line)
	col := pos.Column
	if col > uint32(len(line)) {
		col = uint32(len(line))
	}
	visual := 0
	for i := uint32(0); i < col; {
		if line[i] == '\t' {
			visual += tabSize - (visual % tabSize)
			i++
		} else {
			_, size := utf8.DecodeRuneInString(line[i:])
			if size == 0 {
				size = 1
			}
			visual++
			i += uint32(size)
		}
	}
	return visual
}

// positionForVisualColumn finds the first byte column on line whose
// visual column reaches target (past target when a tab spans it), or
// the line end if the line is shorter.
func (c *Content) positionForVisualColumn(line uint32, target int, tabSize int) Position {
	text := c.Line(line)
	visual := 0
	i := uint32(0)
	for i < uint32(len(text)) {
		if visual >= target {
			break
		}
		if text[i] == '\t' {
			visual += tabSize - (visual % tabSize)
			i++
		} else {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 0 {
				size = 1
			}
			visual++
			i += uint32(size)
		}
	}
	return Position{Line: line, Column: i}
}

// LinesForward moves down n lines, preserving the visual column recorded
// in displayCol (or computed from pos if *displayCol < 0).
func (c *Content) LinesForward(pos Position, n int, tabSize int, displayCol *int) Position {
	if *displayCol < 0 {
		*displayCol = c.VisualColumn(pos, tabSize)
	}
	line := pos.Line + uint32(n)
	lc := c.LineCount()
	if line >= lc {
		line = lc - 1
	}
	return c.positionForVisualColumn(line, *displayCol, tabSize)
}

// LinesBackward is the inverse of LinesForward.
func (c *Content) LinesBackward(pos Position, n int, tabSize int, displayCol *int) Position {
	if *displayCol < 0 {
		*displayCol = c.VisualColumn(pos, tabSize)
	}
	var line uint32
	if uint32(n) > pos.Line {
		line = 0
	} else {
		line = pos.Line - uint32(n)
	}
	return c.positionForVisualColumn(line, *displayCol, tabSize)
}
