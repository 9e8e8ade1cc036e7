package command

import "strings"

// VariableResolver answers the fixed set of @name(args) variables a
// command line may reference. A false second return leaves the
// reference unexpanded (passed through verbatim).
type VariableResolver interface {
	// BufferIndex returns the current client's buffer's slot index,
	// as decimal text, for @buffer-index().
	BufferIndex() (string, bool)
	// BufferPath returns a buffer's path for @buffer-path() (args ==
	// "", current buffer) or @buffer-path(<handle>).
	BufferPath(args string) (string, bool)
	// ReadlineInput returns the active read-line prompt's current
	// input for @readline-input().
	ReadlineInput() (string, bool)
	// Register returns the named register's content for
	// @register(<single-char>).
	Register(args string) (string, bool)
}

// ExpandVariables rewrites every @name(args) reference in line's
// expansion-eligible tokens (every token except one whose leading @ was
// stripped by the tokenizer), in place, left to right. Unknown variable
// names, malformed syntax, and tokens marked non-expandable are passed
// through unchanged.
func ExpandVariables(r VariableResolver, line string) string {
	text := line
	searchFrom := 0

	for searchFrom < len(text) {
		tz := NewTokenizer(text[searchFrom:])
		tok, ok := tz.Next()
		if !ok {
			break
		}
		tokenStart := searchFrom + tok.Start
		tokenEnd := searchFrom + tok.End
		rawEnd := searchFrom + tz.Pos()

		if tok.CanExpand {
			var delta int
			text, delta = expandToken(r, text, tokenStart, tokenEnd)
			rawEnd += delta
		}
		searchFrom = rawEnd
	}
	return text
}

// expandToken rewrites every @name(args) occurrence within text[start:end]
// and returns the updated text along with the net byte-length change.
func expandToken(r VariableResolver, text string, start, end int) (string, int) {
	delta := 0
	pos := start
	for pos < end {
		at := strings.IndexByte(text[pos:end], '@')
		if at < 0 {
			break
		}
		varStart := pos + at
		name, nameEnd, ok := parseVariableName(text, varStart+1, end)
		if !ok {
			pos = varStart + 1
			continue
		}
		args, varEnd, ok := parseVariableArgs(text, nameEnd, end)
		if !ok {
			pos = varStart + 1
			continue
		}
		value, ok := resolveVariable(r, name, args)
		if !ok {
			pos = varStart + 1
			continue
		}

		text = text[:varStart] + value + text[varEnd:]
		shift := len(value) - (varEnd - varStart)
		delta += shift
		end += shift
		pos = varStart + len(value)
	}
	return text, delta
}

// parseVariableName parses a lowercase-and-hyphen identifier starting at
// from, stopping at and consuming '('. Returns ok == false if it runs off
// the end of [from,limit) or hits an unexpected character first.
func parseVariableName(text string, from, limit int) (name string, nameEnd int, ok bool) {
	i := from
	for i < limit {
		c := text[i]
		if c == '(' {
			return text[from:i], i + 1, true
		}
		if !(c == '-' || (c >= 'a' && c <= 'z')) {
			return "", 0, false
		}
		i++
	}
	return "", 0, false
}

// parseVariableArgs parses up to the next ')' starting at from, returning
// the args substring and the offset just past the ')'.
func parseVariableArgs(text string, from, limit int) (args string, end int, ok bool) {
	idx := strings.IndexByte(text[from:limit], ')')
	if idx < 0 {
		return "", 0, false
	}
	return text[from : from+idx], from + idx + 1, true
}

func resolveVariable(r VariableResolver, name, args string) (string, bool) {
	switch name {
	case "buffer-index":
		return r.BufferIndex()
	case "buffer-path":
		return r.BufferPath(args)
	case "readline-input":
		return r.ReadlineInput()
	case "register":
		return r.Register(args)
	default:
		return "", false
	}
}
