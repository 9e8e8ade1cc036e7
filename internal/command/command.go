package command

import (
	"fmt"
	"strings"
)

// ErrorKind is the closed set of errors a command can report.
type ErrorKind uint8

const (
	ErrNoSuchCommand ErrorKind = iota
	ErrTooFewArguments
	ErrTooManyArguments
	ErrNoTargetClient
	ErrNoBufferOpened
	ErrUnsavedChanges
	ErrBufferReadError
	ErrBufferWriteError
	ErrNoSuchBufferProperty
	ErrConfigNotFound
	ErrInvalidConfigValue
	ErrNoSuchColor
	ErrInvalidColorValue
	ErrInvalidGlob
	ErrPatternError
	ErrKeyMapError
	ErrKeyParseError
	ErrInvalidRegisterKey
	ErrInvalidPath
	ErrInvalidMode
	ErrLspServerNotRunning
	ErrAborted
	ErrOther
)

// Error is a command-dispatch failure. Message carries the classifying
// cause for kinds that wrap one (e.g. an IoKind for a buffer I/O error),
// and the free-form message for ErrOther.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var staticErrors = map[ErrorKind]string{
	ErrNoSuchCommand:        "no such command",
	ErrTooFewArguments:      "too few arguments",
	ErrTooManyArguments:     "too many arguments",
	ErrNoTargetClient:       "no target client",
	ErrNoBufferOpened:       "no buffer opened",
	ErrUnsavedChanges:       "unsaved changes",
	ErrNoSuchBufferProperty: "no such buffer property",
	ErrConfigNotFound:       "config not found",
	ErrNoSuchColor:          "no such color",
	ErrInvalidColorValue:    "invalid color value",
	ErrInvalidRegisterKey:   "invalid register key",
	ErrInvalidPath:          "invalid path",
	ErrInvalidMode:          "invalid mode",
	ErrLspServerNotRunning:  "lsp server not running",
	ErrAborted:              "aborted",
}

// NewError builds a closed-taxonomy command error from kind and a
// caller-supplied detail message (used as-is for ErrOther, wrapped for
// kinds with a cause such as a buffer I/O error or a parse failure).
func NewError(kind ErrorKind, detail string) *Error {
	if msg, ok := staticErrors[kind]; ok && detail == "" {
		return newError(kind, msg)
	}
	if detail == "" {
		return newError(kind, fmt.Sprintf("error %d", kind))
	}
	return newError(kind, detail)
}

// Flow is the value a command mutates to steer the editor's run loop.
type Flow uint8

const (
	Continue Flow = iota
	Quit
	QuitAll
)

// Args iterates a command's arguments, lazily tokenizing the text left
// after the command name.
type Args struct {
	tz *Tokenizer
}

// Next returns the next argument, or ok == false once exhausted.
func (a *Args) Next() (string, bool) {
	tok, ok := a.tz.Next()
	if !ok {
		return "", false
	}
	return tok.Text, true
}

// Required returns the next argument or ErrTooFewArguments.
func (a *Args) Required() (string, error) {
	v, ok := a.Next()
	if !ok {
		return "", NewError(ErrTooFewArguments, "")
	}
	return v, nil
}

// AssertEmpty returns ErrTooManyArguments if any argument remains.
func (a *Args) AssertEmpty() error {
	if _, ok := a.Next(); ok {
		return NewError(ErrTooManyArguments, "")
	}
	return nil
}

// IO is the per-invocation state handed to a command function: its
// parsed arguments, the bang flag, and the flow value it may set.
type IO struct {
	Args      Args
	Bang      bool
	Flow      Flow
	Client    uint32
	HasClient bool
}

// ClientHandle returns io.Client, or ErrNoTargetClient if this
// invocation has no associated client.
func (io *IO) ClientHandle() (uint32, error) {
	if !io.HasClient {
		return 0, NewError(ErrNoTargetClient, "")
	}
	return io.Client, nil
}

// Func implements one registered command's behavior.
type Func func(ctx any, io *IO) error

// CompletionSource names where an argument's completions come from.
type CompletionSource uint8

const (
	CompleteNone CompletionSource = iota
	CompleteCommands
	CompleteBuffers
	CompleteFiles
	CompleteCustom
)

// Spec describes one registered command.
type Spec struct {
	Name        string
	BangAllowed bool
	Completions []CompletionSource
	Func        Func
}

// Registry holds every registered command, the alias table, and the
// command-line history ring, and drives tokenize -> expand -> alias ->
// dispatch evaluation.
type Registry struct {
	commands map[string]Spec
	Aliases  *AliasCollection
	History  *History
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Spec),
		Aliases:  NewAliasCollection(),
		History:  NewHistory(),
	}
}

// Register adds spec to the registry, replacing any existing command
// with the same name.
func (r *Registry) Register(spec Spec) {
	r.commands[spec.Name] = spec
}

// Lookup returns the command named name, if registered.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.commands[name]
	return s, ok
}

// Names returns every registered command name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.commands))
	for n := range r.commands {
		out = append(out, n)
	}
	return out
}

// Eval expands variables, resolves an alias on the first token, then
// dispatches line. ctx is passed through to the matched command function
// untyped, since its concrete type (the editor context) would otherwise
// create an import cycle back from this package. vars may be nil, in
// which case @variable(args) references are left unexpanded.
func (r *Registry) Eval(ctx any, client uint32, hasClient bool, vars VariableResolver, line string) (Flow, error) {
	if vars != nil {
		line = ExpandVariables(vars, line)
	}
	line = r.resolveAlias(line)
	r.History.Add(line)
	return r.dispatch(ctx, client, hasClient, line)
}

func (r *Registry) resolveAlias(line string) string {
	tz := NewTokenizer(line)
	tok, ok := tz.Next()
	if !ok {
		return line
	}
	name := strings.TrimSuffix(tok.Text, "!")
	to, found := r.Aliases.Find(name)
	if !found {
		return line
	}
	return line[:tok.Start] + to + line[tok.End:]
}

func (r *Registry) dispatch(ctx any, client uint32, hasClient bool, line string) (Flow, error) {
	tz := NewTokenizer(line)
	tok, ok := tz.Next()
	if !ok {
		return Continue, NewError(ErrNoSuchCommand, "")
	}

	name, bang := tok.Text, false
	if strings.HasSuffix(name, "!") {
		name = strings.TrimSuffix(name, "!")
		bang = true
	}

	spec, ok := r.Lookup(name)
	if !ok {
		return Continue, NewError(ErrNoSuchCommand, "")
	}
	if bang && !spec.BangAllowed {
		return Continue, NewError(ErrInvalidMode, fmt.Sprintf("%s does not accept !", name))
	}

	io := &IO{
		Args:      Args{tz: tz},
		Bang:      bang,
		Flow:      Continue,
		Client:    client,
		HasClient: hasClient,
	}
	if err := spec.Func(ctx, io); err != nil {
		return Continue, err
	}
	return io.Flow, nil
}

// SplitLines splits a multi-command command-line block into individual
// logical lines. `#` starts a line comment and a bare newline separates
// commands, but only outside a token: a {...} or {={...}=} literal may
// embed both, so this walks the block one token at a time via Tokenizer
// rather than splitting on "\n" directly, and only inspects the
// whitespace gaps between tokens for comments and separators.
func SplitLines(block string) []string {
	var out []string
	var cur strings.Builder
	pos := 0

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for pos < len(block) {
		for pos < len(block) && (block[pos] == ' ' || block[pos] == '\t') {
			pos++
		}
		if pos < len(block) && block[pos] == '#' {
			for pos < len(block) && block[pos] != '\n' {
				pos++
			}
		}
		if pos < len(block) && block[pos] == '\n' {
			flush()
			pos++
			continue
		}
		if pos >= len(block) {
			break
		}

		tz := NewTokenizer(block[pos:])
		if _, ok := tz.Next(); !ok {
			break
		}
		n := tz.Pos()
		// Only a {...} span may carry a newline; any other token ends
		// at the line break, which then separates commands.
		if !strings.HasPrefix(strings.TrimPrefix(block[pos:], "@"), "{") {
			if nl := strings.IndexByte(block[pos:pos+n], '\n'); nl >= 0 {
				n = nl
			}
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(block[pos : pos+n])
		pos += n
	}
	flush()
	return out
}
