// Package command implements the editor's command language: tokenizing a
// command line, expanding @variable(args) references, resolving aliases,
// and dispatching the result to a registered command function.
//
// A command line is one or more commands separated by newlines, with `#`
// starting a line comment. Tokens are whitespace-separated; a token can
// instead be a "..." or '...' quoted span (terminated on the same line),
// or a {...} / {={...}=} bracketed span that may embed newlines. An @
// immediately before a quote or brace is stripped and disables variable
// expansion for that one token — used to pass a literal @name(args)-
// looking string through untouched. A bare @ before an ordinary word has
// no special meaning; the word (@ included) stays expansion-eligible.
//
//	reg := command.NewRegistry()
//	reg.Register(command.Spec{Name: "write", Func: cmdWrite})
//	flow, err := reg.Eval(ctx, client, true, vars, "write @buffer-path()")
package command
