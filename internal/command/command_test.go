package command

import "testing"

func newRegistryWithBuiltins() *Registry {
	r := NewRegistry()
	r.Register(Spec{
		Name:        "write",
		BangAllowed: false,
		Func: func(ctx any, io *IO) error {
			if _, ok := io.Args.Next(); ok {
				return NewError(ErrTooManyArguments, "")
			}
			return nil
		},
	})
	r.Register(Spec{
		Name:        "quit",
		BangAllowed: true,
		Func: func(ctx any, io *IO) error {
			if io.Bang {
				io.Flow = QuitAll
			} else {
				io.Flow = Quit
			}
			return nil
		},
	})
	return r
}

func TestEvalDispatchesRegisteredCommand(t *testing.T) {
	r := newRegistryWithBuiltins()
	flow, err := r.Eval(nil, 0, false, nil, "quit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow != Quit {
		t.Fatalf("expected Quit, got %v", flow)
	}
}

func TestEvalBangSetsQuitAll(t *testing.T) {
	r := newRegistryWithBuiltins()
	flow, err := r.Eval(nil, 0, false, nil, "quit!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow != QuitAll {
		t.Fatalf("expected QuitAll, got %v", flow)
	}
}

func TestEvalRejectsBangWhenNotAllowed(t *testing.T) {
	r := newRegistryWithBuiltins()
	_, err := r.Eval(nil, 0, false, nil, "write!")
	if err == nil {
		t.Fatal("expected error for disallowed bang")
	}
}

func TestEvalUnknownCommand(t *testing.T) {
	r := newRegistryWithBuiltins()
	_, err := r.Eval(nil, 0, false, nil, "bogus")
	ce, ok := err.(*Error)
	if !ok || ce.Kind != ErrNoSuchCommand {
		t.Fatalf("expected ErrNoSuchCommand, got %v", err)
	}
}

func TestEvalResolvesAliasBeforeDispatch(t *testing.T) {
	r := newRegistryWithBuiltins()
	r.Aliases.Add("q", "quit!")
	flow, err := r.Eval(nil, 0, false, nil, "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow != QuitAll {
		t.Fatalf("expected alias to resolve to quit!, got flow %v", flow)
	}
}

func TestEvalExpandsVariablesBeforeDispatch(t *testing.T) {
	var seen string
	r := NewRegistry()
	r.Register(Spec{Name: "open", Func: func(ctx any, io *IO) error {
		v, _ := io.Args.Next()
		seen = v
		return nil
	}})
	_, err := r.Eval(nil, 0, false, fakeResolver{path: "/tmp/x.go"}, "open @buffer-path()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "/tmp/x.go" {
		t.Fatalf("expected expanded path argument, got %q", seen)
	}
}

func TestEvalRecordsHistory(t *testing.T) {
	r := newRegistryWithBuiltins()
	r.Eval(nil, 0, false, nil, "quit")
	if r.History.Len() != 1 || r.History.Last() != "quit" {
		t.Fatalf("expected history to record dispatched line, got %+v", r.History)
	}
}

func TestSplitLinesStripsCommentsAndBlankLines(t *testing.T) {
	block := "write\n# a comment\n\nquit!\n"
	lines := SplitLines(block)
	if len(lines) != 2 || lines[0] != "write" || lines[1] != "quit!" {
		t.Fatalf("unexpected split: %+v", lines)
	}
}

func TestSplitLinesPreservesNewlineInsideBracedToken(t *testing.T) {
	block := "set {line one\nline two}\nquit"
	lines := SplitLines(block)
	if len(lines) != 2 {
		t.Fatalf("expected 2 logical lines, got %+v", lines)
	}
	if lines[0] != "set {line one\nline two}" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "quit" {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}
