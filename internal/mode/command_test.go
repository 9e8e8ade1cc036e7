package mode

import (
	"testing"

	"github.com/dshills/nota/internal/command"
	"github.com/dshills/nota/internal/mode/key_pkg"
)

type fakeVarResolver struct {
	regs map[string]string
}

func (f fakeVarResolver) BufferIndex() (string, bool)      { return "", false }
func (f fakeVarResolver) BufferPath(string) (string, bool) { return "", false }
func (f fakeVarResolver) ReadlineInput() (string, bool)    { return "", false }
func (f fakeVarResolver) Register(args string) (string, bool) {
	v, ok := f.regs[args]
	return v, ok
}

func typeLine(m *CommandMode, line string) {
	for _, r := range line {
		m.buffer = append(m.buffer, r)
		m.cursorPos++
	}
}

// A command line typed in a live session must have its @name(args)
// variables expanded before dispatch, not just when ExpandVariables is
// called directly in isolation.
func TestCommandModeExpandsVariablesOnDispatch(t *testing.T) {
	var gotArgs string
	reg := command.NewRegistry()
	reg.Register(command.Spec{Name: "put", Func: func(ctxAny any, io *command.IO) error {
		gotArgs, _ = io.Args.Required()
		return nil
	}})

	m := NewCommandMode(reg)
	typeLine(m, "put @register(a)")

	ctx := NewContext()
	ctx.Extra["varResolver"] = fakeVarResolver{regs: map[string]string{"a": "hello"}}

	result := m.HandleUnmapped(key.Event{Key: key.KeyEnter}, ctx)
	if result == nil || !result.Consumed {
		t.Fatalf("expected Enter to be consumed")
	}
	if gotArgs != "hello" {
		t.Fatalf("expected register expansion to reach dispatch, got %q", gotArgs)
	}
}

// With no resolver wired into the context (e.g. isolated read-line
// tests), a line referencing a variable dispatches unexpanded rather
// than panicking.
func TestCommandModeDispatchWithoutResolverLeavesLineUnexpanded(t *testing.T) {
	var gotArgs string
	reg := command.NewRegistry()
	reg.Register(command.Spec{Name: "put", Func: func(ctxAny any, io *command.IO) error {
		gotArgs, _ = io.Args.Required()
		return nil
	}})

	m := NewCommandMode(reg)
	typeLine(m, "put @register(a)")

	result := m.HandleUnmapped(key.Event{Key: key.KeyEnter}, NewContext())
	if result == nil || !result.Consumed {
		t.Fatalf("expected Enter to be consumed")
	}
	if gotArgs != "@register(a)" {
		t.Fatalf("expected unexpanded line to reach dispatch, got %q", gotArgs)
	}
}
