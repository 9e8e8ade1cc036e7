package command

import "testing"

type fakeResolver struct {
	index   string
	path    string
	reading string
	regs    map[string]string
}

func (f fakeResolver) BufferIndex() (string, bool) {
	if f.index == "" {
		return "", false
	}
	return f.index, true
}
func (f fakeResolver) BufferPath(args string) (string, bool) {
	if f.path == "" {
		return "", false
	}
	return f.path, true
}
func (f fakeResolver) ReadlineInput() (string, bool) {
	if f.reading == "" {
		return "", false
	}
	return f.reading, true
}
func (f fakeResolver) Register(args string) (string, bool) {
	v, ok := f.regs[args]
	return v, ok
}

func TestExpandVariablesSubstitutesKnownVariable(t *testing.T) {
	r := fakeResolver{path: "/tmp/a.go"}
	got := ExpandVariables(r, "edit @buffer-path()")
	if got != "edit /tmp/a.go" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestExpandVariablesHandlesLengthChange(t *testing.T) {
	r := fakeResolver{regs: map[string]string{"a": "short"}}
	got := ExpandVariables(r, "insert @register(a) tail")
	if got != "insert short tail" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestExpandVariablesLeavesUnknownVerbatim(t *testing.T) {
	r := fakeResolver{}
	got := ExpandVariables(r, "echo @mystery(x)")
	if got != "echo @mystery(x)" {
		t.Fatalf("expected unknown variable passthrough, got %q", got)
	}
}

func TestExpandVariablesSkipsNonExpandableToken(t *testing.T) {
	r := fakeResolver{path: "/tmp/a.go"}
	line := `echo @"@buffer-path()"`
	got := ExpandVariables(r, line)
	if got != line {
		t.Fatalf("expected non-expandable token left untouched, got %q", got)
	}
}

func TestExpandVariablesMultipleInOneLine(t *testing.T) {
	r := fakeResolver{index: "3", path: "/x"}
	got := ExpandVariables(r, "status @buffer-index() @buffer-path()")
	if got != "status 3 /x" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
