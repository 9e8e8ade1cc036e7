package config

import "testing"

func TestDefault(t *testing.T) {
	s := Default()
	if s.TabSize != 4 {
		t.Errorf("TabSize = %d, want 4", s.TabSize)
	}
	if s.IndentWithTabs {
		t.Error("IndentWithTabs should default to false")
	}
	if s.UndoDepth != 1000 {
		t.Errorf("UndoDepth = %d, want 1000", s.UndoDepth)
	}
}

func TestLoadEmpty(t *testing.T) {
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) error: %v", err)
	}
	if s != Default() {
		t.Errorf("Load(nil) = %+v, want defaults", s)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	data := []byte("tab_size = 2\nindent_with_tabs = true\n")
	s, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.TabSize != 2 {
		t.Errorf("TabSize = %d, want 2", s.TabSize)
	}
	if !s.IndentWithTabs {
		t.Error("IndentWithTabs should be true")
	}
	// Untouched fields keep their defaults.
	if s.MaxClientCount != 32 {
		t.Errorf("MaxClientCount = %d, want 32", s.MaxClientCount)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	_, err := Load([]byte("not = [valid"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*target = pe
	}
	return ok
}
