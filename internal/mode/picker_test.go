package mode

import (
	"testing"

	"github.com/dshills/nota/internal/mode/fuzzy_pkg"
	"github.com/dshills/nota/internal/mode/key_pkg"
)

func TestPickerModeFiltersAndSubmits(t *testing.T) {
	var picked string
	ctx := NewContext()
	ctx.Extra["items"] = []fuzzy.Item{
		{Text: "main.go"},
		{Text: "manager.go"},
		{Text: "readme.md"},
	}
	ctx.Extra["onSubmit"] = func(item fuzzy.Item) { picked = item.Text }

	m := NewPickerMode()
	_ = m.Enter(ctx)
	if len(m.Results()) != 3 {
		t.Fatalf("expected all items before filtering, got %d", len(m.Results()))
	}

	for _, r := range "main" {
		m.HandleUnmapped(key.NewRuneEvent(r, key.ModNone), ctx)
	}
	if len(m.Results()) == 0 {
		t.Fatal("expected at least one match for query 'main'")
	}

	m.HandleUnmapped(key.NewSpecialEvent(key.KeyEnter, key.ModNone), ctx)
	if picked != "main.go" {
		t.Fatalf("picked = %q, want %q", picked, "main.go")
	}
}

func TestPickerModeJKNavigateWithoutFiltering(t *testing.T) {
	ctx := NewContext()
	ctx.Extra["items"] = []fuzzy.Item{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	m := NewPickerMode()
	_ = m.Enter(ctx)

	m.HandleUnmapped(key.NewRuneEvent('j', key.ModNone), ctx)
	if m.Cursor() != 1 {
		t.Fatalf("Cursor() = %d, want 1", m.Cursor())
	}
	if m.Query() != "" {
		t.Fatalf("expected 'j' to navigate, not filter, got query %q", m.Query())
	}

	m.HandleUnmapped(key.NewRuneEvent('k', key.ModNone), ctx)
	if m.Cursor() != 0 {
		t.Fatalf("Cursor() = %d, want 0", m.Cursor())
	}
}

func TestPickerModeCancel(t *testing.T) {
	canceled := false
	ctx := NewContext()
	ctx.Extra["onCancel"] = func() { canceled = true }

	m := NewPickerMode()
	_ = m.Enter(ctx)
	m.HandleUnmapped(key.NewSpecialEvent(key.KeyEscape, key.ModNone), ctx)

	if !canceled {
		t.Fatal("expected onCancel to fire on Escape")
	}
}
