package keymap

import (
	"github.com/dshills/nota/internal/mode/key_pkg"
)

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key sequence that triggers this binding.
	// Formats: "j", "g g", "C-s", "<C-S-a>", "Ctrl+Shift+A"
	Keys string

	// Action is the command to execute.
	// Examples: "cursor.down", "editor.save", "mode.insert"
	Action string

	// Args are fixed arguments for the action.
	Args map[string]any

	// When is a condition expression that must be true for this binding.
	// Examples: "editorTextFocus", "!editorReadonly", "resourceLangId == go"
	When string

	// Description provides documentation for the binding.
	Description string

	// Priority determines precedence when multiple bindings match.
	// Higher priority wins. Default is 0.
	Priority int

	// Category groups bindings for display purposes.
	Category string
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{
		Keys:   keys,
		Action: action,
	}
}

// WithArgs sets arguments for this binding.
func (b Binding) WithArgs(args map[string]any) Binding {
	b.Args = args
	return b
}

// WithWhen sets the condition for this binding.
func (b Binding) WithWhen(when string) Binding {
	b.When = when
	return b
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// WithPriority sets the priority for this binding.
func (b Binding) WithPriority(priority int) Binding {
	b.Priority = priority
	return b
}

// WithCategory sets the category for this binding.
func (b Binding) WithCategory(category string) Binding {
	b.Category = category
	return b
}

// ParsedBinding is a binding with a pre-parsed key sequence.
type ParsedBinding struct {
	Binding
	Sequence *key.Sequence
}

// Match checks if this binding's key sequence matches the given sequence.
func (pb *ParsedBinding) Match(seq *key.Sequence) bool {
	if pb == nil || pb.Sequence == nil || seq == nil {
		return false
	}
	return pb.Sequence.Equals(seq)
}

// IsPrefix checks if the given sequence is a prefix of this binding's sequence.
func (pb *ParsedBinding) IsPrefix(seq *key.Sequence) bool {
	if pb == nil || pb.Sequence == nil || seq == nil {
		return false
	}
	return pb.Sequence.HasPrefix(seq)
}

// BindingMatch represents a matched binding with its context.
type BindingMatch struct {
	// Binding is the matched binding.
	*ParsedBinding

	// Keymap is the keymap containing the binding.
	Keymap *Keymap

	// Score is used for sorting matches by priority.
	Score int
}

// Scoring weights for CalculateScore. Keymap priority dominates (a user
// keymap registered at priority 10 always beats a builtin default at 0
// regardless of specificity); mode- and filetype-specific bindings each
// get a smaller bump so that, within one priority tier, the more
// targeted binding wins a tie against a global one.
const (
	scorePerKeymapPriority = 100
	scoreModeSpecific      = 50
	scoreFileTypeSpecific  = 25
)

// CalculateScore fills in Score from this match's keymap and binding, for
// Less to sort on.
func (bm *BindingMatch) CalculateScore() {
	if bm.Keymap == nil || bm.ParsedBinding == nil {
		bm.Score = 0
		return
	}

	score := bm.Keymap.Priority*scorePerKeymapPriority + bm.ParsedBinding.Priority
	if bm.Keymap.Mode != "" {
		score += scoreModeSpecific
	}
	if bm.Keymap.FileType != "" {
		score += scoreFileTypeSpecific
	}
	bm.Score = score
}

// Less reports whether bm should sort before other: a nil keymap always
// sorts last, then higher Score wins, then a mode-specific keymap beats
// a global one, then a filetype-specific keymap beats one that applies
// to every file type.
func (bm BindingMatch) Less(other BindingMatch) bool {
	if bm.Keymap == nil {
		return false
	}
	if other.Keymap == nil {
		return true
	}
	if bm.Score != other.Score {
		return bm.Score > other.Score
	}
	if (bm.Keymap.Mode != "") != (other.Keymap.Mode != "") {
		return bm.Keymap.Mode != ""
	}
	return bm.Keymap.FileType != "" && other.Keymap.FileType == ""
}

// BindingCategory represents a category of bindings for display.
type BindingCategory struct {
	Name     string
	Bindings []Binding
}

// GroupByCategory groups bindings by their category.
func GroupByCategory(bindings []Binding) []BindingCategory {
	categoryMap := make(map[string][]Binding)
	order := make([]string, 0)

	for _, b := range bindings {
		cat := b.Category
		if cat == "" {
			cat = "Other"
		}
		if _, exists := categoryMap[cat]; !exists {
			order = append(order, cat)
		}
		categoryMap[cat] = append(categoryMap[cat], b)
	}

	result := make([]BindingCategory, 0, len(order))
	for _, name := range order {
		result = append(result, BindingCategory{
			Name:     name,
			Bindings: categoryMap[name],
		})
	}
	return result
}
