package history

import "sync"

// group is a committed sequence of edits that undo/redo together.
type group struct {
	edits []Edit
}

// History is an undo/redo stack of edit groups, bounded to a configured
// depth.
type History struct {
	mu sync.Mutex

	maxDepth int
	undo     []group
	redo     []group

	active   bool
	building group
}

// New returns a History that retains at most maxDepth undo groups.
func New(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &History{maxDepth: maxDepth}
}

// BeginGroup opens a new edit group. Appends made before the matching
// CommitGroup accumulate into one undo step. A BeginGroup while a group
// is already open is ignored; groups do not nest, so the next
// CommitGroup seals the open group.
func (h *History) BeginGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active {
		return
	}
	h.active = true
	h.building = group{}
}

// Append records an edit into the currently open group. It is a no-op if
// no group is open.
func (h *History) Append(e Edit) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active {
		return
	}
	h.building.edits = append(h.building.edits, e)
}

// CommitGroup seals the active group onto the undo stack and clears the
// redo stack, discarding the oldest undo group once maxDepth is exceeded.
// An empty group (no edits appended) is discarded rather than pushed.
func (h *History) CommitGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active {
		return
	}
	g := h.building
	h.active = false
	h.building = group{}
	if len(g.edits) == 0 {
		return
	}
	h.undo = append(h.undo, g)
	if len(h.undo) > h.maxDepth {
		h.undo = h.undo[len(h.undo)-h.maxDepth:]
	}
	h.redo = nil
}

// CancelGroup discards the currently open group without pushing it.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = false
	h.building = group{}
}

// Undo pops the most recent undo group and returns its edits inverted, in
// the order they must be replayed (reverse of application order) to
// restore the prior state. Returns nil if there is nothing to undo.
func (h *History) Undo() []Edit {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return nil
	}
	g := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, g)

	inverted := make([]Edit, len(g.edits))
	for i, e := range g.edits {
		inverted[len(g.edits)-1-i] = e.Invert()
	}
	return inverted
}

// Redo pops the most recently undone group and returns its edits in their
// original application order. Returns nil if there is nothing to redo.
func (h *History) Redo() []Edit {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return nil
	}
	g := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, g)
	if len(h.undo) > h.maxDepth {
		h.undo = h.undo[len(h.undo)-h.maxDepth:]
	}

	out := make([]Edit, len(g.edits))
	copy(out, g.edits)
	return out
}

// CanUndo reports whether Undo would return a non-nil group.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether Redo would return a non-nil group.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Checkpoint is an opaque marker for the undo-stack depth at the moment
// it was taken.
type Checkpoint int

// Checkpoint captures the current undo depth.
func (h *History) Checkpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint(len(h.undo))
}

// Scope is a defer-friendly handle for a BeginGroup/CommitGroup pair.
type Scope struct {
	h *History
}

// GroupScope opens a group and returns a handle whose End commits it.
func (h *History) GroupScope() Scope {
	h.BeginGroup()
	return Scope{h: h}
}

// End commits the group opened by GroupScope.
func (s Scope) End() {
	s.h.CommitGroup()
}

// Transaction runs fn with a group open, committing it if fn returns nil
// and cancelling it (discarding any edits appended) if fn returns an
// error.
func (h *History) Transaction(fn func() error) error {
	h.BeginGroup()
	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}
	h.CommitGroup()
	return nil
}
