package cursor

import (
	"sort"

	"github.com/dshills/nota/internal/buffer"
)

// Collection is an ordered, non-overlapping set of cursors with one
// tracked as "main". After every mutation the set is re-sorted by
// range-start and overlapping or touching cursors are merged.
type Collection struct {
	cursors []Cursor
	main    int
}

// NewCollection returns a collection with a single cursor at p.
func NewCollection(p buffer.Position) *Collection {
	return &Collection{cursors: []Cursor{AtPosition(p)}}
}

// NewCollectionFrom returns a collection built from cursors, normalized
// (sorted, merged) with the first cursor's position used to pick the
// initial main index after normalization.
func NewCollectionFrom(cursors []Cursor) *Collection {
	if len(cursors) == 0 {
		return NewCollection(buffer.Position{})
	}
	cc := &Collection{cursors: append([]Cursor(nil), cursors...)}
	cc.normalize()
	return cc
}

// All returns a copy of every cursor, in sorted order.
func (cc *Collection) All() []Cursor {
	out := make([]Cursor, len(cc.cursors))
	copy(out, cc.cursors)
	return out
}

// Count returns the number of cursors.
func (cc *Collection) Count() int { return len(cc.cursors) }

// IsMulti reports whether more than one cursor is present.
func (cc *Collection) IsMulti() bool { return len(cc.cursors) > 1 }

// Main returns the main cursor.
func (cc *Collection) Main() Cursor { return cc.cursors[cc.main] }

// MainIndex returns the main cursor's index into All().
func (cc *Collection) MainIndex() int { return cc.main }

// SetMain replaces the main cursor's value.
func (cc *Collection) SetMain(c Cursor) {
	cc.cursors[cc.main] = c
	cc.normalize()
}

// Set replaces every cursor with a single cursor c.
func (cc *Collection) Set(c Cursor) {
	cc.cursors = []Cursor{c}
	cc.main = 0
}

// Add appends a cursor, merging it into any overlapping cursor.
func (cc *Collection) Add(c Cursor) {
	cc.cursors = append(cc.cursors, c)
	cc.normalize()
}

// SetAll replaces every cursor, normalizing the result.
func (cc *Collection) SetAll(cursors []Cursor) {
	if len(cursors) == 0 {
		cc.cursors = []Cursor{AtPosition(buffer.Position{})}
		cc.main = 0
		return
	}
	cc.cursors = append([]Cursor(nil), cursors...)
	cc.normalize()
}

// CollapseAll drops every cursor's selection.
func (cc *Collection) CollapseAll() {
	for i := range cc.cursors {
		cc.cursors[i] = cc.cursors[i].Collapse()
	}
	cc.normalize()
}

// Clamp clamps every cursor into content's valid range.
func (cc *Collection) Clamp(content *buffer.Content) {
	for i := range cc.cursors {
		cc.cursors[i] = cc.cursors[i].Clamp(content)
	}
	cc.normalize()
}

// Map applies f to each cursor in place, then renormalizes.
func (cc *Collection) Map(f func(Cursor) Cursor) {
	for i := range cc.cursors {
		cc.cursors[i] = f(cc.cursors[i])
	}
	cc.normalize()
}

// normalize sorts cursors by range-start, merges overlapping/adjacent
// ones, and keeps main pointed at the same logical cursor when possible
// (tracked by identity of its pre-merge Position, falling back to 0).
func (cc *Collection) normalize() {
	if len(cc.cursors) == 0 {
		cc.cursors = []Cursor{AtPosition(buffer.Position{})}
		cc.main = 0
		return
	}
	mainPos := cc.cursors[cc.main].Position
	if len(cc.cursors) == 1 {
		cc.main = 0
		return
	}

	sort.Slice(cc.cursors, func(i, j int) bool {
		si, sj := cc.cursors[i].Start(), cc.cursors[j].Start()
		if si != sj {
			return si.Before(sj)
		}
		return cc.cursors[j].End().Before(cc.cursors[i].End())
	})

	merged := cc.cursors[:1]
	for _, c := range cc.cursors[1:] {
		last := &merged[len(merged)-1]
		if !c.Start().After(last.End()) {
			*last = last.mergeWith(c)
		} else {
			merged = append(merged, c)
		}
	}
	cc.cursors = merged

	cc.main = 0
	for i, c := range cc.cursors {
		if c.Position == mainPos || (c.Start().Compare(mainPos) <= 0 && mainPos.Compare(c.End()) <= 0) {
			cc.main = i
			break
		}
	}
}
