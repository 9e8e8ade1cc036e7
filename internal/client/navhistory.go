package client

import "github.com/dshills/nota/internal/buffer"

// NavCapacity bounds the navigation history ring.
const NavCapacity = 64

// NavEntry is one recorded jump location.
type NavEntry struct {
	Buffer buffer.Handle
	Pos    buffer.Position
}

// NavHistory is a bounded back/forward ring of jump locations, the
// client-side analog of a browser's history stack.
type NavHistory struct {
	entries []NavEntry
	at      int // index of the "current" entry; -1 if empty
}

// NewNavHistory returns an empty NavHistory.
func NewNavHistory() *NavHistory {
	return &NavHistory{at: -1}
}

// Push records entry as the current location, discarding any forward
// entries (a push after navigating Back invalidates Forward). Oldest
// entries beyond NavCapacity are evicted.
func (h *NavHistory) Push(entry NavEntry) {
	if h.at >= 0 && h.at < len(h.entries)-1 {
		h.entries = h.entries[:h.at+1]
	}
	h.entries = append(h.entries, entry)
	h.at = len(h.entries) - 1

	if len(h.entries) > NavCapacity {
		drop := len(h.entries) - NavCapacity
		h.entries = h.entries[drop:]
		h.at -= drop
	}
}

// Back moves to the previous entry, returning it and ok == true, or
// ok == false if already at the oldest entry.
func (h *NavHistory) Back() (NavEntry, bool) {
	if h.at <= 0 {
		return NavEntry{}, false
	}
	h.at--
	return h.entries[h.at], true
}

// Forward moves to the next entry, returning it and ok == true, or
// ok == false if already at the newest entry.
func (h *NavHistory) Forward() (NavEntry, bool) {
	if h.at < 0 || h.at >= len(h.entries)-1 {
		return NavEntry{}, false
	}
	h.at++
	return h.entries[h.at], true
}

// Len returns the number of recorded entries.
func (h *NavHistory) Len() int { return len(h.entries) }
