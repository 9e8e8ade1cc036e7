// Package wordindex maintains a per-buffer, frequency-ranked identifier
// index fed by buffer edit events, backing Insert mode's word completion.
package wordindex

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/nota/internal/buffer"
)

// minWordLen excludes single-character identifiers from the index; they
// add lookup cost without being useful completion candidates.
const minWordLen = 2

// Database tracks identifier word counts per buffer and across every
// buffer combined, so completion in one buffer can suggest a word typed
// in another.
type Database struct {
	mu     sync.Mutex
	perBuf map[buffer.Handle]map[string]int
	global map[string]int
}

// New returns an empty Database.
func New() *Database {
	return &Database{
		perBuf: make(map[buffer.Handle]map[string]int),
		global: make(map[string]int),
	}
}

// Add tokenizes text into identifier words and increments their counts
// for buffer h, called when text is inserted into h.
func (d *Database) Add(h buffer.Handle, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bucket := d.perBuf[h]
	if bucket == nil {
		bucket = make(map[string]int)
		d.perBuf[h] = bucket
	}
	for _, w := range tokenize(text) {
		bucket[w]++
		d.global[w]++
	}
}

// Remove decrements counts for text removed from buffer h, called when
// text is deleted from h. Counts never go negative.
func (d *Database) Remove(h buffer.Handle, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bucket := d.perBuf[h]
	if bucket == nil {
		return
	}
	for _, w := range tokenize(text) {
		if bucket[w] == 0 {
			continue
		}
		bucket[w]--
		if bucket[w] == 0 {
			delete(bucket, w)
		}
		if d.global[w] > 0 {
			d.global[w]--
			if d.global[w] == 0 {
				delete(d.global, w)
			}
		}
	}
}

// Forget drops every word buffer h contributed. Called on buffer close
// so a closed buffer's vocabulary stops being suggested.
func (d *Database) Forget(h buffer.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bucket, ok := d.perBuf[h]
	if !ok {
		return
	}
	for w, n := range bucket {
		d.global[w] -= n
		if d.global[w] <= 0 {
			delete(d.global, w)
		}
	}
	delete(d.perBuf, h)
}

type candidate struct {
	word  string
	count int
}

// Suggestions returns every indexed word starting with prefix, excluding
// prefix itself, most-frequent first and alphabetical on ties. limit <= 0
// means unbounded.
func (d *Database) Suggestions(prefix string, limit int) []string {
	if prefix == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var matches []candidate
	for w, n := range d.global {
		if w == prefix || !strings.HasPrefix(w, prefix) {
			continue
		}
		matches = append(matches, candidate{w, n})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].word < matches[j].word
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.word
	}
	return out
}

// tokenize splits text into maximal runs of identifier-classified runes,
// dropping anything shorter than minWordLen.
func tokenize(text string) []string {
	var words []string
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			size = 1
		}
		if buffer.ClassifyRune(r) == buffer.WordIdentifier {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			if i-start >= minWordLen {
				words = append(words, text[start:i])
			}
			start = -1
		}
		i += size
	}
	if start >= 0 && len(text)-start >= minWordLen {
		words = append(words, text[start:])
	}
	return words
}
