package command

// alias is one registered alias's location within an AliasCollection's
// shared text arena.
type alias struct {
	start   int
	fromLen int
	toLen   int
}

func (a alias) from(texts string) string { return texts[a.start : a.start+a.fromLen] }
func (a alias) to(texts string) string {
	s := a.start + a.fromLen
	return texts[s : s+a.toLen]
}

// AliasCollection maps command names to replacement text, stored as
// (start, fromLen, toLen) triples into a single growing arena rather than
// one allocation per alias. Re-adding an existing alias removes its old
// entry first and shifts every later alias's start by the freed span.
type AliasCollection struct {
	texts   string
	aliases []alias
}

// NewAliasCollection returns an empty AliasCollection.
func NewAliasCollection() *AliasCollection {
	return &AliasCollection{}
}

// Add registers from as an alias expanding to to, replacing any existing
// alias for the same from.
func (c *AliasCollection) Add(from, to string) {
	for i, a := range c.aliases {
		if a.from(c.texts) == from {
			span := a.fromLen + a.toLen
			c.aliases = append(c.aliases[:i], c.aliases[i+1:]...)
			for j := range c.aliases[i:] {
				c.aliases[i+j].start -= span
			}
			c.texts = c.texts[:a.start] + c.texts[a.start+span:]
			break
		}
	}

	start := len(c.texts)
	c.texts += from + to
	c.aliases = append(c.aliases, alias{start: start, fromLen: len(from), toLen: len(to)})
}

// Find returns the replacement text registered for from, if any.
func (c *AliasCollection) Find(from string) (string, bool) {
	for _, a := range c.aliases {
		if a.from(c.texts) == from {
			return a.to(c.texts), true
		}
	}
	return "", false
}

// Len returns the number of registered aliases.
func (c *AliasCollection) Len() int { return len(c.aliases) }

// All returns every (from, to) pair, in registration order.
func (c *AliasCollection) All() []struct{ From, To string } {
	out := make([]struct{ From, To string }, len(c.aliases))
	for i, a := range c.aliases {
		out[i] = struct{ From, To string }{a.from(c.texts), a.to(c.texts)}
	}
	return out
}
