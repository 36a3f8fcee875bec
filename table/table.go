// Package table declares the find/replace rules used to migrate source files
// from the Handmade Math 1.x naming convention to 2.x.
//
// A Table is an ordered list of entries partitioned into contiguous groups.
// Declaration order is priority order: when two entries of the same group
// complete on the same byte, the one declared first wins. Tables are
// immutable once built and may be shared between any number of matchers.
package table

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	// ErrEmptyFind is returned when an entry has nothing to match.
	ErrEmptyFind = errors.New("entry has an empty find text")

	// ErrGroupOrder is returned when entries are not grouped contiguously
	// in group declaration order.
	ErrGroupOrder = errors.New("entries are not ordered by group")

	// ErrUnknownGroup is returned for a group name or number that does
	// not exist.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInvalidSuffix is returned when a dimensional suffix is not a
	// lowercase ASCII letter.
	ErrInvalidSuffix = errors.New("suffix must be a lowercase ASCII letter")
)

// Entry is a single textual rewrite rule.
type Entry struct {
	Find    string `yaml:"find" toml:"find"`       // Bytes to match, never empty
	Replace string `yaml:"replace" toml:"replace"` // Bytes emitted instead, may be empty
	Group   Group  `yaml:"group" toml:"group"`

	// Suffixes lists lowercase dimensional-variant letters that are
	// upper-cased when they directly follow a committed match.
	Suffixes string `yaml:"suffixes,omitempty" toml:"suffixes,omitempty"`

	// WrapAngle wraps the first call argument in the angle helper.
	// Only meaningful for Handedness entries.
	WrapAngle bool `yaml:"wrap_angle,omitempty" toml:"wrap_angle,omitempty"`

	// Warning describes a semantic change introduced by the rename.
	Warning string `yaml:"warning,omitempty" toml:"warning,omitempty"`
}

// String renders the entry as "find -> replace".
func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s", e.Find, e.Replace)
}

// HasSuffix reports whether c is one of the entry's dimensional suffixes.
func (e Entry) HasSuffix(c byte) bool {
	return e.Suffixes != "" && strings.IndexByte(e.Suffixes, c) >= 0
}

// pattern is an entry with its precomputed failure function.
type pattern struct {
	Entry
	fail []int
}

// Table is an immutable, ordered set of entries.
type Table struct {
	patterns []pattern
	ranges   [numGroups][2]int
}

// New validates entries and builds a table from them.
func New(entries ...Entry) (*Table, error) {
	t := &Table{patterns: make([]pattern, 0, len(entries))}

	if !slices.IsSortedFunc(entries, func(a, b Entry) int { return int(a.Group) - int(b.Group) }) {
		return nil, ErrGroupOrder
	}

	for g := range t.ranges {
		t.ranges[g] = [2]int{len(entries), len(entries)}
	}

	for i, e := range entries {
		if e.Find == "" {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Group, ErrEmptyFind)
		}
		if e.Group >= numGroups {
			return nil, fmt.Errorf("entry %d (%q): %w %d", i, e.Find, ErrUnknownGroup, e.Group)
		}
		for j := 0; j < len(e.Suffixes); j++ {
			if c := e.Suffixes[j]; c < 'a' || c > 'z' {
				return nil, fmt.Errorf("entry %d (%q): %w", i, e.Find, ErrInvalidSuffix)
			}
		}

		r := &t.ranges[e.Group]
		if r[0] == len(entries) {
			r[0] = i
		}
		r[1] = i + 1

		t.patterns = append(t.patterns, pattern{Entry: e, fail: failure(e.Find)})
	}

	// Empty groups collapse to an empty range at the position they would occupy.
	next := len(entries)
	for g := numGroups - 1; ; g-- {
		if t.ranges[g][0] == len(entries) {
			t.ranges[g] = [2]int{next, next}
		}
		next = t.ranges[g][0]
		if g == 0 {
			break
		}
	}

	return t, nil
}

// MustNew is like New but panics on invalid entries.
func MustNew(entries ...Entry) *Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.patterns)
}

// Entry returns the i-th entry.
func (t *Table) Entry(i int) Entry {
	return t.patterns[i].Entry
}

// Entries returns a copy of all entries in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.patterns))
	for i, p := range t.patterns {
		out[i] = p.Entry
	}
	return out
}

// Range returns the half-open index range [lo, hi) occupied by group g.
func (t *Table) Range(g Group) (lo, hi int) {
	if g >= numGroups {
		return 0, 0
	}
	return t.ranges[g][0], t.ranges[g][1]
}

// Advance returns the progress of entry i after consuming c, given that k
// bytes of its find text matched up to the previous byte. The result is the
// length of the longest prefix of the find text ending at c.
func (t *Table) Advance(i, k int, c byte) int {
	p := &t.patterns[i]
	find := p.Find
	for k > 0 && (k == len(find) || find[k] != c) {
		k = p.fail[k-1]
	}
	if find[k] == c {
		k++
	}
	return k
}

// Complete reports whether progress k completes entry i.
func (t *Table) Complete(i, k int) bool {
	return k == len(t.patterns[i].Find)
}

// failure computes the KMP failure function of s: fail[j] is the length of
// the longest proper prefix of s[:j+1] that is also its suffix.
func failure(s string) []int {
	fail := make([]int, len(s))
	k := 0
	for j := 1; j < len(s); j++ {
		for k > 0 && s[j] != s[k] {
			k = fail[k-1]
		}
		if s[j] == s[k] {
			k++
		}
		fail[j] = k
	}
	return fail
}
