// SPDX-License-Identifier: GPL-3.0-or-later

// Package headers implements the case-insensitive, order-preserving header
// multimap used for requests and responses throughout httpcore.
package headers

import (
	"fmt"
	"strings"
)

// pair is one (name, value) entry, preserving the exact bytes supplied.
type pair struct {
	name  string
	value string
}

// List is an ordered sequence of (name, value) pairs. Name lookup is ASCII
// case-insensitive; iteration preserves insertion order. A List is
// immutable once built; use [Builder] to construct or derive one.
type List struct {
	pairs []pair
}

// Len returns the number of pairs.
func (l *List) Len() int { return len(l.pairs) }

// Name returns the name of the pair at index i, as originally supplied.
func (l *List) Name(i int) string { return l.pairs[i].name }

// Value returns the value of the pair at index i.
func (l *List) Value(i int) string { return l.pairs[i].value }

// Get returns the first value for name (case-insensitive), or ("", false).
func (l *List) Get(name string) (string, bool) {
	for _, p := range l.pairs {
		if strings.EqualFold(p.name, name) {
			return p.value, true
		}
	}
	return "", false
}

// Values returns every value for name (case-insensitive), in insertion order.
func (l *List) Values(name string) []string {
	var out []string
	for _, p := range l.pairs {
		if strings.EqualFold(p.name, name) {
			out = append(out, p.value)
		}
	}
	return out
}

// Has reports whether name (case-insensitive) appears at least once.
func (l *List) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// ByteSize returns Σ(len(name)+2+len(value)+1) over all pairs (spec.md §3).
// This is one byte per pair less than the header lines [internal/h1]
// writes, which are "name: value" followed by a two-byte "\r\n".
func (l *List) ByteSize() int64 {
	var n int64
	for _, p := range l.pairs {
		n += int64(len(p.name)) + 2 + int64(len(p.value)) + 1
	}
	return n
}

// ToMultimap returns a mapping from canonical-cased name to every value for
// that name, in insertion order. Canonical casing is the casing of the
// first occurrence of each distinct (case-insensitively compared) name.
func (l *List) ToMultimap() map[string][]string {
	out := map[string][]string{}
	canon := map[string]string{}
	for _, p := range l.pairs {
		key := strings.ToLower(p.name)
		if c, ok := canon[key]; ok {
			out[c] = append(out[c], p.value)
		} else {
			canon[key] = p.name
			out[p.name] = []string{p.value}
		}
	}
	return out
}

// NewBuilder returns an empty [Builder].
func NewBuilder() *Builder { return &Builder{} }

// NewBuilder returns a [Builder] pre-populated with l's pairs, for deriving
// a modified copy.
func (l *List) NewBuilder() *Builder {
	b := &Builder{}
	b.pairs = append(b.pairs, l.pairs...)
	return b
}

// String renders the list as CRLF-joined "Name: Value" lines, without a
// trailing blank line.
func (l *List) String() string {
	var b strings.Builder
	for i, p := range l.pairs {
		if i > 0 {
			b.WriteString("\r\n")
		}
		fmt.Fprintf(&b, "%s: %s", p.name, p.value)
	}
	return b.String()
}
