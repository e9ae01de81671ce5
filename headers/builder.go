// SPDX-License-Identifier: GPL-3.0-or-later

package headers

import (
	"fmt"
	"strings"
)

// Builder constructs a [List] incrementally, validating each pair as it is
// added.
type Builder struct {
	pairs      []pair
	allowNonASCIIValues bool
}

// AllowUnsafeNonASCIIValues switches this builder to the "unsafe
// non-ASCII" variant (spec.md §4.B): non-ASCII bytes are allowed in values,
// but still rejected in names.
func (b *Builder) AllowUnsafeNonASCIIValues() *Builder {
	b.allowNonASCIIValues = true
	return b
}

// Add appends a validated (name, value) pair.
func (b *Builder) Add(name, value string) (*Builder, error) {
	if err := validateName(name); err != nil {
		return b, err
	}
	if err := b.validateValue(value); err != nil {
		return b, err
	}
	b.pairs = append(b.pairs, pair{name: name, value: value})
	return b, nil
}

// AddUnchecked appends (name, value) without validation, for internal
// callers (e.g. the H1/H2 codecs re-materializing a wire header block
// already known to be well-formed).
func (b *Builder) AddUnchecked(name, value string) *Builder {
	b.pairs = append(b.pairs, pair{name: name, value: value})
	return b
}

// Set removes every existing pair matching name (case-insensitive) and
// appends a single new pair.
func (b *Builder) Set(name, value string) (*Builder, error) {
	if err := validateName(name); err != nil {
		return b, err
	}
	if err := b.validateValue(value); err != nil {
		return b, err
	}
	out := b.pairs[:0:0]
	for _, p := range b.pairs {
		if !strings.EqualFold(p.name, name) {
			out = append(out, p)
		}
	}
	out = append(out, pair{name: name, value: value})
	b.pairs = out
	return b, nil
}

// Remove removes every pair matching name (case-insensitive).
func (b *Builder) Remove(name string) *Builder {
	out := b.pairs[:0:0]
	for _, p := range b.pairs {
		if !strings.EqualFold(p.name, name) {
			out = append(out, p)
		}
	}
	b.pairs = out
	return b
}

// AddLine parses a raw "Name: Value" line, trimming whitespace around both
// sides of the colon.
func (b *Builder) AddLine(line string) (*Builder, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return b, fmt.Errorf("headers: malformed line %q: missing colon", line)
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	return b.Add(name, value)
}

// Build returns the immutable [*List].
func (b *Builder) Build() *List {
	return &List{pairs: append([]pair{}, b.pairs...)}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("headers: empty name")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == ':' {
			return fmt.Errorf("headers: name %q contains a colon", name)
		}
		if isControl(c) {
			return fmt.Errorf("headers: name %q contains a control byte", name)
		}
		if c >= 0x80 {
			return fmt.Errorf("headers: name %q contains non-ASCII byte", name)
		}
	}
	return nil
}

func (b *Builder) validateValue(value string) error {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\r' || c == '\n' || c == 0 {
			return fmt.Errorf("headers: value %q contains CR/LF/NUL", value)
		}
		if !b.allowNonASCIIValues && c >= 0x80 {
			return fmt.Errorf("headers: value %q contains non-ASCII byte", value)
		}
	}
	return nil
}

func isControl(c byte) bool {
	return c < 0x20 || c == 0x7f
}
