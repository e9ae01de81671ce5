// SPDX-License-Identifier: GPL-3.0-or-later

package cachecontrol

import (
	"fmt"
	"time"
)

// Builder constructs a [*CacheControl] for use as an outgoing request's
// Cache-Control header. Each time-valued setter requires a non-negative
// duration; values are truncated to whole seconds and saturated at
// [math.MaxInt32].
type Builder struct {
	cc *CacheControl
}

// NewBuilder returns an empty [Builder].
func NewBuilder() *Builder {
	return &Builder{cc: Empty()}
}

func truncateSeconds(d time.Duration) (int32, error) {
	if d < 0 {
		return 0, fmt.Errorf("cachecontrol: duration must be non-negative, got %s", d)
	}
	secs := int64(d / time.Second)
	if secs > maxInt32 {
		return maxInt32, nil
	}
	return int32(secs), nil
}

// NoCache sets the no-cache directive.
func (b *Builder) NoCache() *Builder { b.cc.NoCache = true; return b }

// NoStore sets the no-store directive.
func (b *Builder) NoStore() *Builder { b.cc.NoStore = true; return b }

// MaxAge sets max-age.
func (b *Builder) MaxAge(d time.Duration) (*Builder, error) {
	s, err := truncateSeconds(d)
	if err != nil {
		return b, err
	}
	b.cc.MaxAgeSeconds = s
	return b, nil
}

// SMaxAge sets s-maxage.
func (b *Builder) SMaxAge(d time.Duration) (*Builder, error) {
	s, err := truncateSeconds(d)
	if err != nil {
		return b, err
	}
	b.cc.SMaxAgeSeconds = s
	return b, nil
}

// Private sets the private directive.
func (b *Builder) Private() *Builder { b.cc.IsPrivate = true; return b }

// Public sets the public directive.
func (b *Builder) Public() *Builder { b.cc.IsPublic = true; return b }

// MustRevalidate sets must-revalidate.
func (b *Builder) MustRevalidate() *Builder { b.cc.MustRevalidate = true; return b }

// MaxStale sets max-stale.
func (b *Builder) MaxStale(d time.Duration) (*Builder, error) {
	s, err := truncateSeconds(d)
	if err != nil {
		return b, err
	}
	b.cc.MaxStaleSeconds = s
	return b, nil
}

// MinFresh sets min-fresh.
func (b *Builder) MinFresh(d time.Duration) (*Builder, error) {
	s, err := truncateSeconds(d)
	if err != nil {
		return b, err
	}
	b.cc.MinFreshSeconds = s
	return b, nil
}

// OnlyIfCached sets only-if-cached.
func (b *Builder) OnlyIfCached() *Builder { b.cc.OnlyIfCached = true; return b }

// NoTransform sets no-transform.
func (b *Builder) NoTransform() *Builder { b.cc.NoTransform = true; return b }

// Immutable sets immutable.
func (b *Builder) Immutable() *Builder { b.cc.Immutable = true; return b }

// Build returns the constructed [*CacheControl]. Unlike [Parse], a
// builder-constructed value is always eligible for full directive
// rendering (there is no "Pragma interference" concept for an outgoing
// header built programmatically).
func (b *Builder) Build() *CacheControl {
	return b.cc
}
