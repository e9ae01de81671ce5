// SPDX-License-Identifier: GPL-3.0-or-later

package cachecontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS1(t *testing.T) {
	header := "no-cache, no-store, max-age=1, s-maxage=2, private, public, must-revalidate, max-stale=3, min-fresh=4, only-if-cached, no-transform"
	cc := Parse([]string{header}, nil)
	assert.True(t, cc.NoCache)
	assert.True(t, cc.NoStore)
	assert.EqualValues(t, 1, cc.MaxAgeSeconds)
	assert.EqualValues(t, 2, cc.SMaxAgeSeconds)
	assert.True(t, cc.IsPrivate)
	assert.True(t, cc.IsPublic)
	assert.True(t, cc.MustRevalidate)
	assert.EqualValues(t, 3, cc.MaxStaleSeconds)
	assert.EqualValues(t, 4, cc.MinFreshSeconds)
	assert.True(t, cc.OnlyIfCached)
	assert.True(t, cc.NoTransform)
	assert.Equal(t, header, cc.String())
}

func TestUnknownDirectivePreservedOnlyWhenSingleHeaderNoPragma(t *testing.T) {
	single := Parse([]string{"no-cache, x-custom=1"}, nil)
	assert.Contains(t, single.String(), "x-custom=1")

	twoHeaders := Parse([]string{"no-cache", "x-custom=1"}, nil)
	assert.NotContains(t, twoHeaders.String(), "x-custom")

	withPragma := Parse([]string{"no-cache, x-custom=1"}, []string{"no-cache"})
	assert.NotContains(t, withPragma.String(), "x-custom")
}

func TestPragmaActsAsNoCache(t *testing.T) {
	cc := Parse(nil, []string{"no-cache"})
	assert.True(t, cc.NoCache)
}

func TestBuilderRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.NoCache().Public().Immutable()
	b2, err := b.MaxAge(90 * time.Second)
	require.NoError(t, err)
	cc := b2.Build()

	rendered := cc.String()
	reparsed := Parse([]string{rendered}, nil)
	assert.Equal(t, cc.NoCache, reparsed.NoCache)
	assert.Equal(t, cc.IsPublic, reparsed.IsPublic)
	assert.Equal(t, cc.Immutable, reparsed.Immutable)
	assert.Equal(t, cc.MaxAgeSeconds, reparsed.MaxAgeSeconds)
	assert.Equal(t, rendered, reparsed.String())
}

func TestMaxStaleWithoutValueMeansUnbounded(t *testing.T) {
	cc := Parse([]string{"max-stale"}, nil)
	assert.EqualValues(t, maxInt32, cc.MaxStaleSeconds)
}

func TestNegativeDurationRejected(t *testing.T) {
	b := NewBuilder()
	_, err := b.MaxAge(-1 * time.Second)
	assert.Error(t, err)
}

func TestEmptyDefaults(t *testing.T) {
	cc := Empty()
	assert.EqualValues(t, -1, cc.MaxAgeSeconds)
	assert.EqualValues(t, -1, cc.SMaxAgeSeconds)
	assert.EqualValues(t, -1, cc.MaxStaleSeconds)
	assert.EqualValues(t, -1, cc.MinFreshSeconds)
}
