// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/httpcore/cachecontrol"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/url"
)

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestRequestBuilderDefaultsToGetWithNoBody(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")

	req, err := NewRequestBuilder(u).Build()

	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method())
	assert.Nil(t, req.Body())
}

func TestRequestBuilderDefaultsToPostWithBody(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	body := NewStringBody(nil, "payload")

	req, err := NewRequestBuilder(u).Post(body).Build()

	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, body, req.Body())
}

func TestRequestBuilderRejectsBodyOnGet(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	b := NewRequestBuilder(u)
	b.Get()
	b.body = NewStringBody(nil, "not allowed")

	_, err := b.Build()

	assert.Error(t, err)
}

func TestRequestBuilderRequiresBodyOnPost(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")

	_, err := NewRequestBuilder(u).Method("POST").Build()

	assert.Error(t, err)
}

func TestRequestBuilderRequiresURL(t *testing.T) {
	b := &RequestBuilder{header: headers.NewBuilder(), tags: newTagMap()}

	_, err := b.Build()

	assert.Error(t, err)
}

func TestRequestHeaderRoundTrip(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	b := NewRequestBuilder(u)
	_, err := b.Header("X-Test", "one")
	require.NoError(t, err)
	_, err = b.Header("X-Test", "two")
	require.NoError(t, err)

	req, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, req.Header().Values("X-Test"))
}

func TestRequestSetHeaderReplaces(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	b := NewRequestBuilder(u)
	_, _ = b.Header("X-Test", "one")
	_, err := b.SetHeader("X-Test", "replaced")
	require.NoError(t, err)

	req, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"replaced"}, req.Header().Values("X-Test"))
}

func TestRequestRemoveHeader(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	b := NewRequestBuilder(u)
	_, _ = b.Header("X-Test", "one")
	b.RemoveHeader("X-Test")

	req, err := b.Build()
	require.NoError(t, err)

	assert.False(t, req.Header().Has("X-Test"))
}

func TestRequestTag(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	req, err := NewRequestBuilder(u).Tag("k", "v").Build()
	require.NoError(t, err)

	assert.Equal(t, "v", req.Tag("k"))
	assert.Nil(t, req.Tag("missing"))
}

func TestRequestCacheControl(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	cc := cachecontrol.Empty()
	cc.NoStore = true

	req, err := NewRequestBuilder(u).CacheControl(cc).Build()
	require.NoError(t, err)

	assert.True(t, req.CacheControl().NoStore)
}

func TestRequestNewBuilderCarriesTagsAndBody(t *testing.T) {
	u := mustParseURL(t, "https://example.com/")
	body := NewStringBody(nil, "payload")
	req, err := NewRequestBuilder(u).Post(body).Tag("k", "v").Build()
	require.NoError(t, err)

	derived := req.NewBuilder()
	out, err := derived.Build()
	require.NoError(t, err)

	assert.Equal(t, "v", out.Tag("k"))
	assert.Equal(t, body, out.Body())
}
