// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteMethod(t *testing.T) {
	cases := []struct {
		status       int
		method       string
		wantMethod   string
		wantDropBody bool
	}{
		{307, "POST", "POST", false},
		{308, "PUT", "PUT", false},
		{303, "POST", "GET", true},
		{303, "GET", "GET", true},
		{301, "POST", "GET", true},
		{302, "POST", "GET", true},
		{301, "GET", "GET", false},
		{301, "HEAD", "HEAD", false},
	}
	for _, c := range cases {
		gotMethod, gotDrop := rewriteMethod(c.status, c.method)
		assert.Equal(t, c.wantMethod, gotMethod, "status %d method %s", c.status, c.method)
		assert.Equal(t, c.wantDropBody, gotDrop, "status %d method %s", c.status, c.method)
	}
}

func TestSameOrigin(t *testing.T) {
	assert.True(t, sameOrigin("example.com", "EXAMPLE.COM"))
	assert.False(t, sameOrigin("example.com", "other.example.com"))
}

func TestCrossesSchemeDowngrade(t *testing.T) {
	assert.True(t, crossesSchemeDowngrade("https", "http"))
	assert.False(t, crossesSchemeDowngrade("http", "https"))
	assert.False(t, crossesSchemeDowngrade("https", "https"))
}

func TestRetryAndFollowUpStopsAtMaxFollowUps(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	i := &retryAndFollowUp{cfg: &Config{MaxFollowUps: 2, FollowRedirects: true, FollowSslRedirects: true}}

	interceptors := []Interceptor{
		i,
		InterceptorFunc(func(chain Chain) (*Response, error) {
			// Always redirect to itself, so MaxFollowUps is exhausted.
			b := chain.Request().NewBuilder()
			_, _ = b.SetHeader("Location", "/")
			req2, _ := b.Build()
			return NewResponseBuilder(req2).StatusCode(302).Header(req2.Header()).Build()
		}),
	}
	c := newRealChain(interceptors, 1, req, nil, testChainConfig())

	_, err := c.run()

	assert.Error(t, err)
}

func TestRetryAndFollowUpFollowsRedirect(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/old")
	i := &retryAndFollowUp{cfg: &Config{MaxFollowUps: 20, FollowRedirects: true, FollowSslRedirects: true}}

	var seenPaths []string
	interceptors := []Interceptor{
		i,
		InterceptorFunc(func(chain Chain) (*Response, error) {
			seenPaths = append(seenPaths, chain.Request().URL().EncodedPath())
			if len(seenPaths) == 1 {
				b := chain.Request().NewBuilder()
				_, _ = b.SetHeader("Location", "/new")
				req2, _ := b.Build()
				return NewResponseBuilder(req2).StatusCode(302).Header(req2.Header()).Build()
			}
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}
	c := newRealChain(interceptors, 1, req, nil, testChainConfig())

	resp, err := c.run()

	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Len(t, seenPaths, 2)
}
