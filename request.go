// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"fmt"
	"strings"

	"github.com/bassosimone/httpcore/cachecontrol"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/url"
)

// Request is an immutable outbound HTTP request (spec.md §3 "Request"):
// URL, method, header list, optional body, and a tag map. Construct one
// with [NewRequestBuilder].
type Request struct {
	url    *url.URL
	method string
	header *headers.List
	body   RequestBody
	tags   *tagMap
}

// URL returns the request's target.
func (r *Request) URL() *url.URL { return r.url }

// Method returns the HTTP method, always uppercase.
func (r *Request) Method() string { return r.method }

// Header returns the request's header list.
func (r *Request) Header() *headers.List { return r.header }

// Body returns the request body, or nil if the request has none.
func (r *Request) Body() RequestBody { return r.body }

// Tag returns the value stashed under key by [RequestBuilder.Tag], or nil.
func (r *Request) Tag(key any) any { return r.tags.Tag(key) }

// CacheControl parses the request's Cache-Control header, if any.
func (r *Request) CacheControl() *cachecontrol.CacheControl {
	return cachecontrol.Parse(r.header.Values("Cache-Control"), nil)
}

// NewBuilder returns a [*RequestBuilder] seeded from this request, for
// deriving a follow-up request (redirect, retry, authentication retry).
func (r *Request) NewBuilder() *RequestBuilder {
	b := &RequestBuilder{url: r.url, method: r.method, header: r.header.NewBuilder(), body: r.body}
	b.tags = r.tags.clone()
	return b
}

// bodyAllowed reports whether method may carry a [RequestBody] (spec.md
// §3: "GET/HEAD forbid bodies; DELETE/POST/PUT/PATCH/QUERY allow them").
func bodyAllowed(method string) bool {
	switch method {
	case "GET", "HEAD":
		return false
	default:
		return true
	}
}

// bodyRequired reports whether method requires a non-nil [RequestBody].
func bodyRequired(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}

// RequestBuilder constructs a [*Request] (spec.md §3, §9 "builders").
type RequestBuilder struct {
	url    *url.URL
	method string
	header *headers.Builder
	body   RequestBody
	tags   *tagMap
}

// NewRequestBuilder returns a [*RequestBuilder] targeting u.
func NewRequestBuilder(u *url.URL) *RequestBuilder {
	return &RequestBuilder{url: u, header: headers.NewBuilder(), tags: newTagMap()}
}

// URL replaces the target URL, used by RetryAndFollowUp when following a
// redirect to a new location.
func (b *RequestBuilder) URL(u *url.URL) *RequestBuilder {
	b.url = u
	return b
}

// Method sets the HTTP method explicitly, overriding the default-method
// inference [RequestBuilder.Build] otherwise applies.
func (b *RequestBuilder) Method(method string) *RequestBuilder {
	b.method = strings.ToUpper(method)
	return b
}

// Get is equivalent to Method("GET") with no body.
func (b *RequestBuilder) Get() *RequestBuilder {
	b.method = "GET"
	b.body = nil
	return b
}

// Head is equivalent to Method("HEAD") with no body.
func (b *RequestBuilder) Head() *RequestBuilder {
	b.method = "HEAD"
	b.body = nil
	return b
}

// Delete sets method DELETE, with an optional body.
func (b *RequestBuilder) Delete(body RequestBody) *RequestBuilder {
	b.method = "DELETE"
	b.body = body
	return b
}

// Post sets method POST with body, which must be non-nil.
func (b *RequestBuilder) Post(body RequestBody) *RequestBuilder {
	b.method = "POST"
	b.body = body
	return b
}

// Put sets method PUT with body, which must be non-nil.
func (b *RequestBuilder) Put(body RequestBody) *RequestBuilder {
	b.method = "PUT"
	b.body = body
	return b
}

// Patch sets method PATCH with body, which must be non-nil.
func (b *RequestBuilder) Patch(body RequestBody) *RequestBuilder {
	b.method = "PATCH"
	b.body = body
	return b
}

// Header adds a header pair, validated by [headers.Builder.Add].
func (b *RequestBuilder) Header(name, value string) (*RequestBuilder, error) {
	if _, err := b.header.Add(name, value); err != nil {
		return b, err
	}
	return b, nil
}

// SetHeader replaces every existing value for name with value.
func (b *RequestBuilder) SetHeader(name, value string) (*RequestBuilder, error) {
	if _, err := b.header.Set(name, value); err != nil {
		return b, err
	}
	return b, nil
}

// RemoveHeader removes every value for name.
func (b *RequestBuilder) RemoveHeader(name string) *RequestBuilder {
	b.header.Remove(name)
	return b
}

// CacheControl sets the Cache-Control header from cc, replacing any prior
// value (spec.md §4.C).
func (b *RequestBuilder) CacheControl(cc *cachecontrol.CacheControl) *RequestBuilder {
	b.header.Set("Cache-Control", cc.String())
	return b
}

// Tag stashes value under key, retrievable later via [Request.Tag].
func (b *RequestBuilder) Tag(key, value any) *RequestBuilder {
	b.tags.SetTag(key, value)
	return b
}

// Build validates method/body compatibility, infers the default method
// when none was set explicitly, and returns the immutable [*Request]
// (spec.md §3 "Default method is GET when no body, POST when a body is
// supplied").
func (b *RequestBuilder) Build() (*Request, error) {
	if b.url == nil {
		return nil, fmt.Errorf("httpcore: request has no URL")
	}
	method := b.method
	if method == "" {
		if b.body == nil {
			method = "GET"
		} else {
			method = "POST"
		}
	}
	if b.body != nil && !bodyAllowed(method) {
		return nil, fmt.Errorf("httpcore: method %s forbids a request body", method)
	}
	if b.body == nil && bodyRequired(method) {
		return nil, fmt.Errorf("httpcore: method %s requires a request body", method)
	}
	return &Request{
		url:    b.url,
		method: method,
		header: b.header.Build(),
		body:   b.body,
		tags:   b.tags,
	}, nil
}
