// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/bassosimone/httpcore/cachecontrol"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/mediatype"
)

// Response is an immutable inbound HTTP response (spec.md §3 "Response"):
// status line, header list, a lazily-read body, timing, TLS info, and the
// chains of prior/network/cache responses that produced it. Construct one
// with [*ResponseBuilder].
type Response struct {
	request    *Request
	statusCode int
	reason     string
	protocol   string
	header     *headers.List
	body       *ResponseBody

	sentRequestAt      time.Time
	receivedResponseAt time.Time

	tlsState *tls.ConnectionState

	// priorResponse is the response this one followed up from (a
	// redirect or an authentication challenge); nil for the first
	// response of a call. The chain is capped at 20 per spec.md §4.J.
	priorResponse *Response

	// networkResponse is the response as it arrived from CallServer,
	// before BridgeHeaders stripped hop-by-hop framing and decompressed
	// the body; nil when this Response already is that raw form.
	networkResponse *Response

	// cacheResponse is the stored response the Cache interceptor
	// revalidated against, or served verbatim; nil on a cache miss.
	cacheResponse *Response
}

func (r *Response) Request() *Request           { return r.request }
func (r *Response) StatusCode() int             { return r.statusCode }
func (r *Response) Reason() string              { return r.reason }
func (r *Response) Protocol() string             { return r.protocol }
func (r *Response) Header() *headers.List       { return r.header }
func (r *Response) Body() *ResponseBody          { return r.body }
func (r *Response) SentRequestAt() time.Time     { return r.sentRequestAt }
func (r *Response) ReceivedResponseAt() time.Time { return r.receivedResponseAt }
func (r *Response) TLSState() *tls.ConnectionState { return r.tlsState }
func (r *Response) PriorResponse() *Response     { return r.priorResponse }
func (r *Response) NetworkResponse() *Response   { return r.networkResponse }
func (r *Response) CacheResponse() *Response     { return r.cacheResponse }

// IsSuccessful reports whether the status code is in [200, 300).
func (r *Response) IsSuccessful() bool { return r.statusCode >= 200 && r.statusCode < 300 }

// IsRedirect reports whether the status code is one RetryAndFollowUp
// treats as a redirect (spec.md §4.J item 1): 300-303, 307, 308.
func (r *Response) IsRedirect() bool {
	switch r.statusCode {
	case 300, 301, 302, 303, 307, 308:
		return true
	default:
		return false
	}
}

// CacheControl parses the response's Cache-Control (and legacy Pragma)
// headers (spec.md §4.C).
func (r *Response) CacheControl() *cachecontrol.CacheControl {
	return cachecontrol.Parse(r.header.Values("Cache-Control"), r.header.Values("Pragma"))
}

// priorChainLength counts this response plus every ancestor reachable via
// priorResponse, used by RetryAndFollowUp to enforce the follow-up cap.
func (r *Response) priorChainLength() int {
	n := 0
	for p := r; p != nil; p = p.priorResponse {
		n++
	}
	return n
}

// ResponseBuilder constructs a [*Response].
type ResponseBuilder struct {
	resp Response
}

// NewResponseBuilder returns a [*ResponseBuilder] for request.
func NewResponseBuilder(request *Request) *ResponseBuilder {
	return &ResponseBuilder{resp: Response{request: request, header: headers.NewBuilder().Build()}}
}

func (b *ResponseBuilder) StatusCode(code int) *ResponseBuilder {
	b.resp.statusCode = code
	return b
}

func (b *ResponseBuilder) Reason(reason string) *ResponseBuilder {
	b.resp.reason = reason
	return b
}

func (b *ResponseBuilder) Protocol(protocol string) *ResponseBuilder {
	b.resp.protocol = protocol
	return b
}

func (b *ResponseBuilder) Header(header *headers.List) *ResponseBuilder {
	b.resp.header = header
	return b
}

func (b *ResponseBuilder) Body(body *ResponseBody) *ResponseBuilder {
	b.resp.body = body
	return b
}

func (b *ResponseBuilder) SentRequestAt(t time.Time) *ResponseBuilder {
	b.resp.sentRequestAt = t
	return b
}

func (b *ResponseBuilder) ReceivedResponseAt(t time.Time) *ResponseBuilder {
	b.resp.receivedResponseAt = t
	return b
}

func (b *ResponseBuilder) TLSState(state *tls.ConnectionState) *ResponseBuilder {
	b.resp.tlsState = state
	return b
}

func (b *ResponseBuilder) PriorResponse(prior *Response) *ResponseBuilder {
	b.resp.priorResponse = prior
	return b
}

func (b *ResponseBuilder) NetworkResponse(network *Response) *ResponseBuilder {
	b.resp.networkResponse = network
	return b
}

func (b *ResponseBuilder) CacheResponse(cached *Response) *ResponseBuilder {
	b.resp.cacheResponse = cached
	return b
}

// Build validates the follow-up cap and returns the immutable [*Response].
func (b *ResponseBuilder) Build() (*Response, error) {
	r := b.resp
	if n := r.priorChainLength(); n > 21 {
		return nil, fmt.Errorf("httpcore: %d chained responses exceeds the follow-up cap", n-1)
	}
	out := r
	return &out, nil
}

// contentType parses the Content-Type header of header, or nil.
func contentType(header *headers.List) *mediatype.MediaType {
	v, ok := header.Get("Content-Type")
	if !ok {
		return nil
	}
	mt, err := mediatype.Parse(v)
	if err != nil {
		return nil
	}
	return mt
}
