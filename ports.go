// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"crypto/tls"
	"time"

	"github.com/bassosimone/httpcore/internal/route"
)

// Dns resolves a hostname to a list of addresses (spec.md §6). It is a
// type alias for [route.Dns] so a [*Client]'s configured Dns flows
// directly into the [route.Address] the planner consumes, with no
// adapter layer in between.
type Dns = route.Dns

// ProxySelector chooses the proxy chain for a request URL (spec.md §6),
// aliasing [route.ProxySelector] for the same reason as [Dns].
type ProxySelector = route.ProxySelector

// HostnameVerifier verifies a TLS peer against the requested hostname
// (spec.md §6), aliasing [route.HostnameVerifier].
type HostnameVerifier = route.HostnameVerifier

// Authenticator responds to a 401/407 challenge by producing a follow-up
// request with credentials attached, or nil to give up (spec.md §6).
type Authenticator interface {
	Authenticate(route *route.Route, resp *Response) (*Request, error)
}

// CookieJar persists cookies across redirects and calls (spec.md §6).
type CookieJar interface {
	SaveFromResponse(u string, cookies []string)
	LoadForRequest(u string) []string
}

// CacheStore backs the Cache interceptor (spec.md §4.J item 3, §6).
type CacheStore interface {
	Get(req *Request) (*Response, bool)
	Put(resp *Response)
	Update(resp *Response)
	Remove(req *Request)
}

// SecureSocketFactory upgrades a raw connection to TLS, exposing the ALPN
// result and peer certificates (spec.md §6). Nothing in this module
// consumes a SecureSocketFactory: handshakes go through
// [internal/dial.TLSHandshakeFunc], which does not implement this interface.
type SecureSocketFactory interface {
	Upgrade(raw any, host string, port int, protocols []string) (conn any, alpn string, peerCerts []*tlsCertificate, err error)
}

// tlsCertificate is a minimal DER-encoded certificate view, avoiding a
// hard dependency on crypto/x509 in the [SecureSocketFactory] port shape.
type tlsCertificate = tls.Certificate

// EventListener declares 25 one-shot hooks around DNS, connect,
// secure-connect, request/response headers/body, and call
// start/end/failure. This module calls only CallStart, CallEnd and
// CallFailed; the other hooks are never called.
type EventListener interface {
	CallStart(call *Call)
	CallEnd(call *Call)
	CallFailed(call *Call, err error)

	DnsStart(call *Call, host string)
	DnsEnd(call *Call, host string, addrs []string, err error)

	ProxySelectStart(call *Call, url string)
	ProxySelectEnd(call *Call, proxies []*route.Proxy)

	ConnectStart(call *Call, addr string)
	ConnectEnd(call *Call, addr string, err error)

	SecureConnectStart(call *Call)
	SecureConnectEnd(call *Call, alpn string, err error)

	ConnectionAcquired(call *Call, coalesced bool)
	ConnectionReleased(call *Call)

	RequestHeadersStart(call *Call)
	RequestHeadersEnd(call *Call, req *Request)
	RequestBodyStart(call *Call)
	RequestBodyEnd(call *Call, byteCount int64, err error)

	ResponseHeadersStart(call *Call)
	ResponseHeadersEnd(call *Call, resp *Response)
	ResponseBodyStart(call *Call)
	ResponseBodyEnd(call *Call, byteCount int64, err error)

	CacheHit(call *Call, resp *Response)
	CacheMiss(call *Call)

	RetryDecision(call *Call, attempt int, retry bool, err error)

	Timestamp(call *Call, event string, t time.Time)
}

// NoopEventListener implements [EventListener] with no-op methods; it is
// the default for every Call that does not configure one.
type NoopEventListener struct{}

var _ EventListener = NoopEventListener{}

func (NoopEventListener) CallStart(*Call)                                  {}
func (NoopEventListener) CallEnd(*Call)                                    {}
func (NoopEventListener) CallFailed(*Call, error)                          {}
func (NoopEventListener) DnsStart(*Call, string)                           {}
func (NoopEventListener) DnsEnd(*Call, string, []string, error)            {}
func (NoopEventListener) ProxySelectStart(*Call, string)                   {}
func (NoopEventListener) ProxySelectEnd(*Call, []*route.Proxy)             {}
func (NoopEventListener) ConnectStart(*Call, string)                       {}
func (NoopEventListener) ConnectEnd(*Call, string, error)                  {}
func (NoopEventListener) SecureConnectStart(*Call)                        {}
func (NoopEventListener) SecureConnectEnd(*Call, string, error)           {}
func (NoopEventListener) ConnectionAcquired(*Call, bool)                  {}
func (NoopEventListener) ConnectionReleased(*Call)                        {}
func (NoopEventListener) RequestHeadersStart(*Call)                       {}
func (NoopEventListener) RequestHeadersEnd(*Call, *Request)               {}
func (NoopEventListener) RequestBodyStart(*Call)                          {}
func (NoopEventListener) RequestBodyEnd(*Call, int64, error)              {}
func (NoopEventListener) ResponseHeadersStart(*Call)                     {}
func (NoopEventListener) ResponseHeadersEnd(*Call, *Response)            {}
func (NoopEventListener) ResponseBodyStart(*Call)                        {}
func (NoopEventListener) ResponseBodyEnd(*Call, int64, error)            {}
func (NoopEventListener) CacheHit(*Call, *Response)                      {}
func (NoopEventListener) CacheMiss(*Call)                                {}
func (NoopEventListener) RetryDecision(*Call, int, bool, error)          {}
func (NoopEventListener) Timestamp(*Call, string, time.Time)             {}
