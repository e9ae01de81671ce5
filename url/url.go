// SPDX-License-Identifier: GPL-3.0-or-later

// Package url implements the RFC-3986-plus-WHATWG URL value type used
// throughout httpcore: parsing, percent/IDN encoding, reference resolution,
// and canonical equality/string rendering.
//
// Unlike [net/url], a [URL] is fully immutable once built: every mutating
// operation goes through a [Builder] and returns a new value.
package url

import (
	"fmt"
	"strings"
)

// Scheme identifies the two schemes this package understands.
type Scheme string

// The two supported schemes.
const (
	HTTP  Scheme = "http"
	HTTPS Scheme = "https"
)

// DefaultPort returns the default port for scheme, or 0 if unknown.
func (s Scheme) DefaultPort() int {
	switch s {
	case HTTP:
		return 80
	case HTTPS:
		return 443
	default:
		return 0
	}
}

// QueryParam is one name/optional-value pair of a query. A nil Value means
// the parameter appeared without "=" (distinguishing "?a" from "?a=").
type QueryParam struct {
	Name  string
	Value *string
}

// URL is an immutable parsed URL.
//
// Percent-encoding is canonicalized to uppercase hex on emission, but the
// original case of bytes that did not need re-encoding is preserved from
// parsing. path always has a leading empty segment, representing the
// leading "/" (so "http://a" has Path == [""], and "http://a/b" has
// Path == ["", "b"]).
type URL struct {
	scheme    Scheme
	username  string // decoded
	password  string // decoded
	host      string // canonical: lower-case A-label, or unbracketed IPv6, or IPv4 literal
	isIPv6    bool
	port      int // always set (default applied)
	pathSegs  []string // decoded segments; first entry is always ""
	hasQuery  bool
	query     []QueryParam // decoded name/value
	fragment  string       // decoded; hasFrag tells an empty fragment from an absent one
	hasFrag   bool
}

// Scheme returns the URL's scheme.
func (u *URL) Scheme() Scheme { return u.scheme }

// Username returns the decoded user-info username, or "" if absent.
func (u *URL) Username() string { return u.username }

// Password returns the decoded user-info password, or "" if absent.
func (u *URL) Password() string { return u.password }

// Host returns the canonical host: lower-case A-labels for domain names,
// and the unbracketed canonical form for IPv6 literals (e.g. "2001:db8::2:1").
func (u *URL) Host() string { return u.host }

// IsIPv6 reports whether Host is an IPv6 literal.
func (u *URL) IsIPv6() bool { return u.isIPv6 }

// Port returns the port, defaulted to the scheme's standard port if absent.
func (u *URL) Port() int { return u.port }

// PathSegments returns the decoded path segments. The first element is
// always "" (representing the leading "/").
func (u *URL) PathSegments() []string {
	out := make([]string, len(u.pathSegs))
	copy(out, u.pathSegs)
	return out
}

// EncodedPath returns the percent-encoded path, e.g. "/a/b%20c".
//
// pathSegs[0] is always "" (the leading "/"); the remaining segments are
// joined with "/" after it.
func (u *URL) EncodedPath() string {
	segs := make([]string, len(u.pathSegs))
	for i, seg := range u.pathSegs {
		segs[i] = encodePathSegment(seg)
	}
	return "/" + strings.Join(segs[1:], "/")
}

// RequestTarget returns the origin-form request target used on an
// HTTP/1.1 request line or an HTTP/2 ":path" pseudo-header: the encoded
// path, plus "?"+encoded query when a query is present. Never includes
// the fragment, which is never sent over the wire.
func (u *URL) RequestTarget() string {
	if u.hasQuery {
		return u.EncodedPath() + "?" + u.EncodedQuery()
	}
	return u.EncodedPath()
}

// HasQuery reports whether "?" appeared in the URL (distinguishing an
// empty query from an absent one).
func (u *URL) HasQuery() bool { return u.hasQuery }

// QueryParams returns the ordered, decoded query parameters.
func (u *URL) QueryParams() []QueryParam {
	out := make([]QueryParam, len(u.query))
	copy(out, u.query)
	return out
}

// QueryParamValues returns, in order, the values of every parameter named
// name (case-sensitive, per RFC 3986). A present-without-value parameter
// contributes "".
func (u *URL) QueryParamValues(name string) []string {
	var out []string
	for _, p := range u.query {
		if p.Name == name {
			if p.Value != nil {
				out = append(out, *p.Value)
			} else {
				out = append(out, "")
			}
		}
	}
	return out
}

// EncodedQuery returns the percent-encoded query string without the
// leading "?", or "" if HasQuery is false.
func (u *URL) EncodedQuery() string {
	if !u.hasQuery {
		return ""
	}
	var b strings.Builder
	for i, p := range u.query {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeQueryComponent(p.Name))
		if p.Value != nil {
			b.WriteByte('=')
			b.WriteString(encodeQueryComponent(*p.Value))
		}
	}
	return b.String()
}

// HasFragment reports whether "#" appeared in the URL.
func (u *URL) HasFragment() bool { return u.hasFrag }

// Fragment returns the decoded fragment (without "#").
func (u *URL) Fragment() string { return u.fragment }

// EncodedFragment returns the percent-encoded fragment without "#".
func (u *URL) EncodedFragment() string {
	if !u.hasFrag {
		return ""
	}
	return encodeFragment(u.fragment)
}

// IsDefaultPort reports whether Port equals Scheme's default port.
func (u *URL) IsDefaultPort() bool {
	return u.port == u.scheme.DefaultPort()
}

// hostForEmit renders Host bracketed if it is IPv6.
func (u *URL) hostForEmit() string {
	if u.isIPv6 {
		return "[" + u.host + "]"
	}
	return encodeHost(u.host)
}

// String renders the canonical form of the URL.
func (u *URL) String() string {
	var b strings.Builder
	b.WriteString(string(u.scheme))
	b.WriteString("://")
	if u.username != "" || u.password != "" {
		b.WriteString(encodeUserinfo(u.username))
		if u.password != "" {
			b.WriteByte(':')
			b.WriteString(encodeUserinfo(u.password))
		}
		b.WriteByte('@')
	}
	b.WriteString(u.hostForEmit())
	if !u.IsDefaultPort() {
		fmt.Fprintf(&b, ":%d", u.port)
	}
	b.WriteString(u.EncodedPath())
	if u.hasQuery {
		b.WriteByte('?')
		b.WriteString(u.EncodedQuery())
	}
	if u.hasFrag {
		b.WriteByte('#')
		b.WriteString(u.EncodedFragment())
	}
	return b.String()
}

// Redact returns "scheme://host/..." when user-info is present, and the
// full String() otherwise, for safe inclusion in logs/errors.
func (u *URL) Redact() string {
	if u.username == "" && u.password == "" {
		return u.String()
	}
	return fmt.Sprintf("%s://%s/...", u.scheme, u.hostForEmit())
}

// NewBuilder returns a [Builder] pre-populated from u, for constructing a
// modified copy.
func (u *URL) NewBuilder() *Builder {
	b := &Builder{
		scheme:   u.scheme,
		username: u.username,
		password: u.password,
		host:     u.host,
		isIPv6:   u.isIPv6,
		port:     u.port,
		pathSegs: append([]string{}, u.pathSegs...),
		hasQuery: u.hasQuery,
		query:    append([]QueryParam{}, u.query...),
		fragment: u.fragment,
		hasFrag:  u.hasFrag,
	}
	return b
}

// equalKey returns the normalized tuple used for Equal and canonical
// comparisons: case-folded scheme/host, canonical port, decoded-then-
// re-encoded path/query/fragment bytes.
func (u *URL) equalKey() string {
	return string(u.scheme) + "://" + u.host + ":" + fmt.Sprint(u.port) + u.EncodedPath() + "?" + u.EncodedQuery() + "#" + u.EncodedFragment()
}

// Equal reports whether u and other denote the same normalized URL.
func (u *URL) Equal(other *URL) bool {
	if other == nil {
		return false
	}
	return u.equalKey() == other.equalKey()
}
