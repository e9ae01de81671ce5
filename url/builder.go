// SPDX-License-Identifier: GPL-3.0-or-later

package url

import "fmt"

// Builder constructs a [URL] incrementally. Obtain one via [NewBuilder] or
// [URL.NewBuilder]; call [Builder.Build] to produce the immutable value.
type Builder struct {
	scheme   Scheme
	username string
	password string
	host     string
	isIPv6   bool
	port     int
	pathSegs []string
	hasQuery bool
	query    []QueryParam
	fragment string
	hasFrag  bool
	hostErr  error
}

// NewBuilder returns an empty [Builder] for the given scheme and host.
func NewBuilder(scheme Scheme, host string) *Builder {
	b := &Builder{scheme: scheme, pathSegs: []string{""}}
	b.Host(host)
	return b
}

// Scheme sets the scheme.
func (b *Builder) Scheme(scheme Scheme) *Builder {
	b.scheme = scheme
	return b
}

// Username sets the decoded username.
func (b *Builder) Username(username string) *Builder {
	b.username = username
	return b
}

// Password sets the decoded password.
func (b *Builder) Password(password string) *Builder {
	b.password = password
	return b
}

// Host sets the host, applying the same IDN/IPv6 canonicalization as Parse.
func (b *Builder) Host(host string) *Builder {
	h, isIPv6, err := parseHost(host)
	if err != nil {
		// Preserve the invalid input verbatim; Build reports the error.
		b.host = host
		b.isIPv6 = false
		b.hostErr = err
		return b
	}
	b.host = h
	b.isIPv6 = isIPv6
	b.hostErr = nil
	return b
}

// Port sets the port explicitly (1..65535).
func (b *Builder) Port(port int) *Builder {
	b.port = port
	return b
}

// SetPathSegments replaces the path with the given decoded segments. The
// caller must include the leading "" segment.
func (b *Builder) SetPathSegments(segs []string) *Builder {
	b.pathSegs = append([]string{}, segs...)
	return b
}

// AddPathSegment appends a single decoded path segment.
func (b *Builder) AddPathSegment(seg string) *Builder {
	b.pathSegs = append(b.pathSegs, seg)
	return b
}

// SetQuery replaces the entire query, marking HasQuery true (even if
// params is empty, matching "?" with no parameters).
func (b *Builder) SetQuery(params []QueryParam) *Builder {
	b.hasQuery = true
	b.query = append([]QueryParam{}, params...)
	return b
}

// ClearQuery removes the query entirely (HasQuery becomes false).
func (b *Builder) ClearQuery() *Builder {
	b.hasQuery = false
	b.query = nil
	return b
}

// AddQueryParameter appends a decoded name/value pair, using the strict
// form where "+" is treated literally (not as a space).
func (b *Builder) AddQueryParameter(name, value string) *Builder {
	b.hasQuery = true
	v := value
	b.query = append(b.query, QueryParam{Name: name, Value: &v})
	return b
}

// AddQueryParameterNoValue appends a present-without-value parameter.
func (b *Builder) AddQueryParameterNoValue(name string) *Builder {
	b.hasQuery = true
	b.query = append(b.query, QueryParam{Name: name, Value: nil})
	return b
}

// Fragment sets the decoded fragment.
func (b *Builder) Fragment(fragment string) *Builder {
	b.hasFrag = true
	b.fragment = fragment
	return b
}

// ClearFragment removes the fragment.
func (b *Builder) ClearFragment() *Builder {
	b.hasFrag = false
	b.fragment = ""
	return b
}

// Build validates and returns the immutable [*URL].
func (b *Builder) Build() (*URL, error) {
	if b.hostErr != nil {
		return nil, b.hostErr
	}
	if b.scheme != HTTP && b.scheme != HTTPS {
		return nil, fmt.Errorf("invalid url: unsupported scheme %q", b.scheme)
	}
	if b.host == "" {
		return nil, fmt.Errorf("invalid url: host is required")
	}
	port := b.port
	if port == 0 {
		port = b.scheme.DefaultPort()
	}
	segs := b.pathSegs
	if len(segs) == 0 || segs[0] != "" {
		segs = append([]string{""}, segs...)
	}
	return &URL{
		scheme:   b.scheme,
		username: b.username,
		password: b.password,
		host:     b.host,
		isIPv6:   b.isIPv6,
		port:     port,
		pathSegs: append([]string{}, segs...),
		hasQuery: b.hasQuery,
		query:    append([]QueryParam{}, b.query...),
		fragment: b.fragment,
		hasFrag:  b.hasFrag,
	}, nil
}
