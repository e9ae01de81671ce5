// SPDX-License-Identifier: GPL-3.0-or-later

package url

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses s into a [*URL]. Leading/trailing ASCII whitespace
// ("\t\n\f\r" and space) is trimmed first. Only "http" and "https" schemes
// are accepted.
func Parse(s string) (*URL, error) {
	s = trimASCIIWhitespace(s)

	schemeEnd := strings.IndexByte(s, ':')
	if schemeEnd <= 0 {
		return nil, fmt.Errorf("invalid url %q: missing scheme", s)
	}
	scheme := Scheme(strings.ToLower(s[:schemeEnd]))
	if scheme != HTTP && scheme != HTTPS {
		return nil, fmt.Errorf("invalid url %q: unsupported scheme %q", s, scheme)
	}
	rest := s[schemeEnd+1:]

	// Any mixture of "/" and "\" after "scheme:" introduces the authority.
	nslash := 0
	for nslash < len(rest) && (rest[nslash] == '/' || rest[nslash] == '\\') {
		nslash++
	}
	if nslash < 2 {
		return nil, fmt.Errorf("invalid url %q: missing authority", s)
	}
	rest = rest[nslash:]

	authorityEnd := len(rest)
	for i, c := range []byte(rest) {
		if c == '/' || c == '\\' || c == '?' || c == '#' {
			authorityEnd = i
			break
		}
	}
	authority := rest[:authorityEnd]
	rest = rest[authorityEnd:]

	username, password, host, isIPv6, port, err := parseAuthority(authority, scheme)
	if err != nil {
		return nil, err
	}

	var pathPart, queryPart, fragPart string
	hasQuery, hasFrag := false, false

	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		fragPart = rest[idx+1:]
		rest = rest[:idx]
		hasFrag = true
	}
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		queryPart = rest[idx+1:]
		rest = rest[:idx]
		hasQuery = true
	}
	pathPart = rest

	segs, err := parsePath(pathPart)
	if err != nil {
		return nil, err
	}

	var query []QueryParam
	if hasQuery {
		query = parseQuery(queryPart)
	}

	return &URL{
		scheme:   scheme,
		username: username,
		password: password,
		host:     host,
		isIPv6:   isIPv6,
		port:     port,
		pathSegs: segs,
		hasQuery: hasQuery,
		query:    query,
		fragment: percentDecode(fragPart),
		hasFrag:  hasFrag,
	}, nil
}

func trimASCIIWhitespace(s string) string {
	isWS := func(c byte) bool {
		return c == '\t' || c == '\n' || c == '\f' || c == '\r' || c == ' '
	}
	start, end := 0, len(s)
	for start < end && isWS(s[start]) {
		start++
	}
	for end > start && isWS(s[end-1]) {
		end--
	}
	return s[start:end]
}

// parseAuthority splits "[user[:pass]@]host[:port]" per spec.md §4.A: the
// LAST "@" in the authority separates user-info from host; within
// user-info, the FIRST ":" separates username from password.
func parseAuthority(authority string, scheme Scheme) (username, password, host string, isIPv6 bool, port int, err error) {
	authority = strings.ReplaceAll(authority, "\\", "/")

	userinfo := ""
	hostport := authority
	if idx := strings.LastIndexByte(authority, '@'); idx >= 0 {
		userinfo = authority[:idx]
		hostport = authority[idx+1:]
	}

	if userinfo != "" {
		if idx := strings.IndexByte(userinfo, ':'); idx >= 0 {
			username = percentDecode(userinfo[:idx])
			password = percentDecode(userinfo[idx+1:])
		} else {
			username = percentDecode(userinfo)
		}
	}

	hostToken := hostport
	portToken := ""
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", "", "", false, 0, fmt.Errorf("invalid url: unterminated IPv6 literal in %q", authority)
		}
		hostToken = hostport[:end+1]
		if rest := hostport[end+1:]; strings.HasPrefix(rest, ":") {
			portToken = rest[1:]
		}
	} else if idx := strings.LastIndexByte(hostport, ':'); idx >= 0 {
		hostToken = hostport[:idx]
		portToken = hostport[idx+1:]
	}

	host, isIPv6, err = parseHost(hostToken)
	if err != nil {
		return "", "", "", false, 0, err
	}
	if host == "" {
		return "", "", "", false, 0, fmt.Errorf("invalid url: empty host in %q", authority)
	}

	port = scheme.DefaultPort()
	if portToken != "" {
		n, perr := strconv.Atoi(portToken)
		if perr != nil || n < 1 || n > 65535 {
			return "", "", "", false, 0, fmt.Errorf("invalid url: bad port %q", portToken)
		}
		port = n
	}
	return username, password, host, isIPv6, port, nil
}

// parsePath splits an encoded path into decoded segments, always prefixing
// an empty leading segment for the leading "/" (even when pathPart is "").
func parsePath(pathPart string) ([]string, error) {
	pathPart = strings.ReplaceAll(pathPart, "\\", "/")
	if pathPart == "" {
		return []string{""}, nil
	}
	if !strings.HasPrefix(pathPart, "/") {
		pathPart = "/" + pathPart
	}
	parts := strings.Split(pathPart, "/")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = percentDecode(p)
	}
	return out, nil
}

// parseQuery splits an encoded query string into ordered name/value pairs.
func parseQuery(queryPart string) []QueryParam {
	if queryPart == "" {
		return []QueryParam{}
	}
	pieces := strings.Split(queryPart, "&")
	out := make([]QueryParam, 0, len(pieces))
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if idx := strings.IndexByte(piece, '='); idx >= 0 {
			name := percentDecode(piece[:idx])
			val := percentDecode(piece[idx+1:])
			out = append(out, QueryParam{Name: name, Value: &val})
		} else {
			out = append(out, QueryParam{Name: percentDecode(piece), Value: nil})
		}
	}
	return out
}
