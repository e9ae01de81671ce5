// SPDX-License-Identifier: GPL-3.0-or-later

// Package cachecontrol parses and renders Cache-Control directives per
// spec.md §4.C, consuming both the Cache-Control and Pragma headers.
package cachecontrol

import (
	"strconv"
	"strings"
	"sync"
)

const maxInt32 = 1<<31 - 1

// CacheControl is a parsed directive bag. Negative *Seconds fields mean
// absent, matching spec.md §3.
type CacheControl struct {
	NoCache        bool
	NoStore        bool
	MaxAgeSeconds  int32
	SMaxAgeSeconds int32
	IsPrivate      bool
	IsPublic       bool
	MustRevalidate bool
	MaxStaleSeconds int32
	MinFreshSeconds int32
	OnlyIfCached   bool
	NoTransform    bool
	Immutable      bool

	// unknown preserves directives this package does not model, in the
	// order parsed, but only when they are eligible for re-emission (a
	// single Cache-Control header, no Pragma additions).
	unknown []string

	renderOnce sync.Once
	rendered   string
}

// Empty returns a CacheControl with every *Seconds field defaulted to -1
// (absent) and every flag false.
func Empty() *CacheControl {
	return &CacheControl{
		MaxAgeSeconds:   -1,
		SMaxAgeSeconds:  -1,
		MaxStaleSeconds: -1,
		MinFreshSeconds: -1,
	}
}

type directive struct {
	token string
	value string
	hasValue bool
}

func tokenize(joined string) []directive {
	var out []directive
	for _, part := range splitTopLevelCommas(joined) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			out = append(out, directive{token: strings.ToLower(part)})
			continue
		}
		name := strings.ToLower(strings.TrimSpace(part[:eq]))
		val := strings.TrimSpace(part[eq+1:])
		val = unquote(val)
		out = append(out, directive{token: name, value: val, hasValue: true})
	}
	return out
}

// splitTopLevelCommas splits on commas that are not inside a quoted string.
func splitTopLevelCommas(s string) []string {
	var out []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Parse concatenates every Cache-Control header value (comma-joined) and
// inspects every Pragma value as though it were a Cache-Control directive.
//
// cacheControlValues and pragmaValues are, respectively, the list of raw
// Cache-Control and Pragma header values as they appeared (in order); pass
// nil/empty slices when a header was absent.
func Parse(cacheControlValues, pragmaValues []string) *CacheControl {
	cc := Empty()

	joined := strings.Join(cacheControlValues, ", ")
	directives := tokenize(joined)
	for _, p := range pragmaValues {
		directives = append(directives, tokenize(p)...)
	}

	var unknownTokens []string
	for _, d := range directives {
		switch d.token {
		case "no-cache":
			cc.NoCache = true
		case "no-store":
			cc.NoStore = true
		case "max-age":
			cc.MaxAgeSeconds = parseSeconds(d.value)
		case "s-maxage":
			cc.SMaxAgeSeconds = parseSeconds(d.value)
		case "private":
			cc.IsPrivate = true
		case "public":
			cc.IsPublic = true
		case "must-revalidate":
			cc.MustRevalidate = true
		case "max-stale":
			if d.hasValue {
				cc.MaxStaleSeconds = parseSeconds(d.value)
			} else {
				cc.MaxStaleSeconds = maxInt32
			}
		case "min-fresh":
			cc.MinFreshSeconds = parseSeconds(d.value)
		case "only-if-cached":
			cc.OnlyIfCached = true
		case "no-transform":
			cc.NoTransform = true
		case "immutable":
			cc.Immutable = true
		default:
			unknownTokens = append(unknownTokens, directiveText(d))
		}
	}

	// Unknown directives are retained in the canonical rendering ONLY if
	// the original Cache-Control header appeared exactly once and Pragma
	// added no directives.
	if len(cacheControlValues) == 1 && len(pragmaValues) == 0 {
		cc.unknown = unknownTokens
	}
	return cc
}

func directiveText(d directive) string {
	if !d.hasValue {
		return d.token
	}
	return d.token + "=" + d.value
}

func parseSeconds(s string) int32 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	if n < 0 {
		return -1
	}
	if n > maxInt32 {
		return maxInt32
	}
	return int32(n)
}

// String renders the canonical, comma-space-separated lowercase form
// (spec.md §6 fixes this exact directive order),
// caching the result on first call.
func (cc *CacheControl) String() string {
	cc.renderOnce.Do(func() {
		var parts []string
		if cc.NoCache {
			parts = append(parts, "no-cache")
		}
		if cc.NoStore {
			parts = append(parts, "no-store")
		}
		if cc.MaxAgeSeconds >= 0 {
			parts = append(parts, "max-age="+strconv.Itoa(int(cc.MaxAgeSeconds)))
		}
		if cc.SMaxAgeSeconds >= 0 {
			parts = append(parts, "s-maxage="+strconv.Itoa(int(cc.SMaxAgeSeconds)))
		}
		if cc.IsPrivate {
			parts = append(parts, "private")
		}
		if cc.IsPublic {
			parts = append(parts, "public")
		}
		if cc.MustRevalidate {
			parts = append(parts, "must-revalidate")
		}
		if cc.MaxStaleSeconds >= 0 {
			parts = append(parts, "max-stale="+strconv.Itoa(int(cc.MaxStaleSeconds)))
		}
		if cc.MinFreshSeconds >= 0 {
			parts = append(parts, "min-fresh="+strconv.Itoa(int(cc.MinFreshSeconds)))
		}
		if cc.OnlyIfCached {
			parts = append(parts, "only-if-cached")
		}
		if cc.NoTransform {
			parts = append(parts, "no-transform")
		}
		if cc.Immutable {
			parts = append(parts, "immutable")
		}
		parts = append(parts, cc.unknown...)
		cc.rendered = strings.Join(parts, ", ")
	})
	return cc.rendered
}
