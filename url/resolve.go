// SPDX-License-Identifier: GPL-3.0-or-later

package url

import "strings"

// Resolve resolves reference against u per RFC 3986 §5.2, with two
// adjustments (spec.md §4.A): backslashes in the reference are treated as
// forward slashes, and "." / ".." segments (including their percent-encoded
// forms "%2E"/"%2e") collapse as dot-segments; surplus ".." are dropped
// silently rather than underflowing.
func (u *URL) Resolve(reference string) (*URL, error) {
	reference = normalizeSlashes(reference)

	// Parse the reference loosely: it may be absolute, scheme-relative is
	// not supported by this two-scheme package, network-path (authority
	// only), absolute-path, or relative-path, with optional query/fragment.
	ref, rerr := parseReference(reference)
	if rerr != nil {
		return nil, rerr
	}

	out := u.NewBuilder()
	out.ClearFragment()

	if ref.hasScheme {
		resolved, err := Parse(reference)
		if err != nil {
			return nil, err
		}
		return resolved, nil
	}

	if ref.hasAuthority {
		username, password, host, isIPv6, port, err := parseAuthority(ref.authority, u.scheme)
		if err != nil {
			return nil, err
		}
		out.username, out.password, out.host, out.isIPv6, out.port = username, password, host, isIPv6, port
		out.pathSegs = mergeAndRemoveDotSegments(nil, ref.path, true)
		out.ClearQuery()
		applyRefQueryFragment(out, ref)
		return out.Build()
	}

	if ref.path == "" {
		// Same path as base; query/fragment taken from reference if present.
		applyRefQueryFragment(out, ref)
		return out.Build()
	}

	if strings.HasPrefix(ref.path, "/") {
		out.pathSegs = mergeAndRemoveDotSegments(nil, ref.path, true)
	} else {
		out.pathSegs = mergeAndRemoveDotSegments(u.pathSegs, ref.path, false)
	}
	out.ClearQuery()
	applyRefQueryFragment(out, ref)
	return out.Build()
}

type reference struct {
	hasScheme    bool
	hasAuthority bool
	authority    string
	path         string
	hasQuery     bool
	query        string
	hasFragment  bool
	fragment     string
}

func normalizeSlashes(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}

func parseReference(s string) (reference, error) {
	var ref reference

	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		ref.hasFragment = true
		ref.fragment = s[idx+1:]
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		ref.hasQuery = true
		ref.query = s[idx+1:]
		s = s[:idx]
	}

	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		// Heuristic: a ":" before any "/" makes this an absolute reference
		// (has a scheme). Colons inside the path (after the first "/")
		// don't count.
		slashIdx := strings.IndexByte(s, '/')
		if slashIdx < 0 || idx < slashIdx {
			ref.hasScheme = true
			return ref, nil
		}
	}

	if strings.HasPrefix(s, "//") {
		ref.hasAuthority = true
		rest := s[2:]
		end := len(rest)
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			end = idx
		}
		ref.authority = rest[:end]
		ref.path = rest[end:]
		return ref, nil
	}

	ref.path = s
	return ref, nil
}

func applyRefQueryFragment(b *Builder, ref reference) {
	if ref.hasQuery {
		b.hasQuery = true
		b.query = parseQuery(ref.query)
	}
	if ref.hasFragment {
		b.hasFrag = true
		b.fragment = percentDecode(ref.fragment)
	}
}

// mergeAndRemoveDotSegments implements RFC 3986 §5.3 merge plus §5.2.4
// remove_dot_segments, operating directly on decoded segment lists.
//
// basePath is the base URL's segments (always starting with ""); refRaw is
// the reference's raw (percent-decoded-on-the-fly) path. If refIsAbsolute,
// the merge step is skipped and refRaw replaces the path outright.
func mergeAndRemoveDotSegments(basePath []string, refRaw string, refIsAbsolute bool) []string {
	refRaw = decodeDotSegmentEscapes(refRaw)

	var merged []string
	if refIsAbsolute || len(basePath) == 0 {
		merged = splitPath(refRaw)
	} else {
		// RFC 3986 §5.3: merge = base path up to (not including) its last
		// segment, then the reference path. basePath always starts with
		// "" (the leading "/"); preserve that even when basePath has no
		// middle segments (e.g. base path is just "/").
		prefix := []string{""}
		if len(basePath) > 1 {
			prefix = append(prefix, basePath[1:len(basePath)-1]...)
		}
		merged = append(prefix, splitPath(refRaw)...)
		if len(merged) == 0 {
			merged = []string{""}
		}
	}

	return removeDotSegments(merged)
}

// decodeDotSegmentEscapes turns %2E/%2e into "." only within "." and ".."
// segments, per spec.md §4.A, leaving every other percent-encoded octet
// for the normal path decoder to handle.
func decodeDotSegmentEscapes(raw string) string {
	segs := strings.Split(raw, "/")
	for i, s := range segs {
		u := strings.ToUpper(s)
		switch u {
		case "%2E":
			segs[i] = "."
		case "%2E%2E", "%2E.", ".%2E":
			segs[i] = ".."
		}
	}
	return strings.Join(segs, "/")
}

// splitPath splits a raw ("/"-joined, not yet percent-decoded) path into
// decoded segments, preserving a leading "" for an absolute path.
func splitPath(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "/")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = percentDecode(p)
	}
	return out
}

// removeDotSegments applies RFC 3986 §5.2.4 to a decoded segment list
// (first element "" denotes an absolute path). Extra ".." segments are
// dropped silently rather than underflowing past the root.
func removeDotSegments(segs []string) []string {
	if len(segs) == 0 {
		return []string{""}
	}
	absolute := segs[0] == ""
	var out []string
	if absolute {
		out = append(out, "")
		segs = segs[1:]
	}
	for i, s := range segs {
		last := i == len(segs)-1
		switch s {
		case ".":
			if last {
				out = appendTrailingSlash(out, absolute)
			}
			// otherwise drop silently
		case "..":
			if len(out) > boundary(absolute) {
				out = out[:len(out)-1]
			}
			if last {
				out = appendTrailingSlash(out, absolute)
			}
		default:
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	if absolute && (len(out) == 0 || out[0] != "") {
		out = append([]string{""}, out...)
	}
	return out
}

// boundary returns the minimum length `out` must retain: the leading ""
// segment for absolute paths must never be popped.
func boundary(absolute bool) int {
	if absolute {
		return 1
	}
	return 0
}

// appendTrailingSlash ensures a trailing "/" is represented by appending a
// final empty segment, matching RFC 3986's "replace with a single slash"
// rule for bare "." / ".." at the end of a reference.
func appendTrailingSlash(out []string, absolute bool) []string {
	if len(out) == 0 || out[len(out)-1] != "" {
		return append(out, "")
	}
	return out
}
