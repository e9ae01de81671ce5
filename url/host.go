// SPDX-License-Identifier: GPL-3.0-or-later

package url

import (
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// idnaProfile performs UTS-46 mapping + Punycode per spec.md §4.A: reject
// empty labels, labels > 63 bytes, total length > 253 bytes, and disallowed
// code points.
var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.VerifyDNSLength(true),
	idna.BidiRule(),
)

// parseHost parses and canonicalizes a raw (not yet percent-decoded) host
// token from the authority. Percent-encoded octets are decoded first, as
// required by spec.md §4.A, before IDN processing.
func parseHost(raw string) (host string, isIPv6 bool, err error) {
	decoded := percentDecode(raw)

	if strings.HasPrefix(decoded, "[") {
		if !strings.HasSuffix(decoded, "]") {
			return "", false, fmt.Errorf("invalid host: unterminated IPv6 literal %q", raw)
		}
		inner := decoded[1 : len(decoded)-1]
		return parseIPv6(inner)
	}

	// Bare IPv6 is never valid without brackets; a bare dotted-quad or
	// a domain name both flow through the same branch below since
	// net/netip parses IPv4 literals too.
	if addr, perr := netip.ParseAddr(decoded); perr == nil && addr.Is4() {
		return addr.String(), false, nil
	}

	if decoded == "" {
		return "", false, fmt.Errorf("invalid host: empty")
	}

	a, aerr := idnaProfile.ToASCII(decoded)
	if aerr != nil {
		return "", false, fmt.Errorf("invalid host %q: %w", raw, aerr)
	}
	return strings.ToLower(a), false, nil
}

// parseIPv6 canonicalizes a bracketed IPv6 literal's inner text per
// RFC 5952: lower-case hex, no leading zeros, longest zero run collapsed
// to "::". [netip.Addr.String] already produces this form; this function
// additionally rejects octal/hex IPv4 suffixes, which netip also rejects.
func parseIPv6(inner string) (host string, isIPv6 bool, err error) {
	addr, perr := netip.ParseAddr(inner)
	if perr != nil || !addr.Is6() {
		return "", false, fmt.Errorf("invalid host: bad IPv6 literal %q", inner)
	}
	return addr.String(), true, nil
}
