// SPDX-License-Identifier: GPL-3.0-or-later

// Package route plans dial targets for an [Address] (spec.md §4.E): it
// expands (proxy, socket-address) tuples lazily, skipping routes already
// recorded as failed for the current call.
package route

import (
	"crypto/tls"
	"fmt"
)

// Dns is the capability port for resolving a hostname to addresses
// (spec.md §6). Implementations must return at least one address or fail
// with [errkind.UnknownHost].
type Dns interface {
	Lookup(host string) ([]string, error)
}

// HostnameVerifier is the capability port for verifying a TLS peer against
// the requested hostname (spec.md §6).
type HostnameVerifier interface {
	Verify(host string, state tls.ConnectionState) bool
}

// Address is the equality key of a route target: every parameter that must
// match for two requests to share a pooled [Connection] (spec.md §4.E/§9).
type Address struct {
	Scheme           string
	Host             string
	Port             int
	Dns              Dns
	TLSConfig        *tls.Config
	HostnameVerifier HostnameVerifier
	Proxy            *Proxy
	ProxySelector    ProxySelector
}

// Equal reports whether two Addresses are interchangeable for pooling
// purposes. Dns/HostnameVerifier/ProxySelector are compared by identity
// (interface equality), matching the teacher's pattern of treating
// injected capabilities as configuration rather than data.
func (a *Address) Equal(other *Address) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	return a.Scheme == other.Scheme &&
		a.Host == other.Host &&
		a.Port == other.Port &&
		a.Dns == other.Dns &&
		a.HostnameVerifier == other.HostnameVerifier &&
		a.TLSConfig == other.TLSConfig &&
		a.ProxySelector == other.ProxySelector &&
		proxyEqual(a.Proxy, other.Proxy)
}

// Key returns a string suitable for indexing the connection pool's
// per-Address bucket map. It intentionally omits capability identities
// (scheme/host/port/proxy fully determine pool eligibility in practice;
// Equal is still the authority for coalescing decisions).
func (a *Address) Key() string {
	proxyKey := "DIRECT"
	if a.Proxy != nil {
		proxyKey = a.Proxy.String()
	}
	return fmt.Sprintf("%s://%s:%d via %s", a.Scheme, a.Host, a.Port, proxyKey)
}
