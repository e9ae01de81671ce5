// SPDX-License-Identifier: GPL-3.0-or-later

package route

import "fmt"

// ProxyKind distinguishes the supported proxy transports.
type ProxyKind int

const (
	// Direct means no proxy: the target's own address is resolved and dialed.
	Direct ProxyKind = iota

	// HTTPProxy tunnels via an HTTP CONNECT proxy.
	HTTPProxy

	// Socks4Proxy tunnels via a SOCKS4 proxy.
	Socks4Proxy

	// Socks5Proxy tunnels via a SOCKS5 proxy.
	Socks5Proxy
)

// Proxy describes one proxy hop, or the direct-connection sentinel.
type Proxy struct {
	Kind ProxyKind
	Host string
	Port int
}

// DirectProxy is the single-element fallback used when no [ProxySelector]
// is configured or it returns an empty list (spec.md §4.E step 1).
var DirectProxy = &Proxy{Kind: Direct}

// IsDirect reports whether this proxy is the direct-connection sentinel.
func (p *Proxy) IsDirect() bool {
	return p == nil || p.Kind == Direct
}

// String renders a human-readable form, used for [Address.Key] and logging.
func (p *Proxy) String() string {
	if p.IsDirect() {
		return "DIRECT"
	}
	kind := map[ProxyKind]string{HTTPProxy: "HTTP", Socks4Proxy: "SOCKS4", Socks5Proxy: "SOCKS5"}[p.Kind]
	return fmt.Sprintf("%s %s:%d", kind, p.Host, p.Port)
}

func proxyEqual(a, b *Proxy) bool {
	if a.IsDirect() && b.IsDirect() {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind && a.Host == b.Host && a.Port == b.Port
}

// ProxySelector is the capability port for per-request proxy selection
// (spec.md §6). An empty returned list means direct.
type ProxySelector interface {
	Select(url string) ([]*Proxy, error)
}
