// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"fmt"
	"net/netip"

	"github.com/bassosimone/httpcore/errkind"
)

// Planner expands an [Address] and the current call's failed-route history
// into a lazy sequence of [Route]s (spec.md §4.E).
//
// A Planner is restartable: [Planner.Next] may be called repeatedly across
// retry attempts, and every route it yields is remembered so subsequent
// calls never repeat it (the caller records failures via [Planner.MarkFailed]).
type Planner struct {
	address *Address
	failed  map[string]error

	proxies    []*Proxy
	proxyIndex int

	pending []netip.AddrPort
}

// NewPlanner returns a [*Planner] for address. The failed-route history
// starts empty; use [Planner.MarkFailed] as attempts fail.
func NewPlanner(address *Address) *Planner {
	return &Planner{
		address: address,
		failed:  make(map[string]error),
	}
}

// MarkFailed records that route failed with err, so it is skipped on any
// subsequent [Planner.Next] call (spec.md §4.E: "every attempt records its
// failure").
func (p *Planner) MarkFailed(r *Route, err error) {
	p.failed[r.Key()] = err
}

// NoMoreRoutes is returned once every candidate route has been tried or
// skipped, wrapping one of the recorded failures; which one is not defined
// when several were recorded.
type NoMoreRoutes struct {
	Last error
}

func (e *NoMoreRoutes) Error() string {
	if e.Last == nil {
		return "route: no more routes"
	}
	return fmt.Sprintf("route: no more routes: %s", e.Last)
}

func (e *NoMoreRoutes) Unwrap() error { return e.Last }

// Next yields the next [Route] not already present in the failed-route
// history, or a [*NoMoreRoutes] error once routes are exhausted.
func (p *Planner) Next(requestURL string) (*Route, error) {
	for {
		if len(p.pending) == 0 {
			if err := p.advanceProxy(requestURL); err != nil {
				return nil, err
			}
		}
		sa := p.pending[0]
		p.pending = p.pending[1:]

		proxy := p.currentProxy()
		r := &Route{Address: p.address, Proxy: proxy, SocketAddress: sa}
		if _, skip := p.failed[r.Key()]; skip {
			continue
		}
		return r, nil
	}
}

// currentProxy returns the proxy the planner is currently iterating.
func (p *Planner) currentProxy() *Proxy {
	if p.proxyIndex == 0 || p.proxyIndex > len(p.proxies) {
		return DirectProxy
	}
	return p.proxies[p.proxyIndex-1]
}

// advanceProxy moves to the next proxy in the list, resolving its target
// into p.pending, or returns [*NoMoreRoutes] once every proxy has been
// tried (spec.md §4.E steps 1-2).
func (p *Planner) advanceProxy(requestURL string) error {
	if p.proxies == nil && p.proxyIndex == 0 {
		var err error
		p.proxies, err = p.selectProxies(requestURL)
		if err != nil {
			return err
		}
	}
	if p.proxyIndex >= len(p.proxies) {
		return p.lastFailure()
	}
	proxy := p.proxies[p.proxyIndex]
	p.proxyIndex++

	addrs, err := p.resolveFor(proxy)
	if err != nil {
		p.failed[fmt.Sprintf("resolve:%s", proxy.String())] = err
		return p.advanceProxy(requestURL)
	}
	p.pending = addrs
	return nil
}

func (p *Planner) lastFailure() error {
	var last error
	for _, err := range p.failed {
		last = err
	}
	return &NoMoreRoutes{Last: last}
}

// selectProxies implements spec.md §4.E step 1: a proxy pinned on the
// Address, of any type, wins outright; otherwise the ProxySelector is consulted,
// defaulting to a single DIRECT entry.
func (p *Planner) selectProxies(requestURL string) ([]*Proxy, error) {
	if p.address.Proxy != nil {
		return []*Proxy{p.address.Proxy}, nil
	}
	if p.address.ProxySelector == nil {
		return []*Proxy{DirectProxy}, nil
	}
	proxies, err := p.address.ProxySelector.Select(requestURL)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		return []*Proxy{DirectProxy}, nil
	}
	return proxies, nil
}

// resolveFor implements spec.md §4.E step 2: an HTTP/SOCKS proxy resolves
// its own socket address (no DNS on the target); a direct route resolves
// the Address's host via the Dns capability.
func (p *Planner) resolveFor(proxy *Proxy) ([]netip.AddrPort, error) {
	if proxy.IsDirect() {
		return p.resolveHost(p.address.Dns, p.address.Host, p.address.Port)
	}
	return p.resolveLiteral(proxy.Host, proxy.Port)
}

func (p *Planner) resolveHost(dns Dns, host string, port int) ([]netip.AddrPort, error) {
	if dns == nil {
		return p.resolveLiteral(host, port)
	}
	addrs, err := dns.Lookup(host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errkind.Newf(errkind.UnknownHost, "route: dns returned no addresses for %q", host)
	}
	out := make([]netip.AddrPort, 0, len(addrs))
	for _, a := range addrs {
		ip, err := netip.ParseAddr(a)
		if err != nil {
			continue
		}
		out = append(out, netip.AddrPortFrom(ip, uint16(port)))
	}
	if len(out) == 0 {
		return nil, errkind.Newf(errkind.UnknownHost, "route: dns returned no parseable addresses for %q", host)
	}
	return out, nil
}

func (p *Planner) resolveLiteral(host string, port int) ([]netip.AddrPort, error) {
	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(ip, uint16(port))}, nil
	}
	return nil, errkind.Newf(errkind.UnknownHost, "route: %q is not a literal address and has no Dns capability", host)
}
