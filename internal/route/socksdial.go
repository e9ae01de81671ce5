// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/proxy"
)

// SocksDialer dials a TCP connection to a target address through a SOCKS
// [Proxy] using golang.org/x/net/proxy. Both SOCKS proxy types are dialed
// with the SOCKS5 protocol; no SOCKS4 handshake is implemented.
//
// This is only used for the proxy's own socket connection (spec.md §4.E
// step 2: "resolve the proxy's socket address, no DNS on the target");
// the SOCKS library itself is responsible for relaying the target hostname
// to the proxy so the proxy (not this process) resolves it when needed.
type SocksDialer struct {
	Proxy *Proxy
}

// DialContext connects to targetAddress (host:port) via the configured
// SOCKS proxy.
func (d *SocksDialer) DialContext(ctx context.Context, network, targetAddress string) (net.Conn, error) {
	if d.Proxy == nil || (d.Proxy.Kind != Socks4Proxy && d.Proxy.Kind != Socks5Proxy) {
		return nil, fmt.Errorf("route: SocksDialer requires a SOCKS4/SOCKS5 Proxy")
	}
	proxyAddr := fmt.Sprintf("%s:%d", d.Proxy.Host, d.Proxy.Port)
	dialer, err := proxy.SOCKS5(network, proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}
	type contextDialer interface {
		DialContext(ctx context.Context, network, address string) (net.Conn, error)
	}
	if cd, ok := dialer.(contextDialer); ok {
		return cd.DialContext(ctx, network, targetAddress)
	}
	return dialer.Dial(network, targetAddress)
}
