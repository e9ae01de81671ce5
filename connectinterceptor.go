// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"bufio"
	"context"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/internal/dial"
	"github.com/bassosimone/httpcore/internal/exchange"
	"github.com/bassosimone/httpcore/internal/h1"
	"github.com/bassosimone/httpcore/internal/h2"
	"github.com/bassosimone/httpcore/internal/pool"
	"github.com/bassosimone/httpcore/internal/route"
)

// connectInterceptor is the fourth built-in interceptor (spec.md §4.J item
// 4): it acquires an eligible pooled connection or plans and establishes a
// new one, binds an Exchange to it, stashes the Exchange where CallServer
// can find it, and calls proceed.
type connectInterceptor struct {
	client *Client
}

var _ Interceptor = &connectInterceptor{}

func (i *connectInterceptor) Intercept(chain Chain) (*Response, error) {
	req := chain.Request()
	call := chain.Call()

	addr, err := i.client.addressFor(req)
	if err != nil {
		return nil, err
	}

	ex, rt, conn, err := i.client.acquireExchange(call.ctx, addr, req.URL().String())
	if err != nil {
		return nil, err
	}

	call.setExchange(ex, rt, conn)
	resp, err := chain.Proceed(req)
	call.clearExchange()
	if err != nil {
		ex.Cancel()
		return nil, err
	}
	return resp, nil
}

// addressFor builds the [route.Address] a [route.Planner] and the
// connection pool key on, from the request URL and the Client's
// configured capabilities (spec.md §4.E).
func (c *Client) addressFor(req *Request) (*route.Address, error) {
	u := req.URL()
	scheme := string(u.Scheme())
	tlsConfig := c.cfg.TLSConfig
	if scheme == "https" {
		cloned := tlsConfig.Clone()
		cloned.ServerName = u.Host()
		tlsConfig = cloned
	}
	return &route.Address{
		Scheme:           scheme,
		Host:             u.Host(),
		Port:             u.Port(),
		Dns:              c.cfg.Dns,
		TLSConfig:        tlsConfig,
		HostnameVerifier: c.cfg.HostnameVerifier,
		ProxySelector:    c.cfg.ProxySelector,
	}, nil
}

// acquireExchange implements spec.md §4.F's acquire-or-establish decision:
// try the pool first, otherwise plan routes one at a time (retrying the
// next route on failure, per spec.md §4.E) until one connects.
func (c *Client) acquireExchange(ctx context.Context, addr *route.Address, requestURL string) (exchange.Exchange, *route.Route, *pool.Connection, error) {
	if conn, ok := c.pool.Acquire(addr, addr.Host); ok {
		ex, err := c.exchangeFor(conn)
		if err != nil {
			c.pool.Release(conn)
			return nil, nil, nil, err
		}
		return ex, conn.Route, conn, nil
	}

	planner := route.NewPlanner(addr)
	for {
		rt, err := planner.Next(requestURL)
		if err != nil {
			return nil, nil, nil, errkind.New(errkind.ConnectFailed, err)
		}
		conn, err := c.establish(ctx, addr, rt)
		if err != nil {
			planner.MarkFailed(rt, err)
			continue
		}
		ex, err := c.exchangeFor(conn)
		if err != nil {
			planner.MarkFailed(rt, err)
			continue
		}
		return ex, rt, conn, nil
	}
}

// establish dials and, for an https Address, TLS-handshakes rt, returning
// a [*pool.Connection] registered in the pool and the codec registry.
func (c *Client) establish(ctx context.Context, addr *route.Address, rt *route.Route) (*pool.Connection, error) {
	rawConn, err := c.dialRoute(ctx, rt)
	if err != nil {
		return nil, err
	}

	codec := pool.H1
	multiplexLimit := 1
	var netConn net.Conn = rawConn
	var peerCerts []*x509.Certificate

	if addr.Scheme == "https" {
		handshake := dial.NewTLSHandshakeFunc(c.cfg.DialConfig, addr.TLSConfig, c.cfg.Logger)
		tconn, err := handshake.Call(ctx, rawConn)
		if err != nil {
			rawConn.Close()
			return nil, err
		}
		state := tconn.ConnectionState()
		if addr.HostnameVerifier != nil && !addr.HostnameVerifier.Verify(addr.Host, state) {
			tconn.Close()
			return nil, errkind.Newf(errkind.ConnectFailed, "tls: hostname verification failed for %q", addr.Host)
		}
		netConn = tconn
		peerCerts = state.PeerCertificates
		if state.NegotiatedProtocol == "h2" {
			codec = pool.H2
			multiplexLimit = 0
		}
	}

	conn := &pool.Connection{Conn: netConn, Route: rt, Codec: codec, MultiplexLimit: multiplexLimit, PeerCertificates: peerCerts}

	switch codec {
	case pool.H1:
		c.registerH1(conn, h1.New(netConn))
	case pool.H2:
		session := h2.NewSession(netConn, c.cfg.Logger)
		if err := session.Start(); err != nil {
			netConn.Close()
			return nil, err
		}
		c.registerH2(conn, session)
	}

	c.pool.Put(addr, conn)
	return conn, nil
}

// dialRoute dials rt's socket address, through a SOCKS or HTTP CONNECT
// proxy when rt.Proxy is not direct (spec.md §4.E step 3).
func (c *Client) dialRoute(ctx context.Context, rt *route.Route) (net.Conn, error) {
	target := fmt.Sprintf("%s:%d", rt.Address.Host, rt.Address.Port)

	switch {
	case rt.Proxy.IsDirect():
		connect := dial.NewConnectFunc(c.cfg.DialConfig, "tcp", c.cfg.Logger)
		return connect.Call(ctx, rt.SocketAddress)
	case rt.Proxy.Kind == route.Socks4Proxy, rt.Proxy.Kind == route.Socks5Proxy:
		dialer := &route.SocksDialer{Proxy: rt.Proxy}
		return dialer.DialContext(ctx, "tcp", target)
	case rt.Proxy.Kind == route.HTTPProxy:
		return dialHTTPConnect(ctx, rt, target)
	default:
		return nil, fmt.Errorf("httpcore: unsupported proxy kind")
	}
}

// dialHTTPConnect tunnels to target through an HTTP CONNECT proxy (spec.md
// §4.E: HTTPProxy kind). It speaks the minimal request/response framing
// directly, since golang.org/x/net/proxy only covers SOCKS.
func dialHTTPConnect(ctx context.Context, rt *route.Route, target string) (net.Conn, error) {
	var d net.Dialer
	proxyConn, err := d.DialContext(ctx, "tcp", rt.SocketAddress.String())
	if err != nil {
		return nil, err
	}
	req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", target, target)
	if _, err := proxyConn.Write([]byte(req)); err != nil {
		proxyConn.Close()
		return nil, err
	}
	br := bufio.NewReader(proxyConn)
	statusLine, err := br.ReadString('\n')
	if err != nil {
		proxyConn.Close()
		return nil, err
	}
	fields := strings.Fields(statusLine)
	statusCode, err := strconv.Atoi(orEmpty(fields, 1))
	if err != nil || statusCode != 200 {
		proxyConn.Close()
		return nil, fmt.Errorf("httpcore: CONNECT proxy refused tunnel: %q", statusLine)
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			proxyConn.Close()
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
	}
	if br.Buffered() > 0 {
		proxyConn.Close()
		return nil, fmt.Errorf("httpcore: CONNECT proxy sent data before tunnel established")
	}
	return proxyConn, nil
}

func orEmpty(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func (c *Client) exchangeFor(conn *pool.Connection) (exchange.Exchange, error) {
	switch conn.Codec {
	case pool.H1:
		codec, ok := c.lookupH1(conn)
		if !ok {
			return nil, fmt.Errorf("httpcore: no H1 codec registered for connection")
		}
		return exchange.NewH1Exchange(c.pool, conn, codec), nil
	case pool.H2:
		session, ok := c.lookupH2(conn)
		if !ok {
			return nil, fmt.Errorf("httpcore: no H2 session registered for connection")
		}
		return exchange.NewH2Exchange(c.pool, conn, session)
	default:
		return nil, fmt.Errorf("httpcore: unknown codec")
	}
}
