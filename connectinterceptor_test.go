// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"bufio"
	"context"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/httpcore/internal/route"
)

func TestOrEmpty(t *testing.T) {
	fields := []string{"HTTP/1.1", "200", "Connection"}
	assert.Equal(t, "200", orEmpty(fields, 1))
	assert.Equal(t, "", orEmpty(fields, 10))
}

// fakeConnectProxy listens once and replies statusLine to every CONNECT
// request, then closes, to exercise dialHTTPConnect without a real proxy.
func fakeConnectProxy(t *testing.T, statusLine string) net.Listener {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		br := bufio.NewReader(conn)
		for {
			line, err := br.ReadString('\n')
			if err != nil || line == "\r\n" || line == "\n" {
				break
			}
		}
		_, _ = conn.Write([]byte(statusLine + "\r\n\r\n"))
	}()
	return ln
}

func routeToListener(t *testing.T, ln net.Listener) *route.Route {
	addr, err := netip.ParseAddrPort(ln.Addr().String())
	require.NoError(t, err)
	return &route.Route{SocketAddress: addr}
}

func TestDialHTTPConnectSuccess(t *testing.T) {
	ln := fakeConnectProxy(t, "HTTP/1.1 200 Connection Established")
	defer ln.Close()
	rt := routeToListener(t, ln)

	conn, err := dialHTTPConnect(context.Background(), rt, "example.com:443")

	require.NoError(t, err)
	defer conn.Close()
}

func TestDialHTTPConnectRefused(t *testing.T) {
	ln := fakeConnectProxy(t, "HTTP/1.1 407 Proxy Authentication Required")
	defer ln.Close()
	rt := routeToListener(t, ln)

	_, err := dialHTTPConnect(context.Background(), rt, "example.com:443")

	assert.Error(t, err)
}
