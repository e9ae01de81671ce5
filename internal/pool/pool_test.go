// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/bassosimone/httpcore/internal/route"
	"github.com/bassosimone/httpcore/slogx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeTrackingConn struct {
	net.Conn
	closed bool
}

func (c *closeTrackingConn) Close() error {
	c.closed = true
	return nil
}

func testAddress(host string) *route.Address {
	return &route.Address{Scheme: "https", Host: host, Port: 443}
}

func testRoute(addr *route.Address) *route.Route {
	return &route.Route{
		Address:       addr,
		Proxy:         route.DirectProxy,
		SocketAddress: netip.MustParseAddrPort("1.2.3.4:443"),
	}
}

func TestAcquireReturnsEligibleConnection(t *testing.T) {
	addr := testAddress("example.com")
	p := New(NewConfig(), slogx.Default())
	c := &Connection{Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	p.Put(addr, c)

	got, ok := p.Acquire(addr, "example.com")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, got.Allocations())
}

func TestAcquireSkipsNoNewExchanges(t *testing.T) {
	addr := testAddress("example.com")
	p := New(NewConfig(), slogx.Default())
	c := &Connection{Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	c.MarkNoNewExchanges()
	p.Put(addr, c)

	_, ok := p.Acquire(addr, "example.com")
	assert.False(t, ok)
}

func TestAcquireRespectsMultiplexLimit(t *testing.T) {
	addr := testAddress("example.com")
	p := New(NewConfig(), slogx.Default())
	c := &Connection{Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	p.Put(addr, c)

	_, ok := p.Acquire(addr, "example.com")
	require.True(t, ok)

	_, ok = p.Acquire(addr, "example.com")
	assert.False(t, ok, "H1 connection must not exceed its multiplex limit of 1")
}

func TestReleaseMakesConnectionEligibleAgain(t *testing.T) {
	addr := testAddress("example.com")
	p := New(NewConfig(), slogx.Default())
	c := &Connection{Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	p.Put(addr, c)

	got, _ := p.Acquire(addr, "example.com")
	p.Release(got)

	_, ok := p.Acquire(addr, "example.com")
	assert.True(t, ok)
}

func TestEvictionClosesExpiredIdleConnection(t *testing.T) {
	addr := testAddress("example.com")
	now := time.Now()
	cfg := NewConfig()
	cfg.KeepAliveDuration = time.Minute
	cfg.TimeNow = func() time.Time { return now }

	p := New(cfg, slogx.Default())
	conn := &closeTrackingConn{}
	c := &Connection{Conn: conn, Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	p.Put(addr, c)
	got, _ := p.Acquire(addr, "example.com")
	p.Release(got)

	cfg.TimeNow = func() time.Time { return now.Add(2 * time.Minute) }
	wait, closedOne := p.evictOnceStep()
	assert.True(t, closedOne)
	assert.Zero(t, wait)
	assert.True(t, conn.closed)
}

func TestEvictionRespectsMaxIdleConnections(t *testing.T) {
	addr := testAddress("example.com")
	now := time.Now()
	cfg := NewConfig()
	cfg.MaxIdleConnections = 0
	cfg.KeepAliveDuration = time.Hour
	cfg.TimeNow = func() time.Time { return now }

	p := New(cfg, slogx.Default())
	conn := &closeTrackingConn{}
	c := &Connection{Conn: conn, Route: testRoute(addr), Codec: H1, MultiplexLimit: 1}
	p.Put(addr, c)
	got, _ := p.Acquire(addr, "example.com")
	p.Release(got)

	_, closedOne := p.evictOnceStep()
	assert.True(t, closedOne, "pool has more than MaxIdleConnections=0 idle connections")
}
