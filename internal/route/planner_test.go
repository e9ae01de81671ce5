// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"testing"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDns struct {
	addrs []string
	err   error
}

func (d *stubDns) Lookup(host string) ([]string, error) {
	return d.addrs, d.err
}

func TestPlannerDirectResolvesViaDns(t *testing.T) {
	addr := &Address{
		Scheme: "https",
		Host:   "example.com",
		Port:   443,
		Dns:    &stubDns{addrs: []string{"93.184.216.34"}},
	}
	p := NewPlanner(addr)
	r, err := p.Next("https://example.com/")
	require.NoError(t, err)
	assert.True(t, r.Proxy.IsDirect())
	assert.Equal(t, "93.184.216.34:443", r.SocketAddress.String())
}

func TestPlannerSkipsFailedRoutes(t *testing.T) {
	addr := &Address{
		Scheme: "https",
		Host:   "example.com",
		Port:   443,
		Dns:    &stubDns{addrs: []string{"1.2.3.4", "1.2.3.5"}},
	}
	p := NewPlanner(addr)
	r1, err := p.Next("https://example.com/")
	require.NoError(t, err)
	p.MarkFailed(r1, assertError("boom"))

	r2, err := p.Next("https://example.com/")
	require.NoError(t, err)
	assert.NotEqual(t, r1.SocketAddress, r2.SocketAddress)
}

func TestPlannerExhaustionReturnsNoMoreRoutes(t *testing.T) {
	addr := &Address{
		Scheme: "https",
		Host:   "example.com",
		Port:   443,
		Dns:    &stubDns{addrs: []string{"1.2.3.4"}},
	}
	p := NewPlanner(addr)
	r1, err := p.Next("https://example.com/")
	require.NoError(t, err)
	p.MarkFailed(r1, assertError("boom"))

	_, err = p.Next("https://example.com/")
	var nmr *NoMoreRoutes
	require.ErrorAs(t, err, &nmr)
}

func TestPlannerDnsFailureUnknownHost(t *testing.T) {
	addr := &Address{
		Scheme: "https",
		Host:   "nowhere.invalid",
		Port:   443,
		Dns:    &stubDns{addrs: nil},
	}
	p := NewPlanner(addr)
	_, err := p.Next("https://nowhere.invalid/")
	assert.Equal(t, errkind.UnknownHost, errkind.KindOf(err))
}

func TestPlannerPinnedProxyWinsOverSelector(t *testing.T) {
	pinned := &Proxy{Kind: HTTPProxy, Host: "proxy.local", Port: 8080}
	addr := &Address{
		Scheme:        "https",
		Host:          "example.com",
		Port:          443,
		Proxy:         pinned,
		ProxySelector: &stubSelector{proxies: []*Proxy{DirectProxy}},
	}
	p := NewPlanner(addr)
	r, err := p.Next("https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, pinned, r.Proxy)
	assert.Equal(t, "proxy.local:8080", r.SocketAddress.String())
}

type stubSelector struct {
	proxies []*Proxy
	err     error
}

func (s *stubSelector) Select(url string) ([]*Proxy, error) {
	return s.proxies, s.err
}

type stringError string

func (e stringError) Error() string { return string(e) }

func assertError(s string) error { return stringError(s) }
