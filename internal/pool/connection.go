// SPDX-License-Identifier: GPL-3.0-or-later

// Package pool implements the connection pool (spec.md §4.F): per-Address
// buckets of [Connection]s, acquire/release bookkeeping, HTTP/2
// coalescing, and idle-connection eviction.
package pool

import (
	"crypto/x509"
	"net"
	"sync"
	"time"

	"github.com/bassosimone/httpcore/internal/route"
)

// Codec distinguishes the wire protocol multiplexed over a [Connection].
type Codec int

const (
	// H1 is HTTP/1.1: strictly one exchange at a time (multiplex limit 1).
	H1 Codec = iota
	// H2 is HTTP/2: many concurrently multiplexed streams.
	H2
)

// Connection is a live socket bound to a single [route.Route] plus one
// active codec (spec.md §3, §4.F).
type Connection struct {
	Conn  net.Conn
	Route *route.Route
	Codec Codec

	// MultiplexLimit is 1 for H1 and 0 for H2, where 0 means no limit; the
	// peer's SETTINGS_MAX_CONCURRENT_STREAMS is not enforced.
	MultiplexLimit int

	// PeerCertificates, when non-nil, are the TLS peer's leaf-first chain,
	// used for HTTP/2 connection coalescing (spec.md §4.F).
	PeerCertificates []*x509.Certificate

	mu             sync.Mutex
	allocations    int
	idleAtNanos    int64
	noNewExchanges bool
}

// Allocations returns the current number of exchanges using this connection.
func (c *Connection) Allocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocations
}

// NoNewExchanges reports whether this connection has been marked unusable
// for new allocations (spec.md §4.F: peer close signal or fatal failure).
func (c *Connection) NoNewExchanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noNewExchanges
}

// MarkNoNewExchanges marks the connection unusable for new allocations.
// Existing exchanges continue; future ones go through route planning
// (spec.md §4.F "Failure marking").
func (c *Connection) MarkNoNewExchanges() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noNewExchanges = true
}

// multiplexLimitOK reports whether allocations.size < multiplexLimit,
// treating a zero MultiplexLimit (H2, limit set dynamically from peer
// SETTINGS) as unbounded.
func (c *Connection) multiplexLimitOK() bool {
	if c.MultiplexLimit <= 0 {
		return true
	}
	return c.allocations < c.MultiplexLimit
}

// tryAcquire attempts to allocate one exchange on this connection,
// returning false if ineligible (spec.md §4.F acquire step (a)/(b)).
func (c *Connection) tryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noNewExchanges || !c.multiplexLimitOK() {
		return false
	}
	c.allocations++
	c.idleAtNanos = 0
	return true
}

// Release releases one allocation. If this was the last allocation, the
// connection becomes idle as of now (spec.md §4.F "Release").
func (c *Connection) Release(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.allocations > 0 {
		c.allocations--
	}
	if c.allocations == 0 {
		c.idleAtNanos = now.UnixNano()
	}
}

// idleFor returns how long this connection has been fully idle, or false
// if it currently has allocations.
func (c *Connection) idleFor(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.allocations > 0 || c.idleAtNanos == 0 {
		return 0, false
	}
	return now.Sub(time.Unix(0, c.idleAtNanos)), true
}

// coalesces reports whether this (necessarily HTTP/2) connection may
// satisfy a new allocation whose Address matches host via certificate
// coalescing: the pinned peer certificate chain covers host and the
// route's proxy + resolved address align (spec.md §4.F acquire clause).
func (c *Connection) coalesces(host string, r *route.Route) bool {
	if c.Codec != H2 {
		return false
	}
	if !c.Route.Proxy.IsDirect() && r.Proxy.IsDirect() {
		return false
	}
	if c.Route.SocketAddress != r.SocketAddress {
		return false
	}
	for _, cert := range c.PeerCertificates {
		if cert.VerifyHostname(host) == nil {
			return true
		}
	}
	return false
}
