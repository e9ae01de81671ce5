// SPDX-License-Identifier: GPL-3.0-or-later

// Package h1 implements the HTTP/1.1 wire codec (spec.md §4.G): request/
// response framing (fixed-length, chunked, connection-close) and the
// per-connection state machine that keeps a connection strictly
// half-duplex within one exchange.
package h1

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	"github.com/bassosimone/httpcore/headers"
)

// State is one state in the per-connection state machine (spec.md §4.G).
type State int

const (
	Idle State = iota
	WritingRequest
	OpenRequestBody
	ReadResponseHeaders
	OpenResponseBody
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case WritingRequest:
		return "WRITING_REQUEST"
	case OpenRequestBody:
		return "OPEN_REQUEST_BODY"
	case ReadResponseHeaders:
		return "READ_RESPONSE_HEADERS"
	case OpenResponseBody:
		return "OPEN_RESPONSE_BODY"
	default:
		return "UNKNOWN"
	}
}

// Codec drives one HTTP/1.1 exchange over conn, enforcing the
// IDLE -> WRITING_REQUEST -> OPEN_REQUEST_BODY -> READ_RESPONSE_HEADERS ->
// OPEN_RESPONSE_BODY -> IDLE state machine. A Codec is strictly
// half-duplex: only one exchange may use it at a time (spec.md §5).
type Codec struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer

	mu    sync.Mutex
	state State

	// peerRequestsClose is set once either side sent Connection: close
	// or the response used connection-close framing; it makes the
	// connection ineligible for keep-alive reuse (spec.md §4.G).
	peerRequestsClose bool
}

// New wraps conn in a [*Codec], ready in state IDLE.
func New(conn net.Conn) *Codec {
	return &Codec{
		conn:  conn,
		br:    bufio.NewReader(conn),
		bw:    bufio.NewWriter(conn),
		state: Idle,
	}
}

// State returns the codec's current state.
func (c *Codec) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reusable reports whether, after a completed exchange, this connection may
// be returned to the pool for keep-alive reuse (spec.md §4.G: "only if both
// peers agree and the body framing had a definite length").
func (c *Codec) Reusable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.peerRequestsClose && c.state == Idle
}

// Abort closes the underlying connection, unblocking any in-flight read
// or write with an I/O error and making the connection permanently
// ineligible for reuse (spec.md §4.I cancel()).
func (c *Codec) Abort() error {
	c.mu.Lock()
	c.peerRequestsClose = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Codec) transition(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return fmt.Errorf("h1: invalid transition %s -> %s from state %s", from, to, c.state)
	}
	c.state = to
	return nil
}

func (c *Codec) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// headerHasToken reports whether header (comma-separated) contains token,
// case-insensitively, used to detect "Connection: close"/"chunked".
func headerHasToken(list *headers.List, name, token string) bool {
	for _, v := range list.Values(name) {
		if asciiEqualFold(v, token) {
			return true
		}
	}
	return false
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
