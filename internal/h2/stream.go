// SPDX-License-Identifier: GPL-3.0-or-later

// Package h2 implements the HTTP/2 codec (spec.md §4.H): a single
// multiplexed session per connection, built on top of
// golang.org/x/net/http2's [http2.Framer] for wire framing and
// golang.org/x/net/http2/hpack for header (de)compression, with our own
// stream lifecycle, flow-control windows, and GOAWAY/PING handling.
package h2

import (
	"sync"
)

// StreamState is one state in a stream's lifecycle (spec.md §4.H).
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamOpen
	StreamHalfClosedLocal
	StreamClosed
)

// Stream is one HTTP/2 stream: a request/response cycle multiplexed over
// a shared [Session].
type Stream struct {
	ID uint32

	mu    sync.Mutex
	state StreamState

	// sendWindow/recvWindow are this stream's independent flow-control
	// windows, initialised from SETTINGS_INITIAL_WINDOW_SIZE.
	sendWindow int32
	recvWindow int32

	inbound chan frameOrError

	headers    []byte // accumulated HPACK-encoded header block fragments
	endHeaders bool
}

type frameOrError struct {
	data    []byte
	end     bool
	headers bool // true when data is an HPACK block (HEADERS+CONTINUATION), false for DATA
	err     error
}

func newStream(id uint32, initialWindow int32) *Stream {
	return &Stream{
		ID:         id,
		state:      StreamIdle,
		sendWindow: initialWindow,
		recvWindow: initialWindow,
		inbound:    make(chan frameOrError, 16),
	}
}

// RecvNext blocks for the next inbound item for this stream: either an
// HPACK header block (isHeaders true, for the initial response headers or
// trailers) or a DATA payload (isHeaders false). end reports whether the
// peer's END_STREAM flag was set on this item. Used by [internal/exchange]
// to bridge a [*Stream] to the generic Exchange contract without exposing
// the unexported frameOrError type across the package boundary.
func (s *Stream) RecvNext() (data []byte, end bool, isHeaders bool, err error) {
	fe, ok := <-s.inbound
	if !ok {
		return nil, true, false, errkindStreamReset()
	}
	return fe.data, fe.end, fe.headers, fe.err
}

// State returns the stream's current lifecycle state.
func (s *Stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Stream) setState(st StreamState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// onEndStreamInbound transitions the stream on receiving END_STREAM from
// the peer: OPEN -> HALF_CLOSED_LOCAL is the client's perspective name
// reused here for "peer is done sending"; a stream already
// half-closed-local that also finishes sending locally becomes CLOSED.
func (s *Stream) onEndStreamInbound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StreamHalfClosedLocal {
		s.state = StreamClosed
	} else {
		s.state = StreamHalfClosedLocal
	}
}

// onEndStreamOutbound marks that we finished sending END_STREAM locally.
func (s *Stream) onEndStreamOutbound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StreamHalfClosedLocal {
		s.state = StreamClosed
	}
}

// consumeSendWindow reduces the stream's send window by n, returning false
// if n exceeds the available window (caller must wait for WINDOW_UPDATE).
func (s *Stream) consumeSendWindow(n int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.sendWindow {
		return false
	}
	s.sendWindow -= n
	return true
}

func (s *Stream) increaseSendWindow(n int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendWindow += n
}
