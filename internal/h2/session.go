// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/slogx"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

// DefaultInitialWindowSize is the flow-control window size both endpoints
// start with before any SETTINGS exchange (spec.md §4.H, RFC 9113 §6.9.2).
const DefaultInitialWindowSize = 65535

// Session is a single multiplexed HTTP/2 connection (spec.md §4.H). It
// owns one reader goroutine (demultiplexing inbound frames to their
// stream) and serialises all outbound frames through a single writer
// lane, guarded by its own mutex (spec.md §5).
type Session struct {
	conn   net.Conn
	logger slogx.SLogger

	framer *http2.Framer

	writeMu     sync.Mutex
	hpackEnc    *hpack.Encoder
	hpackEncBuf *bytes.Buffer

	mu                sync.Mutex
	streams           map[uint32]*Stream
	nextStreamID      uint32
	connSendWindow    int32
	connRecvWindow    int32
	noNewExchanges    bool
	lastAcceptedID    uint32
	peerMaxConcurrent uint32

	hpackDec *hpack.Decoder

	pingWaiters map[[8]byte]chan struct{}

	closed chan struct{}
}

// NewSession wraps conn (already ALPN-negotiated to "h2") in a [*Session].
// It performs no I/O: [Session.Start] writes the client connection preface
// and initial SETTINGS and starts the reader loop.
func NewSession(conn net.Conn, logger slogx.SLogger) *Session {
	encBuf := &bytes.Buffer{}
	s := &Session{
		conn:              conn,
		logger:            logger,
		framer:            http2.NewFramer(conn, conn),
		streams:           make(map[uint32]*Stream),
		nextStreamID:      1,
		connSendWindow:    DefaultInitialWindowSize,
		connRecvWindow:    DefaultInitialWindowSize,
		peerMaxConcurrent: 100,
		closed:            make(chan struct{}),
		hpackEncBuf:       encBuf,
	}
	s.hpackEnc = hpack.NewEncoder(encBuf)
	s.hpackDec = hpack.NewDecoder(4096, nil)
	return s
}

// ClientPreface is the 24-octet connection preface a client must send
// before any frames (RFC 9113 §3.4).
const ClientPreface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// Start writes the client preface and an initial SETTINGS frame, then
// launches the single reader goroutine.
func (s *Session) Start() error {
	if _, err := s.conn.Write([]byte(ClientPreface)); err != nil {
		return err
	}
	if err := s.framer.WriteSettings(); err != nil {
		return err
	}
	go s.readLoop()
	return nil
}

// OpenStream allocates the next odd-numbered client stream id and
// registers it (spec.md §4.H: "client creates odd-numbered ids
// monotonically").
func (s *Session) OpenStream() (*Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noNewExchanges {
		return nil, errkind.New(errkind.Refused, fmt.Errorf("h2: session received GOAWAY, no new streams"))
	}
	id := s.nextStreamID
	s.nextStreamID += 2
	st := newStream(id, DefaultInitialWindowSize)
	st.setState(StreamOpen)
	s.streams[id] = st
	return st, nil
}

// NoNewExchanges reports whether a GOAWAY has been received.
func (s *Session) NoNewExchanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noNewExchanges
}

// Close closes the underlying connection and tears down the session.
func (s *Session) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return s.conn.Close()
}

func (s *Session) logFrame(direction, frameType string, streamID uint32) {
	s.logger.Debug("h2Frame",
		slog.String("direction", direction),
		slog.String("frameType", frameType),
		slog.Uint64("streamId", uint64(streamID)),
	)
}
