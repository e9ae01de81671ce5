// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"github.com/bassosimone/httpcore/headers"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

// maxFrameSize bounds a single HEADERS/CONTINUATION/DATA payload, matching
// the RFC 9113 §4.2 default.
const maxFrameSize = 16384

// WriteHeaders HPACK-encodes h and writes it as one HEADERS frame (plus
// CONTINUATION frames if it overflows maxFrameSize), atomically with
// respect to other streams' HEADERS/CONTINUATION blocks (spec.md §4.H
// "Writer serialisation"). pseudo are HTTP/2 pseudo-headers (":method",
// ":path", ":scheme", ":authority") emitted first, per RFC 9113 §8.3.
func (s *Session) WriteHeaders(st *Stream, pseudo []hpack.HeaderField, h *headers.List, endStream bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.hpackEncBuf.Reset()
	for _, f := range pseudo {
		s.hpackEnc.WriteField(f)
	}
	for i := 0; i < h.Len(); i++ {
		s.hpackEnc.WriteField(hpack.HeaderField{Name: h.Name(i), Value: h.Value(i)})
	}
	block := append([]byte{}, s.hpackEncBuf.Bytes()...)

	first := true
	for len(block) > 0 || first {
		chunk := block
		more := false
		if len(chunk) > maxFrameSize {
			chunk = block[:maxFrameSize]
			more = true
		}
		block = block[len(chunk):]

		if first {
			if err := s.framer.WriteHeaders(http2.HeadersFrameParam{
				StreamID:      st.ID,
				BlockFragment: chunk,
				EndHeaders:    !more,
				EndStream:     endStream && !more && len(block) == 0,
			}); err != nil {
				return err
			}
			first = false
			s.logFrame("write", "HEADERS", st.ID)
			continue
		}
		if err := s.framer.WriteContinuation(st.ID, !more, chunk); err != nil {
			return err
		}
		s.logFrame("write", "CONTINUATION", st.ID)
	}
	if endStream {
		st.onEndStreamOutbound()
	}
	return nil
}

// WriteData writes p as one or more DATA frames, respecting
// min(stream-window, connection-window) (spec.md §4.H "Flow control").
// Callers that need to send more than the available window must retry
// after a WINDOW_UPDATE enlarges it.
func (s *Session) WriteData(st *Stream, p []byte, endStream bool) (int, error) {
	written := 0
	if len(p) == 0 && endStream {
		s.writeMu.Lock()
		err := s.framer.WriteData(st.ID, true, nil)
		s.writeMu.Unlock()
		if err != nil {
			return 0, err
		}
		s.logFrame("write", "DATA", st.ID)
		st.onEndStreamOutbound()
		return 0, nil
	}
	for len(p) > 0 {
		n := len(p)
		if n > maxFrameSize {
			n = maxFrameSize
		}
		if !st.consumeSendWindow(int32(n)) {
			return written, errFlowControlBlocked
		}
		s.mu.Lock()
		if s.connSendWindow < int32(n) {
			s.mu.Unlock()
			st.increaseSendWindow(int32(n))
			return written, errFlowControlBlocked
		}
		s.connSendWindow -= int32(n)
		s.mu.Unlock()

		last := n == len(p)
		s.writeMu.Lock()
		err := s.framer.WriteData(st.ID, endStream && last, p[:n])
		s.writeMu.Unlock()
		if err != nil {
			return written, err
		}
		s.logFrame("write", "DATA", st.ID)
		written += n
		p = p[n:]
	}
	if endStream {
		st.onEndStreamOutbound()
	}
	return written, nil
}

// WriteRSTStream aborts st locally, used to cancel an in-flight exchange
// without tearing down the whole connection (spec.md §4.I cancel()).
func (s *Session) WriteRSTStream(st *Stream, code http2.ErrCode) error {
	st.setState(StreamClosed)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.framer.WriteRSTStream(st.ID, code)
}

// WriteGoAway sends a GOAWAY advertising lastStreamID as the highest
// stream id this session will process further (used when a retried call
// needs to fence off in-flight streams; primarily a server-initiated
// frame but exposed for test symmetry and for a client closing down
// gracefully).
func (s *Session) WriteGoAway(lastStreamID uint32, code http2.ErrCode) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.framer.WriteGoAway(lastStreamID, code, nil)
}

// Ping sends a PING frame for liveness checking (spec.md §4.H). Exchange
// dispatch does not ping an idle connection first.
func (s *Session) Ping(data [8]byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.framer.WritePing(false, data)
}

// errFlowControlBlocked signals that a [Session.WriteData] call could not
// proceed because the stream or connection send window is exhausted.
var errFlowControlBlocked = flowControlBlockedError{}

type flowControlBlockedError struct{}

func (flowControlBlockedError) Error() string { return "h2: flow control window exhausted" }
