// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"golang.org/x/net/http2"
)

// readLoop is the single reader task per connection (spec.md §4.H): it
// demultiplexes inbound frames to their stream's inbound queue, handling
// PING/SETTINGS/GOAWAY inline.
func (s *Session) readLoop() {
	defer s.Close()
	for {
		f, err := s.framer.ReadFrame()
		if err != nil {
			s.broadcastError(err)
			return
		}
		s.logFrame("read", frameTypeName(f), frameStreamID(f))
		switch fr := f.(type) {
		case *http2.SettingsFrame:
			s.handleSettings(fr)
		case *http2.PingFrame:
			s.handlePing(fr)
		case *http2.GoAwayFrame:
			s.handleGoAway(fr)
		case *http2.HeadersFrame:
			s.handleHeaders(fr)
		case *http2.ContinuationFrame:
			s.handleContinuation(fr)
		case *http2.DataFrame:
			s.handleData(fr)
		case *http2.WindowUpdateFrame:
			s.handleWindowUpdate(fr)
		case *http2.RSTStreamFrame:
			s.handleRSTStream(fr)
		case *http2.PushPromiseFrame:
			// Ignored by client (spec.md §4.H).
		case *http2.PriorityFrame:
			// No client-side prioritisation policy implemented.
		}
	}
}

func frameTypeName(f http2.Frame) string {
	switch f.(type) {
	case *http2.DataFrame:
		return "DATA"
	case *http2.HeadersFrame:
		return "HEADERS"
	case *http2.PriorityFrame:
		return "PRIORITY"
	case *http2.RSTStreamFrame:
		return "RST_STREAM"
	case *http2.SettingsFrame:
		return "SETTINGS"
	case *http2.PushPromiseFrame:
		return "PUSH_PROMISE"
	case *http2.PingFrame:
		return "PING"
	case *http2.GoAwayFrame:
		return "GOAWAY"
	case *http2.WindowUpdateFrame:
		return "WINDOW_UPDATE"
	case *http2.ContinuationFrame:
		return "CONTINUATION"
	default:
		return "UNKNOWN"
	}
}

func frameStreamID(f http2.Frame) uint32 {
	return f.Header().StreamID
}

func (s *Session) stream(id uint32) (*Stream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[id]
	return st, ok
}

func (s *Session) handleSettings(fr *http2.SettingsFrame) {
	if fr.IsAck() {
		return
	}
	fr.ForeachSetting(func(setting http2.Setting) error {
		if setting.ID == http2.SettingMaxConcurrentStreams {
			s.mu.Lock()
			s.peerMaxConcurrent = setting.Val
			s.mu.Unlock()
		}
		return nil
	})
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.framer.WriteSettingsAck()
}

func (s *Session) handlePing(fr *http2.PingFrame) {
	if fr.IsAck() {
		s.notifyPingAck(fr.Data)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.framer.WritePing(true, fr.Data)
}

// handleGoAway implements spec.md §4.H: GOAWAY sets noNewExchanges and the
// highest-accepted stream id; streams beyond that id fail with kind
// Refused, and the error reaches the exchange reading that stream.
func (s *Session) handleGoAway(fr *http2.GoAwayFrame) {
	s.mu.Lock()
	s.noNewExchanges = true
	s.lastAcceptedID = fr.LastStreamID
	var toFail []*Stream
	for id, st := range s.streams {
		if id > fr.LastStreamID {
			toFail = append(toFail, st)
		}
	}
	s.mu.Unlock()

	for _, st := range toFail {
		st.inbound <- frameOrError{err: errkindRefused()}
	}
}

func (s *Session) handleHeaders(fr *http2.HeadersFrame) {
	st, ok := s.stream(fr.StreamID)
	if !ok {
		return
	}
	st.headers = append(st.headers, fr.HeaderBlockFragment()...)
	if fr.HeadersEnded() {
		s.deliverHeaders(st, fr.StreamEnded())
	}
}

func (s *Session) handleContinuation(fr *http2.ContinuationFrame) {
	st, ok := s.stream(fr.StreamID)
	if !ok {
		return
	}
	st.headers = append(st.headers, fr.HeaderBlockFragment()...)
	if fr.HeadersEnded() {
		s.deliverHeaders(st, false)
	}
}

func (s *Session) deliverHeaders(st *Stream, endStream bool) {
	block := st.headers
	st.headers = nil
	st.inbound <- frameOrError{data: block, end: endStream, headers: true}
	if endStream {
		st.onEndStreamInbound()
	}
}

func (s *Session) handleData(fr *http2.DataFrame) {
	st, ok := s.stream(fr.StreamID)
	if !ok {
		return
	}
	data := append([]byte{}, fr.Data()...)
	st.inbound <- frameOrError{data: data, end: fr.StreamEnded()}
	if fr.StreamEnded() {
		st.onEndStreamInbound()
	}
	s.maybeSendWindowUpdate(fr.StreamID, len(data))
}

// maybeSendWindowUpdate emits WINDOW_UPDATE once consumed bytes exceed half
// the initial window, both stream-level and connection-level (spec.md
// §4.H "Flow control").
func (s *Session) maybeSendWindowUpdate(streamID uint32, n int) {
	s.mu.Lock()
	s.connRecvWindow -= int32(n)
	threshold := int32(DefaultInitialWindowSize / 2)
	needsConn := s.connRecvWindow < threshold
	if needsConn {
		s.connRecvWindow += DefaultInitialWindowSize
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if needsConn {
		s.framer.WriteWindowUpdate(0, DefaultInitialWindowSize)
	}
	s.framer.WriteWindowUpdate(streamID, uint32(n))
}

func (s *Session) handleWindowUpdate(fr *http2.WindowUpdateFrame) {
	if fr.StreamID == 0 {
		s.mu.Lock()
		s.connSendWindow += int32(fr.Increment)
		s.mu.Unlock()
		return
	}
	if st, ok := s.stream(fr.StreamID); ok {
		st.increaseSendWindow(int32(fr.Increment))
	}
}

func (s *Session) handleRSTStream(fr *http2.RSTStreamFrame) {
	st, ok := s.stream(fr.StreamID)
	if !ok {
		return
	}
	st.setState(StreamClosed)
	st.inbound <- frameOrError{err: errkindStreamReset()}
}

func (s *Session) broadcastError(err error) {
	s.mu.Lock()
	streams := make([]*Stream, 0, len(s.streams))
	for _, st := range s.streams {
		streams = append(streams, st)
	}
	s.mu.Unlock()
	for _, st := range streams {
		select {
		case st.inbound <- frameOrError{err: err}:
		default:
		}
	}
}
