// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"net"
	"testing"
	"time"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/slogx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

func TestOpenStreamAssignsOddIDs(t *testing.T) {
	s := &Session{streams: make(map[uint32]*Stream), nextStreamID: 1}
	st1, err := s.OpenStream()
	require.NoError(t, err)
	st2, err := s.OpenStream()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), st1.ID)
	assert.Equal(t, uint32(3), st2.ID)
}

func TestOpenStreamRejectedAfterGoAway(t *testing.T) {
	s := &Session{streams: make(map[uint32]*Stream), nextStreamID: 1, noNewExchanges: true}
	_, err := s.OpenStream()
	assert.Equal(t, errkind.Refused, errkind.KindOf(err))
}

func TestHandleGoAwayFailsStreamsBeyondLastAccepted(t *testing.T) {
	s := &Session{streams: make(map[uint32]*Stream), nextStreamID: 5}
	survivor := newStream(1, DefaultInitialWindowSize)
	doomed := newStream(3, DefaultInitialWindowSize)
	s.streams[1] = survivor
	s.streams[3] = doomed

	s.handleGoAway(&http2.GoAwayFrame{LastStreamID: 1})

	assert.True(t, s.NoNewExchanges())
	select {
	case fe := <-doomed.inbound:
		assert.Equal(t, errkind.Refused, errkind.KindOf(fe.err))
	case <-time.After(time.Second):
		t.Fatal("expected stream 3 to receive a Refused error after GOAWAY(last=1)")
	}
}

func TestDecodeResponseHeadersSplitsStatusAndRegular(t *testing.T) {
	var buf []byte
	enc := hpack.NewEncoder(sliceWriter{&buf})
	enc.WriteField(hpack.HeaderField{Name: ":status", Value: "200"})
	enc.WriteField(hpack.HeaderField{Name: "content-type", Value: "text/plain"})

	s := NewSession(nopConn{}, slogx.Default())
	decoded, err := s.DecodeResponseHeaders(buf)
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Status)
	v, ok := decoded.Regular.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
}

type sliceWriter struct{ buf *[]byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

type nopConn struct{ net.Conn }

func (nopConn) Read(p []byte) (int, error)         { return 0, nil }
func (nopConn) Write(p []byte) (int, error)        { return len(p), nil }
func (nopConn) Close() error                       { return nil }
func (nopConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (nopConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (nopConn) SetDeadline(t time.Time) error      { return nil }
func (nopConn) SetReadDeadline(t time.Time) error  { return nil }
func (nopConn) SetWriteDeadline(t time.Time) error { return nil }
