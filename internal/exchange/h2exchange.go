// SPDX-License-Identifier: GPL-3.0-or-later

package exchange

import (
	"fmt"
	"io"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/internal/h2"
	"github.com/bassosimone/httpcore/internal/pool"
	"github.com/bassosimone/httpcore/url"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

// h2Exchange is the HTTP/2 [Exchange]: writing/reading frames for one
// stream of a shared, already-running [*h2.Session]. Unlike HTTP/1.1 it
// supports duplex exchanges natively, since request and response frames
// travel independently over the same connection (spec.md §4.I).
type h2Exchange struct {
	lifecycle

	session *h2.Session
	stream  *h2.Stream

	responseEnded bool
	bodyReader    *h2BodyReader
}

// NewH2Exchange opens a new stream on session and binds it to an
// [Exchange], releasing c's allocation through p once the exchange is
// done.
func NewH2Exchange(p *pool.Pool, c *pool.Connection, session *h2.Session) (Exchange, error) {
	st, err := session.OpenStream()
	if err != nil {
		return nil, err
	}
	return &h2Exchange{lifecycle: newLifecycle(p, c), session: session, stream: st}, nil
}

func (e *h2Exchange) WriteRequestHeaders(req *Request) error {
	pseudo := []hpack.HeaderField{
		{Name: ":method", Value: req.Method},
		{Name: ":path", Value: req.URL.RequestTarget()},
		{Name: ":scheme", Value: string(req.URL.Scheme())},
		{Name: ":authority", Value: authority(req.URL)},
	}
	endStream := req.ContentLength == 0
	return e.session.WriteHeaders(e.stream, pseudo, req.Header, endStream)
}

func authority(u *url.URL) string {
	if u.IsDefaultPort() {
		return u.Host()
	}
	return fmt.Sprintf("%s:%d", u.Host(), u.Port())
}

// CreateRequestBody returns a sink that frames each Write as a DATA frame;
// duplex has no effect here, writes and reads already proceed
// independently over the multiplexed session (spec.md §4.I: "HTTP/2
// always" supports duplex).
func (e *h2Exchange) CreateRequestBody(req *Request, duplex bool) (io.WriteCloser, error) {
	return &h2BodyWriter{session: e.session, stream: e.stream}, nil
}

type h2BodyWriter struct {
	session *h2.Session
	stream  *h2.Stream
	closed  bool
}

func (w *h2BodyWriter) Write(p []byte) (int, error) {
	return w.session.WriteData(w.stream, p, false)
}

func (w *h2BodyWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.session.WriteData(w.stream, nil, true)
	return err
}

// FinishRequest is a no-op: request HEADERS/DATA frames are written
// synchronously to the socket as they are produced, and the session's
// single reader goroutine can already deliver response frames
// concurrently, so there is nothing left to flush or wait for.
func (e *h2Exchange) FinishRequest() error {
	return nil
}

func (e *h2Exchange) ReadResponseHeaders(expectContinue bool) (*Response, error) {
	for {
		block, end, isHeaders, err := e.stream.RecvNext()
		if err != nil {
			return nil, classifyStreamErr(err)
		}
		if !isHeaders {
			e.conn.MarkNoNewExchanges()
			return nil, errkind.New(errkind.ProtocolError, fmt.Errorf("h2: expected HEADERS, got DATA"))
		}
		decoded, err := e.session.DecodeResponseHeaders(block)
		if err != nil {
			e.conn.MarkNoNewExchanges()
			return nil, errkind.New(errkind.ProtocolError, err)
		}
		if (expectContinue && decoded.Status == 100) || (decoded.Status >= 100 && decoded.Status < 200) {
			continue
		}
		e.responseEnded = end
		return &Response{StatusCode: decoded.Status, Proto: "HTTP/2", Header: decoded.Regular}, nil
	}
}

func (e *h2Exchange) OpenResponseBodySource(resp *Response) (io.ReadCloser, error) {
	if e.responseEnded {
		e.finish()
		return io.NopCloser(noReader{}), nil
	}
	e.bodyReader = &h2BodyReader{session: e.session, stream: e.stream, conn: e.conn, onDone: e.finish}
	return e.bodyReader, nil
}

type noReader struct{}

func (noReader) Read([]byte) (int, error) { return 0, io.EOF }

// h2BodyReader consumes DATA frames from the stream's inbound queue until
// END_STREAM, stashing a trailing HEADERS block (trailers) if one
// precedes it.
type h2BodyReader struct {
	session *h2.Session
	stream  *h2.Stream
	conn    *pool.Connection
	onDone  func()

	buf      []byte
	trailers *headers.List
	eof      bool
	done     bool
}

func (r *h2BodyReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.eof {
			r.finish()
			return 0, io.EOF
		}
		data, end, isHeaders, err := r.stream.RecvNext()
		if err != nil {
			r.conn.MarkNoNewExchanges()
			r.finish()
			return 0, classifyStreamErr(err)
		}
		if isHeaders {
			decoded, derr := r.session.DecodeResponseHeaders(data)
			if derr == nil {
				r.trailers = decoded.Regular
			}
			r.eof = true
			continue
		}
		r.buf = data
		if end {
			r.eof = true
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *h2BodyReader) Close() error {
	r.finish()
	return nil
}

func (r *h2BodyReader) finish() {
	if r.done {
		return
	}
	r.done = true
	r.onDone()
}

// Trailers returns the trailer HEADERS block delivered after DATA, if
// any. Only meaningful once the body has been fully consumed.
func (e *h2Exchange) Trailers() (*headers.List, error) {
	if e.bodyReader == nil {
		return nil, nil
	}
	return e.bodyReader.trailers, nil
}

func classifyStreamErr(err error) error {
	if errkind.KindOf(err) != "" {
		return err
	}
	return errkind.New(errkind.ProtocolError, err)
}

// Cancel resets this stream (RST_STREAM), leaving the rest of the
// multiplexed connection intact for other exchanges (spec.md §4.I).
func (e *h2Exchange) Cancel() {
	e.markCanceled()
	e.session.WriteRSTStream(e.stream, http2.ErrCodeCancel)
}
