// SPDX-License-Identifier: GPL-3.0-or-later

package exchange

import (
	"fmt"
	"io"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/internal/h1"
	"github.com/bassosimone/httpcore/internal/pool"
)

// h1Exchange is the HTTP/1.1 [Exchange]: it drives conn's [*h1.Codec]
// through its state machine and is therefore strictly non-duplex (spec.md
// §4.I: "HTTP/1 never").
type h1Exchange struct {
	lifecycle

	codec  *h1.Codec
	method string
	status h1.StatusLine

	bodyWriter h1.RequestBodyWriter
}

// NewH1Exchange returns an [Exchange] bound to conn, which must carry an
// [*h1.Codec] in state IDLE, and c, the pooled connection it was acquired
// from.
func NewH1Exchange(p *pool.Pool, c *pool.Connection, codec *h1.Codec) Exchange {
	return &h1Exchange{lifecycle: newLifecycle(p, c), codec: codec}
}

func (e *h1Exchange) WriteRequestHeaders(req *Request) error {
	e.method = req.Method
	target := req.URL.RequestTarget()
	return e.codec.WriteRequestHeaders(h1.RequestLine{Method: req.Method, Target: target}, req.Header)
}

// CreateRequestBody ignores duplex: HTTP/1.1 is strictly half-duplex
// within one exchange, so finishRequest always completes the body before
// readResponseHeaders can proceed regardless of what the caller asked for.
func (e *h1Exchange) CreateRequestBody(req *Request, duplex bool) (io.WriteCloser, error) {
	w, err := e.codec.OpenRequestBodyWriter(req.Header, true)
	if err != nil {
		return nil, err
	}
	e.bodyWriter = w
	return requestBodyCloser{w}, nil
}

type requestBodyCloser struct{ w h1.RequestBodyWriter }

func (r requestBodyCloser) Write(p []byte) (int, error) { return r.w.Write(p) }
func (r requestBodyCloser) Close() error                { return r.w.Close() }

func (e *h1Exchange) FinishRequest() error {
	if e.bodyWriter == nil {
		var err error
		if e.bodyWriter, err = e.codec.OpenRequestBodyWriter(headers.NewBuilder().Build(), false); err != nil {
			return err
		}
	}
	return e.codec.FinishRequest(e.bodyWriter)
}

func (e *h1Exchange) ReadResponseHeaders(expectContinue bool) (*Response, error) {
	status, h, err := e.codec.ReadResponseHeaders(expectContinue)
	if err != nil {
		e.conn.MarkNoNewExchanges()
		return nil, errkind.New(errkind.ProtocolError, err)
	}
	e.status = status
	return &Response{
		StatusCode: status.StatusCode,
		Proto:      fmt.Sprintf("HTTP/%d.%d", status.ProtoMajor, status.ProtoMinor),
		Header:     h,
	}, nil
}

func (e *h1Exchange) OpenResponseBodySource(resp *Response) (io.ReadCloser, error) {
	r := e.codec.OpenResponseBodyReader(e.method, e.status, resp.Header)
	return &responseBodyDrain{r: r, codec: e.codec, onDone: e.finish}, nil
}

// responseBodyDrain finishes the codec's IDLE transition and releases the
// connection allocation once the body is fully read (EOF) or the caller
// closes early.
type responseBodyDrain struct {
	r      h1.ResponseBodyReader
	codec  *h1.Codec
	onDone func()
	closed bool
}

func (d *responseBodyDrain) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err == io.EOF {
		d.finish()
	}
	return n, err
}

func (d *responseBodyDrain) Close() error {
	err := d.r.Close()
	d.finish()
	return err
}

func (d *responseBodyDrain) finish() {
	if d.closed {
		return
	}
	d.closed = true
	d.codec.FinishResponse()
	d.onDone()
}

// Trailers: HTTP/1.1 trailers only exist after a chunked body's
// terminating zero-chunk; this codec discards them during framing
// (spec.md §4.G does not require surfacing them), so none are ever
// reported here.
func (e *h1Exchange) Trailers() (*headers.List, error) {
	return nil, nil
}

func (e *h1Exchange) Cancel() {
	e.markCanceled()
	e.codec.Abort()
}
