// SPDX-License-Identifier: GPL-3.0-or-later

// Package exchange implements the Exchange / connection bridge (spec.md
// §4.I): binding one request/response cycle to one pooled connection and
// its codec, whichever of [internal/h1] or [internal/h2] that connection
// speaks.
package exchange

import (
	"io"
	"sync"

	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/internal/pool"
	"github.com/bassosimone/httpcore/url"
)

// Request is the minimal outbound-request view an Exchange needs: method,
// target URL, headers, and an optional body. The interceptor chain is
// responsible for producing a fully-bridged header set
// before handing a Request to an Exchange.
type Request struct {
	Method string
	URL    *url.URL
	Header *headers.List

	// ContentLength is the declared body length, or -1 if unknown (body
	// framed as chunked on HTTP/1.1, or as a plain DATA stream on
	// HTTP/2).
	ContentLength int64
}

// Response is the minimal inbound-response view an Exchange produces.
type Response struct {
	StatusCode int
	Proto      string // "HTTP/1.1" or "HTTP/2"
	Header     *headers.List
}

// Exchange binds one request/response cycle to one connection (spec.md
// §4.I). Exactly one cycle per Exchange: writeRequestHeaders,
// createRequestBody (if the request has a body), finishRequest,
// readResponseHeaders, openResponseBodySource, trailers, in that order.
// The connection allocation is released once, when the response body is
// fully read or closed, or on cancel; calls made after that are not
// rejected. Cancel may be called at any point.
type Exchange interface {
	// WriteRequestHeaders sends the request line/pseudo-headers and
	// header block.
	WriteRequestHeaders(req *Request) error

	// CreateRequestBody opens a sink for the request body. duplex
	// requests that finishRequest not block on the body being fully
	// written before readResponseHeaders may return; HTTP/2 supports
	// this natively, HTTP/1.1 never does (spec.md §4.I).
	CreateRequestBody(req *Request, duplex bool) (io.WriteCloser, error)

	// FinishRequest finalizes request framing. For a non-duplex
	// exchange the body must already be closed.
	FinishRequest() error

	// ReadResponseHeaders blocks for the status line/pseudo-headers and
	// header block. expectContinue causes any interim 100 status to be
	// consumed and skipped.
	ReadResponseHeaders(expectContinue bool) (*Response, error)

	// OpenResponseBodySource opens a source for the response body,
	// chosen from resp's framing headers.
	OpenResponseBodySource(resp *Response) (io.ReadCloser, error)

	// Trailers returns any trailer header block delivered after the
	// response body, or nil if none was sent.
	Trailers() (*headers.List, error)

	// Cancel aborts the exchange at any point, propagating as an I/O
	// failure to whichever read/write is in flight.
	Cancel()
}

// lifecycle tracks the one-cycle-per-Exchange rule and the connection
// allocation release that must happen exactly once, however the exchange
// ends (body fully consumed, or cancelled).
type lifecycle struct {
	pool *pool.Pool
	conn *pool.Connection

	mu       sync.Mutex
	done     bool
	canceled bool
}

func newLifecycle(p *pool.Pool, c *pool.Connection) lifecycle {
	return lifecycle{pool: p, conn: c}
}

// finish releases the connection allocation; safe to call more than once,
// only the first call has effect (spec.md §4.I: "any operation after the
// response body is fully consumed transitions the Exchange to 'done' and
// releases its allocation on the Connection").
func (l *lifecycle) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return
	}
	l.done = true
	l.pool.Release(l.conn)
}

func (l *lifecycle) isDone() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *lifecycle) markCanceled() {
	l.mu.Lock()
	l.canceled = true
	l.mu.Unlock()
	l.finish()
}
