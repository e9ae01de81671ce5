// SPDX-License-Identifier: GPL-3.0-or-later

package h1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bassosimone/httpcore/headers"
)

// RequestLine is the method/target/version triple written before headers.
type RequestLine struct {
	Method string
	Target string
}

// WriteRequestHeaders writes the request line and header block, followed
// by the blank line terminator, then transitions IDLE -> WRITING_REQUEST.
func (c *Codec) WriteRequestHeaders(line RequestLine, h *headers.List) error {
	if err := c.transition(Idle, WritingRequest); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.bw, "%s %s HTTP/1.1\r\n", line.Method, line.Target); err != nil {
		return err
	}
	for i := 0; i < h.Len(); i++ {
		if _, err := fmt.Fprintf(c.bw, "%s: %s\r\n", h.Name(i), h.Value(i)); err != nil {
			return err
		}
	}
	if _, err := c.bw.WriteString("\r\n"); err != nil {
		return err
	}
	if headerHasToken(h, "Connection", "close") {
		c.mu.Lock()
		c.peerRequestsClose = true
		c.mu.Unlock()
	}
	return c.bw.Flush()
}

// OpenRequestBodyWriter chooses the [RequestBodyWriter] per spec.md §4.G
// and transitions WRITING_REQUEST -> OPEN_REQUEST_BODY. hasBody indicates
// the request declared a body with neither Content-Length nor
// Transfer-Encoding present, which attaches chunked framing by default.
func (c *Codec) OpenRequestBodyWriter(h *headers.List, hasBody bool) (RequestBodyWriter, error) {
	if err := c.transition(WritingRequest, OpenRequestBody); err != nil {
		return nil, err
	}
	if v, ok := h.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("h1: malformed Content-Length %q", v)
		}
		return NewFixedRequestBodyWriter(c.bw, n), nil
	}
	if headerHasToken(h, "Transfer-Encoding", "chunked") || hasBody {
		return NewChunkedRequestBodyWriter(c.bw), nil
	}
	return NewFixedRequestBodyWriter(c.bw, 0), nil
}

// FinishRequest flushes the body writer and transitions
// OPEN_REQUEST_BODY -> READ_RESPONSE_HEADERS.
func (c *Codec) FinishRequest(w RequestBodyWriter) error {
	if err := w.Close(); err != nil {
		return err
	}
	if err := c.bw.Flush(); err != nil {
		return err
	}
	return c.transition(OpenRequestBody, ReadResponseHeaders)
}

// StatusLine is the parsed "HTTP/1.1 200 OK" response status line.
type StatusLine struct {
	ProtoMajor, ProtoMinor int
	StatusCode             int
	Reason                 string
}

// ReadResponseHeaders reads the status line and header block, transitioning
// READ_RESPONSE_HEADERS -> OPEN_RESPONSE_BODY. expectContinue indicates the
// request sent "Expect: 100-continue", in which case any interim 100
// response is consumed and discarded before the final status line.
func (c *Codec) ReadResponseHeaders(expectContinue bool) (StatusLine, *headers.List, error) {
	c.mu.Lock()
	cur := c.state
	c.mu.Unlock()
	if cur != ReadResponseHeaders {
		return StatusLine{}, nil, fmt.Errorf("h1: ReadResponseHeaders called in state %s, expected %s", cur, ReadResponseHeaders)
	}
	for {
		status, h, err := c.readOneResponseHeaderBlock()
		if err != nil {
			return StatusLine{}, nil, err
		}
		if expectContinue && status.StatusCode == 100 {
			continue
		}
		if status.StatusCode >= 100 && status.StatusCode < 200 {
			continue
		}
		if headerHasToken(h, "Connection", "close") {
			c.mu.Lock()
			c.peerRequestsClose = true
			c.mu.Unlock()
		}
		if err := c.transition(ReadResponseHeaders, OpenResponseBody); err != nil {
			return StatusLine{}, nil, err
		}
		return status, h, nil
	}
}

func (c *Codec) readOneResponseHeaderBlock() (StatusLine, *headers.List, error) {
	line, err := c.br.ReadString('\n')
	if err != nil {
		return StatusLine{}, nil, err
	}
	status, err := parseStatusLine(trimCRLF(line))
	if err != nil {
		return StatusLine{}, nil, err
	}

	b := headers.NewBuilder()
	for {
		hline, err := c.br.ReadString('\n')
		if err != nil {
			return StatusLine{}, nil, err
		}
		hline = trimCRLF(hline)
		if hline == "" {
			break
		}
		if b, err = b.AddLine(hline); err != nil {
			return StatusLine{}, nil, err
		}
	}
	return status, b.Build(), nil
}

func parseStatusLine(line string) (StatusLine, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return StatusLine{}, fmt.Errorf("h1: malformed status line %q", line)
	}
	major, minor := 1, 1
	fmt.Sscanf(parts[0], "HTTP/%d.%d", &major, &minor)
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return StatusLine{}, fmt.Errorf("h1: malformed status code in %q", line)
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}
	return StatusLine{ProtoMajor: major, ProtoMinor: minor, StatusCode: code, Reason: reason}, nil
}

// OpenResponseBodyReader chooses the [ResponseBodyReader] per spec.md §4.G
// and leaves the codec in OPEN_RESPONSE_BODY until [Codec.FinishResponse]
// is called once the body is fully drained.
func (c *Codec) OpenResponseBodyReader(method string, status StatusLine, h *headers.List) ResponseBodyReader {
	switch {
	case method == "HEAD",
		status.StatusCode/100 == 1,
		status.StatusCode == 204,
		status.StatusCode == 304:
		return NewZeroResponseBodyReader()
	}
	if v, ok := h.Get("Content-Length"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return NewFixedResponseBodyReader(c.br, n)
		}
	}
	if headerHasToken(h, "Transfer-Encoding", "chunked") {
		return NewChunkedResponseBodyReader(c.br)
	}
	c.mu.Lock()
	c.peerRequestsClose = true
	c.mu.Unlock()
	return NewConnectionCloseResponseBodyReader(c.br)
}

// FinishResponse transitions OPEN_RESPONSE_BODY -> IDLE once the response
// body has been fully consumed, making the connection eligible for reuse
// if [Codec.Reusable] agrees.
func (c *Codec) FinishResponse() error {
	return c.transition(OpenResponseBody, Idle)
}
