// SPDX-License-Identifier: GPL-3.0-or-later

// Package multipart implements the multipart/form-data [httpcore.RequestBody]
// capability port spec.md §6 lists alongside CookieJar and Authenticator:
// byte-for-byte RFC 2046 framing via the standard library's mime/multipart
// writer, which already produces the exact "--boundary\r\n...\r\n--boundary--\r\n"
// wire format spec.md §8 S4 specifies — there is no third-party framing
// library in the examined dependency surface and none would improve on the
// standard one here.
package multipart

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/bassosimone/httpcore"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/mediatype"
)

// Part is one section of a multipart body: a header list plus a body that
// is either held in memory or opened lazily from a stream.
type Part struct {
	header *headers.List
	data   []byte
	open   func() (io.ReadCloser, error)
}

// NewPart returns a [*Part] whose body is data, replayable as many times
// as the enclosing [Body] requires. header may be nil or empty, e.g. for
// the single bare part spec.md §8 S4 describes.
func NewPart(header *headers.List, data []byte) *Part {
	return &Part{header: header, data: data}
}

// NewStreamPart returns a [*Part] whose body is opened by calling open,
// e.g. to attach a file without buffering it. A stream part forces the
// enclosing [Body] to be one-shot (spec.md §4.D).
func NewStreamPart(header *headers.List, open func() (io.ReadCloser, error)) *Part {
	return &Part{header: header, open: open}
}

func (p *Part) isStream() bool { return p.open != nil }

func (p *Part) mimeHeader() textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	if p.header == nil {
		return h
	}
	for i := 0; i < p.header.Len(); i++ {
		h.Add(p.header.Name(i), p.header.Value(i))
	}
	return h
}

func (p *Part) writeTo(w *multipart.Writer) error {
	sink, err := w.CreatePart(p.mimeHeader())
	if err != nil {
		return err
	}
	if !p.isStream() {
		_, err = sink.Write(p.data)
		return err
	}
	rc, err := p.open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(sink, rc)
	return err
}

// body implements [httpcore.RequestBody] over an ordered list of [*Part]s
// sharing one boundary.
type body struct {
	boundary      string
	parts         []*Part
	contentLength int64 // -1 when any part streams
	rendered      []byte
	oneShot       bool
}

var _ httpcore.RequestBody = &body{}

// NewBody returns a [httpcore.RequestBody] serializing parts as
// multipart/form-data with boundary. When every part is in-memory
// (constructed via [NewPart]), the body is fully rendered up front so its
// exact Content-Length is known and it may be replayed by
// RetryAndFollowUp; a single [*Part] built via [NewStreamPart] makes the
// whole body one-shot with an unknown Content-Length (chunked framing).
func NewBody(boundary string, parts ...*Part) httpcore.RequestBody {
	b := &body{boundary: boundary, parts: parts}
	for _, p := range parts {
		if p.isStream() {
			b.oneShot = true
			b.contentLength = -1
			return b
		}
	}
	rendered, err := renderAll(boundary, parts)
	if err != nil {
		// Every part here is in-memory; CreatePart only fails on a
		// malformed boundary or a write error from a bytes.Buffer,
		// neither possible once NewWriter accepted the boundary.
		b.oneShot = true
		b.contentLength = -1
		return b
	}
	b.rendered = rendered
	b.contentLength = int64(len(rendered))
	return b
}

func renderAll(boundary string, parts []*Part) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, err
	}
	for _, p := range parts {
		if err := p.writeTo(w); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *body) ContentType() *mediatype.MediaType {
	mt, err := mediatype.Parse(fmt.Sprintf("multipart/form-data; boundary=%s", b.boundary))
	if err != nil {
		return nil
	}
	return mt
}

func (b *body) ContentLength() int64 { return b.contentLength }
func (b *body) IsOneShot() bool      { return b.oneShot }
func (b *body) IsDuplex() bool       { return false }

func (b *body) WriteTo(sink io.Writer) error {
	if b.rendered != nil {
		_, err := sink.Write(b.rendered)
		return err
	}
	w := multipart.NewWriter(sink)
	if err := w.SetBoundary(b.boundary); err != nil {
		return err
	}
	for _, p := range b.parts {
		if err := p.writeTo(w); err != nil {
			return err
		}
	}
	return w.Close()
}
