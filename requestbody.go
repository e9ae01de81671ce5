// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"bytes"
	"io"

	"github.com/bassosimone/httpcore/mediatype"
)

// RequestBody is the outbound body a [Request] carries (spec.md §4.D/§3).
// Implementations outside this package (e.g. the multipart writer) only
// need to satisfy this interface; [ConnectInterceptor] never type-switches
// on the concrete type.
type RequestBody interface {
	// ContentType returns the media type to send in the Content-Type
	// header, or nil if none.
	ContentType() *mediatype.MediaType

	// ContentLength returns the exact body length, or -1 if it can only
	// be known by writing the body (forces chunked framing on HTTP/1.1).
	ContentLength() int64

	// WriteTo writes the entire body to sink. May be called more than
	// once unless IsOneShot returns true.
	WriteTo(sink io.Writer) error

	// IsOneShot reports whether this body can be written at most once,
	// e.g. because it wraps a streaming source that cannot be rewound
	// (spec.md §4.D: one-shot bodies cannot be replayed by
	// RetryAndFollowUp).
	IsOneShot() bool

	// IsDuplex reports whether the body may still be being written while
	// the response is being read (spec.md §4.I).
	IsDuplex() bool
}

// byteArrayBody is a fully in-memory, replayable [RequestBody], the most
// common case (spec.md §4.D "RequestBody.create(byte[])").
type byteArrayBody struct {
	mt   *mediatype.MediaType
	data []byte
}

// NewByteArrayBody returns a [RequestBody] wrapping data verbatim. mt may
// be nil.
func NewByteArrayBody(mt *mediatype.MediaType, data []byte) RequestBody {
	return &byteArrayBody{mt: mt, data: data}
}

// NewStringBody returns a [RequestBody] wrapping s encoded as UTF-8.
func NewStringBody(mt *mediatype.MediaType, s string) RequestBody {
	return &byteArrayBody{mt: mt, data: []byte(s)}
}

func (b *byteArrayBody) ContentType() *mediatype.MediaType { return b.mt }
func (b *byteArrayBody) ContentLength() int64               { return int64(len(b.data)) }
func (b *byteArrayBody) IsOneShot() bool                     { return false }
func (b *byteArrayBody) IsDuplex() bool                      { return false }

func (b *byteArrayBody) WriteTo(sink io.Writer) error {
	_, err := io.Copy(sink, bytes.NewReader(b.data))
	return err
}

// streamBody wraps an io.Reader that may only be consumed once, e.g. an
// os.File or a network pipe (spec.md §4.D "RequestBody wrapping a
// Source"). RetryAndFollowUp must not attempt to replay it.
type streamBody struct {
	mt            *mediatype.MediaType
	contentLength int64
	open          func() (io.ReadCloser, error)
	oneShot       bool
}

// NewStreamBody returns a [RequestBody] that calls open each time WriteTo
// runs, unless oneShot is true, in which case WriteTo may be called at
// most once. contentLength may be -1 if unknown in advance.
func NewStreamBody(mt *mediatype.MediaType, contentLength int64, oneShot bool, open func() (io.ReadCloser, error)) RequestBody {
	return &streamBody{mt: mt, contentLength: contentLength, open: open, oneShot: oneShot}
}

func (s *streamBody) ContentType() *mediatype.MediaType { return s.mt }
func (s *streamBody) ContentLength() int64               { return s.contentLength }
func (s *streamBody) IsOneShot() bool                     { return s.oneShot }
func (s *streamBody) IsDuplex() bool                      { return false }

func (s *streamBody) WriteTo(sink io.Writer) error {
	rc, err := s.open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(sink, rc)
	return err
}
