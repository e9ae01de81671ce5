// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassosimone/httpcore/mediatype"
	"github.com/bassosimone/httpcore/slogx"
)

// ResponseBody is the lazily-read response body (spec.md §3 "Response"):
// read-once and close-once, with structured span logging around the
// actual network read, mirroring the teacher's body-wrapper pattern for
// its own HTTP round trips.
type ResponseBody struct {
	contentType   *mediatype.MediaType
	contentLength int64
	source        io.ReadCloser
	logger        slogx.SLogger
	timeNow       func() time.Time

	didRead atomic.Bool

	readOnce sync.Once
	readData []byte
	readErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewResponseBody wraps source, which CallServer opens from the Exchange's
// OpenResponseBodySource. contentLength is -1 if unknown.
func NewResponseBody(mt *mediatype.MediaType, contentLength int64, source io.ReadCloser, logger slogx.SLogger, timeNow func() time.Time) *ResponseBody {
	return &ResponseBody{contentType: mt, contentLength: contentLength, source: source, logger: logger, timeNow: timeNow}
}

// ContentType returns the parsed Content-Type, or nil.
func (b *ResponseBody) ContentType() *mediatype.MediaType { return b.contentType }

// ContentLength returns the declared length, or -1 if unknown in advance.
func (b *ResponseBody) ContentLength() int64 { return b.contentLength }

// Bytes reads the entire body into memory. It may be called at most once;
// a second call returns the same result without reading again.
func (b *ResponseBody) Bytes() ([]byte, error) {
	b.readOnce.Do(func() {
		b.readData, b.readErr = b.readAll()
	})
	if b.readErr != nil {
		return nil, b.readErr
	}
	return b.readData, nil
}

// String reads the entire body and returns it as a string.
func (b *ResponseBody) String() (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (b *ResponseBody) readAll() ([]byte, error) {
	b.didRead.Store(true)
	t0 := b.timeNow()
	b.logger.Info("httpResponseBodyStreamStart", slog.Time("t", t0))
	data, err := io.ReadAll(b.source)
	b.logger.Info(
		"httpResponseBodyStreamDone",
		slog.Any("err", err),
		slog.Int("byteCount", len(data)),
		slog.Time("t0", t0),
		slog.Time("t", b.timeNow()),
	)
	return data, err
}

// Read implements io.Reader for callers that want to stream the body
// rather than buffer it with [ResponseBody.Bytes]. The first call to
// either Read or Bytes determines the access pattern used for the
// lifetime of this body.
func (b *ResponseBody) Read(p []byte) (int, error) {
	b.didRead.Store(true)
	return b.source.Read(p)
}

// Close releases the underlying source. Safe to call more than once; only
// the first call has effect.
func (b *ResponseBody) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.source.Close()
	})
	return b.closeErr
}
