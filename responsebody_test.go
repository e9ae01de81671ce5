// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/httpcore/slogx"
)

type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestResponseBodyBytesReadsOnce(t *testing.T) {
	src := &closeTrackingReader{Reader: bytes.NewReader([]byte("payload"))}
	body := NewResponseBody(nil, 7, src, slogx.Default(), time.Now)

	data, err := body.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	data2, err := body.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestResponseBodyString(t *testing.T) {
	src := &closeTrackingReader{Reader: bytes.NewReader([]byte("text"))}
	body := NewResponseBody(nil, 4, src, slogx.Default(), time.Now)

	s, err := body.String()

	require.NoError(t, err)
	assert.Equal(t, "text", s)
}

func TestResponseBodyReadError(t *testing.T) {
	wantErr := errors.New("boom")
	body := NewResponseBody(nil, -1, io.NopCloser(errReader{err: wantErr}), slogx.Default(), time.Now)

	_, err := body.Bytes()

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestResponseBodyCloseIdempotent(t *testing.T) {
	src := &closeTrackingReader{Reader: bytes.NewReader(nil)}
	body := NewResponseBody(nil, 0, src, slogx.Default(), time.Now)

	require.NoError(t, body.Close())
	require.NoError(t, body.Close())
	assert.True(t, src.closed)
}

func TestResponseBodyContentLengthAndType(t *testing.T) {
	src := &closeTrackingReader{Reader: bytes.NewReader(nil)}
	body := NewResponseBody(nil, 42, src, slogx.Default(), time.Now)

	assert.EqualValues(t, 42, body.ContentLength())
	assert.Nil(t, body.ContentType())
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
