// SPDX-License-Identifier: GPL-3.0-or-later

package multipart

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A single bare part with no extra headers serializes to the exact bytes
// and length spec.md §8 scenario S4 specifies.
func TestNewBodySingleBarePart(t *testing.T) {
	b := NewBody("123", NewPart(nil, []byte("Hello, World!")))

	require.EqualValues(t, 33, b.ContentLength())
	assert.False(t, b.IsOneShot())
	assert.False(t, b.IsDuplex())

	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf))

	assert.Equal(t, "--123\r\n\r\nHello, World!\r\n--123--\r\n", buf.String())
	assert.EqualValues(t, buf.Len(), b.ContentLength())
}

// ContentType renders the boundary parameter.
func TestBodyContentType(t *testing.T) {
	b := NewBody("abc", NewPart(nil, []byte("x")))

	mt := b.ContentType()

	require.NotNil(t, mt)
	assert.Equal(t, "multipart", mt.Type())
	assert.Equal(t, "form-data", mt.Subtype())
	boundary, ok := mt.Parameter("boundary")
	assert.True(t, ok)
	assert.Equal(t, "abc", boundary)
}

// An in-memory body may be written more than once, reproducing the same bytes.
func TestBodyReplayable(t *testing.T) {
	b := NewBody("xyz", NewPart(nil, []byte("one")), NewPart(nil, []byte("two")))

	var first, second bytes.Buffer
	require.NoError(t, b.WriteTo(&first))
	require.NoError(t, b.WriteTo(&second))

	assert.Equal(t, first.String(), second.String())
	assert.False(t, b.IsOneShot())
}

// A stream part forces the whole body one-shot with an unknown length.
func TestBodyWithStreamPart(t *testing.T) {
	opened := 0
	open := func() (io.ReadCloser, error) {
		opened++
		return io.NopCloser(bytes.NewReader([]byte("streamed"))), nil
	}
	b := NewBody("s", NewStreamPart(nil, open))

	assert.True(t, b.IsOneShot())
	assert.EqualValues(t, -1, b.ContentLength())

	var buf bytes.Buffer
	require.NoError(t, b.WriteTo(&buf))
	assert.Contains(t, buf.String(), "streamed")
	assert.Equal(t, 1, opened)
}

// A stream part's open error propagates from WriteTo.
func TestBodyStreamPartOpenError(t *testing.T) {
	wantErr := errors.New("open failed")
	b := NewBody("s", NewStreamPart(nil, func() (io.ReadCloser, error) {
		return nil, wantErr
	}))

	err := b.WriteTo(&bytes.Buffer{})

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
