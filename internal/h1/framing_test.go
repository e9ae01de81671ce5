// SPDX-License-Identifier: GPL-3.0-or-later

package h1

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedRequestBodyWriterFraming(t *testing.T) {
	var buf bytes.Buffer
	w := NewChunkedRequestBodyWriter(&buf)
	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = w.Write([]byte("!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "5\r\nhello\r\n1\r\n!\r\n0\r\n\r\n", buf.String())
}

func TestFixedRequestBodyWriterRejectsOverwrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewFixedRequestBodyWriter(&buf, 3)
	_, err := w.Write([]byte("abcd"))
	assert.Error(t, err)
}

func TestFixedRequestBodyWriterRejectsUnderwrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewFixedRequestBodyWriter(&buf, 3)
	_, err := w.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Error(t, w.Close())
}

func TestChunkedResponseBodyReaderDecodesChunks(t *testing.T) {
	raw := "5\r\nhello\r\n1\r\n!\r\n0\r\n\r\n"
	r := NewChunkedResponseBodyReader(bufio.NewReader(bytes.NewReader([]byte(raw))))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello!", string(out))
}

func TestFixedResponseBodyReaderReadsExactLength(t *testing.T) {
	raw := "hello world, extra trailing junk"
	r := NewFixedResponseBodyReader(bufio.NewReader(bytes.NewReader([]byte(raw))), 11)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(out))
}

func TestZeroResponseBodyReaderIsEmpty(t *testing.T) {
	r := NewZeroResponseBodyReader()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, out)
}
