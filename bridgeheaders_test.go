// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/httpcore/slogx"
)

func TestHostHeaderValueDefaultPort(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	assert.Equal(t, "example.com", hostHeaderValue(req))
}

func TestHostHeaderValueNonDefaultPort(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com:8443/")
	assert.Equal(t, "example.com:8443", hostHeaderValue(req))
}

func TestHeaderHasToken(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	b := req.NewBuilder()
	_, err := b.SetHeader("Content-Encoding", "gzip")
	require.NoError(t, err)
	built, err := b.Build()
	require.NoError(t, err)

	assert.True(t, headerHasToken(built.Header(), "Content-Encoding", "gzip"))
	assert.False(t, headerHasToken(built.Header(), "Content-Encoding", "br"))
	assert.False(t, headerHasToken(built.Header(), "Missing", "gzip"))
}

func TestStripTransportHeaders(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	b := req.NewBuilder()
	_, err := b.SetHeader("Content-Encoding", "gzip")
	require.NoError(t, err)
	_, err = b.SetHeader("Content-Length", "10")
	require.NoError(t, err)
	_, err = b.SetHeader("X-Kept", "yes")
	require.NoError(t, err)
	built, err := b.Build()
	require.NoError(t, err)

	stripped := stripTransportHeaders(built.Header())

	_, ok := stripped.Get("Content-Encoding")
	assert.False(t, ok)
	_, ok = stripped.Get("Content-Length")
	assert.False(t, ok)
	v, ok := stripped.Get("X-Kept")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}

func TestBridgeHeadersSetsHostAndConnection(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	i := &bridgeHeaders{cfg: &Config{UserAgent: "httpcore-test"}}

	var seen *Request
	interceptors := []Interceptor{
		i,
		InterceptorFunc(func(chain Chain) (*Response, error) {
			seen = chain.Request()
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}
	c := newRealChain(interceptors, 1, req, nil, testChainConfig())
	resp, err := c.run()

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	require.NotNil(t, seen)
	v, ok := seen.Header().Get("Host")
	assert.True(t, ok)
	assert.Equal(t, "example.com", v)
	v, ok = seen.Header().Get("Connection")
	assert.True(t, ok)
	assert.Equal(t, "Keep-Alive", v)
	v, ok = seen.Header().Get("Accept-Encoding")
	assert.True(t, ok)
	assert.Equal(t, "gzip", v)
	v, ok = seen.Header().Get("User-Agent")
	assert.True(t, ok)
	assert.Equal(t, "httpcore-test", v)
}

func TestBridgeHeadersDecompressesTransparentGzip(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	i := &bridgeHeaders{cfg: &Config{UserAgent: "httpcore-test", Logger: slogx.Default(), TimeNow: time.Now}}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("hello, gzip"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	compressed := buf.Bytes()

	interceptors := []Interceptor{
		i,
		InterceptorFunc(func(chain Chain) (*Response, error) {
			networkReq := chain.Request()
			b := networkReq.NewBuilder()
			_, _ = b.SetHeader("Content-Encoding", "gzip")
			withHeader, err := b.Build()
			require.NoError(t, err)
			body := NewResponseBody(nil, int64(len(compressed)), &closeTrackingReader{Reader: bytes.NewReader(compressed)}, slogx.Default(), time.Now)
			return NewResponseBuilder(networkReq).StatusCode(200).Header(withHeader.Header()).Body(body).Build()
		}),
	}
	c := newRealChain(interceptors, 1, req, nil, testChainConfig())
	resp, err := c.run()

	require.NoError(t, err)
	data, err := resp.Body().Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello, gzip", string(data))
	_, ok := resp.Header().Get("Content-Encoding")
	assert.False(t, ok)
}
