// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaultsConfig(t *testing.T) {
	c := NewClient(nil, nil, nil)

	require.NotNil(t, c)
	assert.NotNil(t, c.cfg)
	assert.NotNil(t, c.pool)
	assert.NotNil(t, c.dispatcher)
}

func TestBuildChainFixedOrder(t *testing.T) {
	app := InterceptorFunc(func(chain Chain) (*Response, error) { return nil, nil })
	network := InterceptorFunc(func(chain Chain) (*Response, error) { return nil, nil })

	c := NewClient(nil, []Interceptor{app}, []Interceptor{network})

	// application interceptor, RetryAndFollowUp, BridgeHeaders, Cache,
	// ConnectInterceptor, network interceptor, CallServer (spec.md §3).
	require.Len(t, c.interceptors, 7)
	assert.IsType(t, InterceptorFunc(nil), c.interceptors[0])
	assert.IsType(t, &retryAndFollowUp{}, c.interceptors[1])
	assert.IsType(t, &bridgeHeaders{}, c.interceptors[2])
	assert.IsType(t, &cache{}, c.interceptors[3])
	assert.IsType(t, &connectInterceptor{}, c.interceptors[4])
	assert.IsType(t, InterceptorFunc(nil), c.interceptors[5])
	assert.IsType(t, &callServer{}, c.interceptors[6])
	assert.Equal(t, 4, c.networkTierStart)
}

func TestNewCallReturnsBoundCall(t *testing.T) {
	c := NewClient(nil, nil, nil)
	req := mustBuildRequest(t, "https://example.com/")

	call := c.NewCall(req)

	require.NotNil(t, call)
	assert.Equal(t, req, call.Request())
	assert.NotEmpty(t, call.SpanID())
}

func TestClientClose(t *testing.T) {
	c := NewClient(nil, nil, nil)

	assert.NotPanics(t, func() { c.Close() })
}
