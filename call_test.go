// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortCircuit returns resp/err without ever calling chain.Proceed,
// so a Call built around it never touches the network tier.
func shortCircuit(resp *Response, err error) Interceptor {
	return InterceptorFunc(func(chain Chain) (*Response, error) { return resp, err })
}

func TestCallExecuteSuccess(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	want, err := NewResponseBuilder(req).StatusCode(200).Build()
	require.NoError(t, err)

	c := NewClient(nil, []Interceptor{shortCircuit(want, nil)}, nil)
	call := c.NewCall(req)

	got, err := call.Execute()

	require.NoError(t, err)
	assert.Equal(t, want.StatusCode(), got.StatusCode())
}

func TestCallExecutePropagatesError(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	wantErr := errors.New("boom")

	c := NewClient(nil, []Interceptor{shortCircuit(nil, wantErr)}, nil)
	call := c.NewCall(req)

	_, err := call.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestCallEnqueueInvokesCallback(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	want, err := NewResponseBuilder(req).StatusCode(204).Build()
	require.NoError(t, err)

	c := NewClient(nil, []Interceptor{shortCircuit(want, nil)}, nil)
	call := c.NewCall(req)

	done := make(chan struct{})
	var gotResp *Response
	var gotErr error
	call.Enqueue(func(resp *Response, err error) {
		gotResp, gotErr = resp, err
		close(done)
	})
	<-done

	require.NoError(t, gotErr)
	assert.Equal(t, 204, gotResp.StatusCode())
}

func TestCallCancelMarksCanceled(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	c := NewClient(nil, []Interceptor{shortCircuit(nil, nil)}, nil)
	call := c.NewCall(req)

	assert.False(t, call.IsCanceled())
	call.Cancel()
	assert.True(t, call.IsCanceled())
}

func TestCallExchangeSideChannel(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	c := NewClient(nil, nil, nil)
	call := c.NewCall(req)

	_, ok := call.currentExchange()
	assert.False(t, ok)

	call.setExchange(nil, nil, nil)
	_, ok = call.currentExchange()
	assert.False(t, ok)

	call.clearExchange()
	_, ok = call.currentExchange()
	assert.False(t, ok)
}
