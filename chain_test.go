// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChainConfig() *Config {
	return &Config{ConnectTimeout: time.Second, ReadTimeout: 2 * time.Second, WriteTimeout: 3 * time.Second}
}

func TestChainRunsInOrder(t *testing.T) {
	var order []string
	req := mustBuildRequest(t, "https://example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			order = append(order, "first")
			return chain.Proceed(chain.Request())
		}),
		InterceptorFunc(func(chain Chain) (*Response, error) {
			order = append(order, "second")
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}

	c := newRealChain(interceptors, 1, req, nil, testChainConfig())
	resp, err := c.run()

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 200, resp.StatusCode())
}

func TestChainNetworkTierProceedOnce(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			if _, err := chain.Proceed(chain.Request()); err != nil {
				return nil, err
			}
			return chain.Proceed(chain.Request())
		}),
		InterceptorFunc(func(chain Chain) (*Response, error) {
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}

	c := newRealChain(interceptors, 0, req, nil, testChainConfig())
	_, err := c.run()

	require.Error(t, err)
}

func TestChainNetworkTierCannotChangeHostOrPort(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")
	other := mustBuildRequest(t, "https://other.example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			return chain.Proceed(other)
		}),
		InterceptorFunc(func(chain Chain) (*Response, error) {
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}

	c := newRealChain(interceptors, 0, req, nil, testChainConfig())
	_, err := c.run()

	require.Error(t, err)
}

func TestChainApplicationTierCanChangeTimeouts(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			next, err := chain.WithReadTimeout(99 * time.Second)
			require.NoError(t, err)
			assert.Equal(t, 99*time.Second, next.ReadTimeout())
			return next.Proceed(next.Request())
		}),
		InterceptorFunc(func(chain Chain) (*Response, error) {
			assert.Equal(t, 99*time.Second, chain.ReadTimeout())
			return NewResponseBuilder(chain.Request()).StatusCode(200).Build()
		}),
	}

	c := newRealChain(interceptors, 1, req, nil, testChainConfig())
	_, err := c.run()

	require.NoError(t, err)
}

func TestChainNetworkTierCannotChangeTimeouts(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			_, err := chain.WithReadTimeout(99 * time.Second)
			return nil, err
		}),
	}

	c := newRealChain(interceptors, 0, req, nil, testChainConfig())
	_, err := c.run()

	require.Error(t, err)
}

func TestChainProceedAtEndOfListFails(t *testing.T) {
	req := mustBuildRequest(t, "https://example.com/")

	interceptors := []Interceptor{
		InterceptorFunc(func(chain Chain) (*Response, error) {
			return chain.Proceed(chain.Request())
		}),
	}

	c := newRealChain(interceptors, 1, req, nil, testChainConfig())
	_, err := c.run()

	require.Error(t, err)
}
