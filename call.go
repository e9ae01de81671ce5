// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"context"
	"sync"

	"github.com/bassosimone/httpcore/internal/dispatch"
	"github.com/bassosimone/httpcore/internal/exchange"
	"github.com/bassosimone/httpcore/internal/pool"
	"github.com/bassosimone/httpcore/internal/route"
)

// Call represents one in-flight (or already-executed) request/response
// cycle (spec.md §3 "Call"): execute it synchronously with [Call.Execute]
// or asynchronously with [Call.Enqueue], at most once either way. It
// carries the span ID and [EventListener] its capability ports observe.
type Call struct {
	client   *Client
	request  *Request
	spanID   string
	listener EventListener
	inner    *dispatch.Call[*Response]

	ctx context.Context

	mu       sync.Mutex
	exchange exchange.Exchange
	route    *route.Route
	conn     *pool.Connection
}

func newCall(client *Client, request *Request) *Call {
	c := &Call{client: client, request: request, spanID: NewSpanID()}
	c.listener = client.cfg.EventListenerFactory(c)
	c.inner = dispatch.NewCall(context.Background(), request.URL().Host(), c.run)
	return c
}

// SpanID identifies this call across its EventListener hooks and
// structured-log events.
func (c *Call) SpanID() string { return c.spanID }

// Request returns the call's original request.
func (c *Call) Request() *Request { return c.request }

func (c *Call) run(ctx context.Context) (*Response, error) {
	c.ctx = ctx
	c.listener.CallStart(c)
	chain := newRealChain(c.client.interceptors, c.client.networkTierStart, c.request, c, c.client.cfg)
	resp, err := chain.run()
	if err != nil {
		c.listener.CallFailed(c, err)
	} else {
		c.listener.CallEnd(c)
	}
	return resp, err
}

// Execute runs the call synchronously on the caller's goroutine, blocking
// on the dispatcher's admission gate (spec.md §4.K).
func (c *Call) Execute() (*Response, error) {
	c.client.dispatcher.ExecuteSync(context.Background(), c.inner)
	return c.inner.Wait()
}

// Enqueue submits the call to the shared asynchronous pool and invokes
// callback with its outcome once it completes (spec.md §4.K).
func (c *Call) Enqueue(callback func(*Response, error)) {
	c.client.dispatcher.EnqueueAsync(c.inner)
	go func() {
		resp, err := c.inner.Wait()
		callback(resp, err)
	}()
}

// Cancel requests cancellation; see [dispatch.Call.Cancel].
func (c *Call) Cancel() { c.inner.Cancel() }

// IsCanceled reports whether Cancel has been called.
func (c *Call) IsCanceled() bool { return c.inner.IsCanceled() }

// setExchange stashes the Exchange ConnectInterceptor bound for the
// current proceed(), so CallServer can find it without a chain-level
// side-channel.
func (c *Call) setExchange(ex exchange.Exchange, rt *route.Route, conn *pool.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchange, c.route, c.conn = ex, rt, conn
}

func (c *Call) clearExchange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchange = nil
}

func (c *Call) currentExchange() (exchange.Exchange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchange, c.exchange != nil
}
