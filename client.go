// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"sync"

	"github.com/bassosimone/httpcore/internal/dispatch"
	"github.com/bassosimone/httpcore/internal/h1"
	"github.com/bassosimone/httpcore/internal/h2"
	"github.com/bassosimone/httpcore/internal/pool"
)

// Client is the entry point for making calls (spec.md §3 "Client"): it
// owns the shared connection pool and dispatcher, and builds the fixed
// five-interceptor chain (spec.md §4.J) around any user-supplied
// application and network interceptors.
type Client struct {
	cfg        *Config
	pool       *pool.Pool
	dispatcher *dispatch.Dispatcher

	applicationInterceptors []Interceptor
	networkInterceptors     []Interceptor

	interceptors      []Interceptor
	networkTierStart  int

	codecMu    sync.Mutex
	h1Codecs   map[*pool.Connection]*h1.Codec
	h2Sessions map[*pool.Connection]*h2.Session
}

// NewClient builds a [*Client] from cfg, defaulting cfg to [NewConfig] if
// nil. applicationInterceptors run before RetryAndFollowUp;
// networkInterceptors run after ConnectInterceptor and before CallServer
// (spec.md §4.J "user-application interceptors" / "user-network
// interceptors").
func NewClient(cfg *Config, applicationInterceptors, networkInterceptors []Interceptor) *Client {
	if cfg == nil {
		cfg = NewConfig()
	}
	c := &Client{
		cfg:                     cfg,
		pool:                    pool.New(cfg.PoolConfig, cfg.Logger),
		dispatcher:              dispatch.New(cfg.DispatchConfig, cfg.Logger),
		applicationInterceptors: applicationInterceptors,
		networkInterceptors:     networkInterceptors,
		h1Codecs:                make(map[*pool.Connection]*h1.Codec),
		h2Sessions:              make(map[*pool.Connection]*h2.Session),
	}
	c.buildChain()
	return c
}

// buildChain assembles the fixed interceptor order (spec.md §3 control
// flow): application interceptors, RetryAndFollowUp, BridgeHeaders,
// Cache, ConnectInterceptor, network interceptors, CallServer.
func (c *Client) buildChain() {
	c.interceptors = append(c.interceptors, c.applicationInterceptors...)
	c.interceptors = append(c.interceptors,
		&retryAndFollowUp{cfg: c.cfg},
		&bridgeHeaders{cfg: c.cfg},
		&cache{cfg: c.cfg},
	)
	c.networkTierStart = len(c.interceptors)
	c.interceptors = append(c.interceptors, &connectInterceptor{client: c})
	c.interceptors = append(c.interceptors, c.networkInterceptors...)
	c.interceptors = append(c.interceptors, &callServer{cfg: c.cfg})
}

// NewCall returns a [*Call] ready to [Call.Execute] or [Call.Enqueue].
func (c *Client) NewCall(request *Request) *Call {
	return newCall(c, request)
}

// Close stops the Client's connection pool eviction task. Live exchanges
// are unaffected; new acquisitions after Close still work, they simply
// stop being evicted in the background.
func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) registerH1(conn *pool.Connection, codec *h1.Codec) {
	c.codecMu.Lock()
	defer c.codecMu.Unlock()
	c.h1Codecs[conn] = codec
}

func (c *Client) registerH2(conn *pool.Connection, session *h2.Session) {
	c.codecMu.Lock()
	defer c.codecMu.Unlock()
	c.h2Sessions[conn] = session
}

func (c *Client) lookupH1(conn *pool.Connection) (*h1.Codec, bool) {
	c.codecMu.Lock()
	defer c.codecMu.Unlock()
	codec, ok := c.h1Codecs[conn]
	return codec, ok
}

func (c *Client) lookupH2(conn *pool.Connection) (*h2.Session, bool) {
	c.codecMu.Lock()
	defer c.codecMu.Unlock()
	session, ok := c.h2Sessions[conn]
	return session, ok
}
