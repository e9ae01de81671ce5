// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"crypto/tls"
	"time"

	"github.com/bassosimone/httpcore/internal/dial"
	"github.com/bassosimone/httpcore/internal/dispatch"
	"github.com/bassosimone/httpcore/internal/pool"
	"github.com/bassosimone/httpcore/slogx"
)

// Config holds a [*Client]'s dependencies, generalizing the teacher's
// single flat config into the three sub-configs the dial, pool, and
// dispatch layers each already define, plus the capability ports of
// spec.md §6. All fields have defaults set by [NewConfig].
type Config struct {
	// DialConfig configures TCP connect and TLS handshake behavior.
	DialConfig *dial.Config

	// PoolConfig configures idle-connection keep-alive and eviction.
	PoolConfig *pool.Config

	// DispatchConfig configures the maxRequests/maxRequestsPerHost
	// admission limits.
	DispatchConfig *dispatch.Config

	// TLSConfig is the base [*tls.Config] cloned for every HTTPS Address,
	// with ServerName set to the request host; its NextProtos are offered
	// as they are. The default from [NewConfig] offers ["h2", "http/1.1"].
	TLSConfig *tls.Config

	// FollowRedirects enables RetryAndFollowUp's 3xx handling.
	FollowRedirects bool

	// FollowSslRedirects allows a redirect to cross the http<->https
	// scheme boundary.
	FollowSslRedirects bool

	// MaxFollowUps caps the combined number of redirects and retries for
	// one Call (spec.md §4.J: "cap total follow-ups at 20").
	MaxFollowUps int

	// ConnectTimeout, ReadTimeout, and WriteTimeout seed each Call's
	// initial Chain time budget (spec.md §4.I "layered timeouts");
	// application interceptors may override them per call via the
	// chain's with-timeout methods.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// Dns is the default [Dns] capability; nil means literal addresses
	// only (spec.md §6).
	Dns Dns

	// ProxySelector is the default [ProxySelector] capability.
	ProxySelector ProxySelector

	// Authenticator responds to 401/407 challenges; nil means never retry.
	Authenticator Authenticator

	// CookieJar persists cookies across redirects and calls.
	CookieJar CookieJar

	// CacheStore backs the Cache interceptor; nil disables caching.
	CacheStore CacheStore

	// HostnameVerifier verifies the TLS peer against the requested host.
	HostnameVerifier HostnameVerifier

	// EventListenerFactory builds a per-call [EventListener]; defaults to
	// one that always returns [NoopEventListener].
	EventListenerFactory func(*Call) EventListener

	// UserAgent is sent by BridgeHeaders unless the request already set one.
	UserAgent string

	// TimeNow returns the current time.
	TimeNow func() time.Time

	// Logger receives structured events for every layer.
	Logger slogx.SLogger
}

// NewConfig returns a [*Config] with OkHttp-compatible defaults.
func NewConfig() *Config {
	return &Config{
		DialConfig:         dial.NewConfig(),
		PoolConfig:         pool.NewConfig(),
		DispatchConfig:     dispatch.NewConfig(),
		TLSConfig:          &tls.Config{NextProtos: []string{"h2", "http/1.1"}},
		FollowRedirects:    true,
		FollowSslRedirects: false,
		MaxFollowUps:       20,
		ConnectTimeout:     10 * time.Second,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		EventListenerFactory: func(*Call) EventListener {
			return NoopEventListener{}
		},
		UserAgent: "httpcore/1.0",
		TimeNow:   time.Now,
		Logger:    slogx.Default(),
	}
}
