// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bassosimone/httpcore/internal/route"
	"github.com/bassosimone/httpcore/slogx"
)

// Config configures a [*Pool]'s eviction policy (spec.md §4.F).
type Config struct {
	// MaxIdleConnections bounds how many fully-idle connections a single
	// Pool keeps alive across all Address buckets.
	MaxIdleConnections int

	// KeepAliveDuration bounds how long a fully-idle connection may sit
	// before it becomes eligible for eviction.
	KeepAliveDuration time.Duration

	// TimeNow returns the current time (overridable for tests).
	TimeNow func() time.Time
}

// NewConfig returns a [*Config] with OkHttp-compatible defaults: 5 idle
// connections, 5 minutes keep-alive.
func NewConfig() *Config {
	return &Config{
		MaxIdleConnections: 5,
		KeepAliveDuration:  5 * time.Minute,
		TimeNow:            time.Now,
	}
}

// Pool is the one globally shared connection pool (spec.md §5 "Shared
// resources"), keyed by [route.Address], guarded by a single mutex.
type Pool struct {
	cfg    *Config
	logger slogx.SLogger

	mu      sync.Mutex
	buckets map[string][]*Connection

	evictOnce sync.Once
	stopEvict chan struct{}
}

// New returns a new, empty [*Pool].
func New(cfg *Config, logger slogx.SLogger) *Pool {
	return &Pool{
		cfg:       cfg,
		logger:    logger,
		buckets:   make(map[string][]*Connection),
		stopEvict: make(chan struct{}),
	}
}

// Acquire iterates the Address's bucket for an eligible connection per
// spec.md §4.F: not noNewExchanges, under its multiplex limit, and either
// its Address equals addr or it is an HTTP/2 connection whose certificate
// covers host. Only the bucket for addr's key is searched, so a connection
// to a different host is never reused. It returns the first eligible
// connection, or (nil, false) if the caller must plan and establish a new
// route.
func (p *Pool) Acquire(addr *route.Address, host string) (*Connection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range p.buckets[addr.Key()] {
		if c.NoNewExchanges() {
			continue
		}
		if c.Route.Address.Equal(addr) || c.coalesces(host, c.Route) {
			if c.tryAcquire() {
				return c, true
			}
		}
	}
	return nil, false
}

// Put registers a newly-established connection in its Address bucket.
func (p *Pool) Put(addr *route.Address, c *Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets[addr.Key()] = append(p.buckets[addr.Key()], c)
	p.evictOnce.Do(func() { go p.evictLoop() })
}

// Release releases one allocation on c.
func (p *Pool) Release(c *Connection) {
	c.Release(p.cfg.TimeNow())
}

// Close stops the eviction background task. Safe to call multiple times.
func (p *Pool) Close() {
	select {
	case <-p.stopEvict:
	default:
		close(p.stopEvict)
	}
}

// evictLoop is the single periodic task per pool that closes the
// longest-idle connection once it exceeds KeepAliveDuration, or once the
// pool holds more than MaxIdleConnections fully-idle connections
// (spec.md §4.F "Eviction"). It reschedules itself for the remaining time
// until the next eviction is due, or waits KeepAliveDuration when nothing
// is idle.
func (p *Pool) evictLoop() {
	for {
		wait, closed := p.evictOnceStep()
		if closed {
			p.logEviction()
		}
		if wait <= 0 {
			wait = p.cfg.KeepAliveDuration
		}
		select {
		case <-p.stopEvict:
			return
		case <-time.After(wait):
		}
	}
}

func (p *Pool) evictOnceStep() (wait time.Duration, closedOne bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.cfg.TimeNow()
	var longestConn *Connection
	var longestBucket string
	var longestIdx int
	var longestIdle time.Duration
	idleCount := 0

	for key, conns := range p.buckets {
		for i, c := range conns {
			idle, isIdle := c.idleFor(now)
			if !isIdle {
				continue
			}
			idleCount++
			if longestConn == nil || idle > longestIdle {
				longestConn, longestIdle, longestBucket, longestIdx = c, idle, key, i
			}
		}
	}

	if longestConn == nil {
		return p.cfg.KeepAliveDuration, false
	}
	if longestIdle >= p.cfg.KeepAliveDuration || idleCount > p.cfg.MaxIdleConnections {
		p.removeLocked(longestBucket, longestIdx)
		longestConn.Conn.Close()
		return 0, true
	}
	return p.cfg.KeepAliveDuration - longestIdle, false
}

func (p *Pool) removeLocked(bucket string, idx int) {
	conns := p.buckets[bucket]
	conns = append(conns[:idx], conns[idx+1:]...)
	if len(conns) == 0 {
		delete(p.buckets, bucket)
	} else {
		p.buckets[bucket] = conns
	}
}

func (p *Pool) logEviction() {
	p.logger.Info("poolEvict", slog.Time("t", p.cfg.TimeNow()))
}
