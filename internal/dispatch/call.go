// SPDX-License-Identifier: GPL-3.0-or-later

package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Call wraps one user-submitted unit of work as a [Job]: the function
// run, its target host for admission accounting, and the cancellation and
// result-delivery bookkeeping the [Dispatcher] and caller share (spec.md
// §4.K, §3 "Call").
type Call[T any] struct {
	host string
	run  func(ctx context.Context) (T, error)

	canceled atomic.Bool
	ctx      context.Context
	cancelFn context.CancelFunc

	once   sync.Once
	done   chan struct{}
	result T
	err    error
}

// NewCall builds a [*Call] bound to parent; run receives a context
// derived from parent that Cancel cancels directly, so cancellation is
// visible to run whether or not the call has been admitted yet.
func NewCall[T any](parent context.Context, host string, run func(ctx context.Context) (T, error)) *Call[T] {
	ctx, cancel := context.WithCancel(parent)
	return &Call[T]{host: host, run: run, ctx: ctx, cancelFn: cancel, done: make(chan struct{})}
}

// Host implements [Job].
func (c *Call[T]) Host() string { return c.host }

// IsCanceled implements [Job]. It returns true the instant Cancel is
// called, regardless of whether the underlying I/O has unwound yet
// (spec.md §4.K "Cancellation is observable").
func (c *Call[T]) IsCanceled() bool { return c.canceled.Load() }

// Cancel requests cancellation of the call. If the call is still queued
// it never runs; if running, its run function's context is canceled,
// which must propagate as an I/O failure up through the exchange and
// interceptor chain.
func (c *Call[T]) Cancel() {
	c.canceled.Store(true)
	c.cancelFn()
}

// Execute implements [Job]. The ctx argument is ignored in favor of the
// call's own derived context: cancellation must work identically whether
// the Dispatcher admits the call immediately or after it has been queued.
func (c *Call[T]) Execute(context.Context) {
	c.once.Do(func() {
		defer close(c.done)
		c.result, c.err = c.run(c.ctx)
	})
}

// Wait blocks until Execute has run and returns its outcome. A call
// canceled while still queued never runs Execute; Wait instead returns
// the zero value of T and the call's context error once cancellation
// completes the wait.
func (c *Call[T]) Wait() (T, error) {
	select {
	case <-c.done:
		return c.result, c.err
	default:
	}
	select {
	case <-c.done:
		return c.result, c.err
	case <-c.ctx.Done():
		var zero T
		return zero, c.ctx.Err()
	}
}
