// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import (
	"context"
	"net"
)

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc arranges for the connection to be closed when the context
// is done (cancelled or deadline exceeded). This gives a blocking exchange
// responsive cleanup on cancellation rather than waiting for a
// per-operation timeout; no other package of this module wraps its
// connections with it.
//
// The returned connection wraps the input connection. Closing the returned
// connection unregisters the context watcher and closes the underlying
// connection, so no goroutine leaks even if the context is never cancelled.
type CancelWatchFunc struct{}

var _ Func[net.Conn, net.Conn] = &CancelWatchFunc{}

// Call registers a context watcher using [context.AfterFunc] that closes
// the connection when the context is done.
func (op *CancelWatchFunc) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return &cancelWatchedConn{Conn: conn, stop: stop}, nil
}

// cancelWatchedConn wraps a [net.Conn] with a context cancellation watcher.
type cancelWatchedConn struct {
	net.Conn
	stop func() bool
}

// Close unregisters the context watcher and closes the underlying connection,
// unless the watcher has already closed it, in which case Close returns nil.
func (c *cancelWatchedConn) Close() error {
	if !c.stop() {
		// the watcher already closed the connection
		return nil
	}
	return c.Conn.Close()
}
