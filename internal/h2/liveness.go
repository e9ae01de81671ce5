// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"context"
	"crypto/rand"

	"golang.org/x/sync/singleflight"
)

// livenessGroup deduplicates concurrent liveness pings against the same
// session: concurrent [Session.CheckLiveness] callers all await a single
// PING round-trip instead of each sending their own. Nothing in this
// module calls CheckLiveness before dispatching an exchange.
var livenessGroup singleflight.Group

// CheckLiveness sends a PING and blocks until the matching PING ACK is
// observed by the read loop, or ctx is done. Concurrent callers for the
// same Session share one in-flight ping.
func (s *Session) CheckLiveness(ctx context.Context) error {
	key := s.livenessKey()
	_, err, _ := livenessGroup.Do(key, func() (any, error) {
		return nil, s.pingAndWait(ctx)
	})
	return err
}

func (s *Session) livenessKey() string {
	return s.conn.RemoteAddr().String() + "->" + s.conn.LocalAddr().String()
}

func (s *Session) pingAndWait(ctx context.Context) error {
	var payload [8]byte
	rand.Read(payload[:])

	ch := make(chan struct{})
	s.registerPingWaiter(payload, ch)
	defer s.unregisterPingWaiter(payload)

	if err := s.Ping(payload); err != nil {
		return err
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return errkindStreamReset()
	}
}

func (s *Session) registerPingWaiter(payload [8]byte, ch chan struct{}) {
	s.mu.Lock()
	if s.pingWaiters == nil {
		s.pingWaiters = make(map[[8]byte]chan struct{})
	}
	s.pingWaiters[payload] = ch
	s.mu.Unlock()
}

func (s *Session) unregisterPingWaiter(payload [8]byte) {
	s.mu.Lock()
	delete(s.pingWaiters, payload)
	s.mu.Unlock()
}

// notifyPingAck wakes any waiter registered for this PING ACK payload.
func (s *Session) notifyPingAck(payload [8]byte) {
	s.mu.Lock()
	ch, ok := s.pingWaiters[payload]
	s.mu.Unlock()
	if ok {
		close(ch)
	}
}
