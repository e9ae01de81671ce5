// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelWatchClosesOnCancellation(t *testing.T) {
	closed := make(chan struct{})
	conn := &fakeConn{closeFunc: func() error {
		close(closed)
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	op := NewCancelWatchFunc()
	watched, err := op.Call(ctx, conn)
	require.NoError(t, err)

	cancel()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("connection was not closed after context cancellation")
	}

	assert.NoError(t, watched.Close())
}

func TestCancelWatchUnregistersOnExplicitClose(t *testing.T) {
	calls := 0
	conn := &fakeConn{closeFunc: func() error {
		calls++
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := NewCancelWatchFunc()
	watched, err := op.Call(ctx, conn)
	require.NoError(t, err)

	require.NoError(t, watched.Close())
	assert.Equal(t, 1, calls)
}
