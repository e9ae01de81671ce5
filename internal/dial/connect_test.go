// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/bassosimone/httpcore/slogx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectFunc(t *testing.T) {
	cfg := NewConfig()
	fn := NewConnectFunc(cfg, "tcp", slogx.Default())

	require.NotNil(t, fn)
	assert.Equal(t, "tcp", fn.Network)
	assert.NotNil(t, fn.Dialer)
	assert.NotNil(t, fn.Logger)
	assert.NotNil(t, fn.TimeNow)
	assert.NotNil(t, fn.ErrClassifier)
}

func TestConnectFuncSuccess(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &fakeDialer{
		dialFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return &fakeConn{}, nil
		},
	}
	fn := NewConnectFunc(cfg, "tcp", slogx.Default())

	conn, err := fn.Call(context.Background(), netip.MustParseAddrPort("127.0.0.1:80"))
	require.NoError(t, err)
	require.NotNil(t, conn)
}

func TestConnectFuncFailure(t *testing.T) {
	wantErr := errors.New("connection refused")
	cfg := NewConfig()
	cfg.Dialer = &fakeDialer{
		dialFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, wantErr
		},
	}
	fn := NewConnectFunc(cfg, "tcp", slogx.Default())

	conn, err := fn.Call(context.Background(), netip.MustParseAddrPort("127.0.0.1:80"))
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, conn)
}
