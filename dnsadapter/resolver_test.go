// SPDX-License-Identifier: GPL-3.0-or-later

package dnsadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/slogx"
)

// NewConfig populates every field with a usable default.
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Servers)
	assert.Greater(t, cfg.Timeout, time.Duration(0))
	assert.NotNil(t, cfg.TimeNow)
}

// New defaults a nil Config and a nil logger rather than panicking.
func TestNewDefaultsNilArgs(t *testing.T) {
	r := New(nil, nil)

	require.NotNil(t, r)
	assert.NotNil(t, r.cfg)
	assert.NotNil(t, r.client)
	assert.NotNil(t, r.logger)
}

// Lookup wraps a connection failure as errkind.UnknownHost rather than
// returning the raw dial error.
func TestLookupConnectionRefused(t *testing.T) {
	cfg := &Config{
		Servers: []string{"127.0.0.1:1"},
		Timeout: 200 * time.Millisecond,
		TimeNow: time.Now,
	}
	r := New(cfg, slogx.Default())

	addrs, err := r.Lookup("example.com")

	require.Error(t, err)
	assert.Nil(t, addrs)
	assert.True(t, errkind.Is(err, errkind.UnknownHost))
}

// Lookup falls through to the next server once the first fails.
func TestLookupFallsThroughServers(t *testing.T) {
	cfg := &Config{
		Servers: []string{"127.0.0.1:1", "127.0.0.1:2"},
		Timeout: 200 * time.Millisecond,
		TimeNow: time.Now,
	}
	r := New(cfg, slogx.Default())

	_, err := r.Lookup("example.com")

	require.Error(t, err)
}
