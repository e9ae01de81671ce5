// SPDX-License-Identifier: GPL-3.0-or-later

package errkind

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(ConnectFailed, cause)
	assert.Equal(t, ConnectFailed, err.Kind)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "ConnectFailed")
	assert.Contains(t, err.Error(), "boom")
}

func TestWithSuppressed(t *testing.T) {
	first := New(ConnectFailed, errors.New("route 1 failed"))
	second := errors.New("route 2 failed")
	wrapped := WithSuppressed(first, second)
	assert.True(t, Is(wrapped, ConnectFailed))
	var ke *Error
	assert.True(t, errors.As(wrapped, &ke))
	assert.Equal(t, []error{second}, ke.Suppressed)
}

func TestWithSuppressedNonKindError(t *testing.T) {
	plain := errors.New("plain")
	wrapped := WithSuppressed(plain, errors.New("extra"))
	assert.True(t, Is(wrapped, BadResponse))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Timeout, KindOf(New(Timeout, nil)))
}

func TestDefaultClassifier(t *testing.T) {
	assert.Equal(t, Kind(""), Default.Classify(nil))
	assert.Equal(t, Cancelled, Default.Classify(context.Canceled))
	assert.Equal(t, Timeout, Default.Classify(context.DeadlineExceeded))
}
