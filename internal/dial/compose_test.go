// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose2(t *testing.T) {
	t.Run("success path", func(t *testing.T) {
		op1 := FuncAdapter[int, string](func(ctx context.Context, n int) (string, error) {
			return "hello", nil
		})
		op2 := FuncAdapter[string, int](func(ctx context.Context, s string) (int, error) {
			return len(s), nil
		})

		composed := Compose2[int, string, int](op1, op2)
		result, err := composed.Call(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, 5, result)
	})

	t.Run("first operation fails", func(t *testing.T) {
		wantErr := errors.New("op1 failed")
		op1 := FuncAdapter[int, string](func(ctx context.Context, n int) (string, error) {
			return "", wantErr
		})
		op2 := FuncAdapter[string, int](func(ctx context.Context, s string) (int, error) {
			t.Fatal("op2 should not be called")
			return 0, nil
		})

		composed := Compose2[int, string, int](op1, op2)
		_, err := composed.Call(context.Background(), 42)
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestComposeChains(t *testing.T) {
	inc := FuncAdapter[int, int](func(ctx context.Context, n int) (int, error) { return n + 1, nil })
	composed := Compose4(inc, inc, inc, inc)
	result, err := composed.Call(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, result)
}

func TestConstFunc(t *testing.T) {
	cf := ConstFunc("constant value")
	result, err := cf.Call(context.Background(), Unit{})
	require.NoError(t, err)
	assert.Equal(t, "constant value", result)
}

func TestApply(t *testing.T) {
	double := FuncAdapter[int, int](func(ctx context.Context, n int) (int, error) { return n * 2, nil })
	applied := Apply(double, 21)
	result, err := applied.Call(context.Background(), Unit{})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestNewEndpointFunc(t *testing.T) {
	fn := NewEndpointFunc(mustAddrPort(t, "127.0.0.1:443"))
	result, err := fn.Call(context.Background(), Unit{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:443", result.String())
}
