package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GymTree/pkg/logger"
)

func init() {
	logger.Init()
}

var errStorage = errors.New("storage unavailable")

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Call(context.Background(), func() error { return errStorage })
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	failN(cb, 2)
	require.Equal(t, StateClosed, cb.GetState())

	failN(cb, 1)
	require.Equal(t, StateOpen, cb.GetState())

	// 熔断期间请求被直接拒绝，不触达底层操作
	called := false
	err := cb.Call(context.Background(), func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	failN(cb, 2)
	require.NoError(t, cb.Call(context.Background(), func() error { return nil }))

	failN(cb, 2)
	require.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 20*time.Millisecond)

	failN(cb, 2)
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Call(context.Background(), func() error { return nil }))
	require.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 20*time.Millisecond)

	failN(cb, 2)
	time.Sleep(30 * time.Millisecond)

	failN(cb, 1)
	require.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_PassesThroughOperationError(t *testing.T) {
	cb := NewCircuitBreaker("test", 5, time.Minute)

	err := cb.Call(context.Background(), func() error { return errStorage })
	require.ErrorIs(t, err, errStorage)
}
