package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDeliveryDown = errors.New("webhook unreachable")

func testBreaker(openTimeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      openTimeout,
	})
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errDeliveryDown })
		require.ErrorIs(t, err, errDeliveryDown)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open breaker refuses the call without invoking the function.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	cb := testBreaker(time.Minute)

	require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	require.Error(t, cb.Execute(func() error { return errDeliveryDown }))

	assert.Equal(t, CBClosed, cb.State())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := testBreaker(time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two probe successes close the breaker again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	cb := testBreaker(time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	}
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errDeliveryDown }))
	assert.Equal(t, CBOpen, cb.State())
}

func TestBreakerConfigDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	assert.Equal(t, 5, cb.cfg.FailureThreshold)
	assert.Equal(t, 2, cb.cfg.SuccessThreshold)
	assert.Equal(t, time.Minute, cb.cfg.OpenTimeout)
}
