// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errUpstream = errors.New("upstream down")

func failingCalls(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("feed", 3, 30*time.Second, WithClock(clock))

	failingCalls(cb, 2)
	assert.Equal(t, StateClosed, cb.State())

	failingCalls(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerFastFailsWhileOpen(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("feed", 1, 30*time.Second, WithClock(clock))

	failingCalls(cb, 1)
	require.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not invoke the function")
}

func TestBreakerHalfOpenProbeCloses(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("feed", 1, 30*time.Second, WithClock(clock))

	failingCalls(cb, 1)
	require.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(31 * time.Second)
	err := cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("feed", 1, 30*time.Second, WithClock(clock))

	failingCalls(cb, 1)
	clock.now = clock.now.Add(31 * time.Second)

	err := cb.Execute(func() error { return errUpstream })
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	// The fresh open period starts at the failed probe.
	err = cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("feed", 3, 30*time.Second, WithClock(clock))

	failingCalls(cb, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))

	// Two more failures must not trip a threshold of three.
	failingCalls(cb, 2)
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker("feed", 0, 0)
	assert.Equal(t, 3, cb.threshold)
	assert.Equal(t, 30*time.Second, cb.resetTimeout)
}
