package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/library-app/pkg/breaker"
)

func TestBreaker_OpensAndRecovers(t *testing.T) {
	failing := func() error { return errors.New("upstream down") }
	ok := func() error { return nil }

	cb := breaker.New(10, 50*time.Millisecond, 0.5, 3)

	for i := 0; i < 10; i++ {
		_ = cb.Call(failing)
	}

	// window is saturated with failures, further calls short-circuit
	err := cb.Call(ok)
	require.ErrorIs(t, err, breaker.ErrOpen)

	time.Sleep(60 * time.Millisecond)

	// half-open: successful probes close the breaker again
	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.NoError(t, cb.Call(ok))
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	failing := func() error { return errors.New("upstream down") }

	cb := breaker.New(4, 50*time.Millisecond, 0.5, 2)
	for i := 0; i < 4; i++ {
		_ = cb.Call(failing)
	}
	require.ErrorIs(t, cb.Call(failing), breaker.ErrOpen)

	time.Sleep(60 * time.Millisecond)

	// the probe fails, breaker snaps back open
	require.EqualError(t, cb.Call(failing), "upstream down")
	require.ErrorIs(t, cb.Call(failing), breaker.ErrOpen)
}

func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := breaker.New(10, time.Second, 0.3, 2)
	for i := 0; i < 50; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}
}
