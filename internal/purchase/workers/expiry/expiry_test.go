package expiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sweeperFunc func(ctx context.Context) (int, error)

func (f sweeperFunc) ExpireStale(ctx context.Context) (int, error) { return f(ctx) }

func TestNew_RequiresSweeper(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestRunOnce_ReportsCount(t *testing.T) {
	svc, err := New(sweeperFunc(func(context.Context) (int, error) { return 3, nil }))
	require.NoError(t, err)

	n, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRunOnce_WrapsError(t *testing.T) {
	boom := errors.New("store down")
	svc, err := New(sweeperFunc(func(context.Context) (int, error) { return 0, boom }))
	require.NoError(t, err)

	_, err = svc.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestStart_SweepsUntilCancelled(t *testing.T) {
	swept := make(chan struct{}, 1)
	svc, err := New(
		sweeperFunc(func(context.Context) (int, error) {
			select {
			case swept <- struct{}{}:
			default:
			}
			return 1, nil
		}),
		WithInterval(5*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not stop on cancellation")
	}
}
