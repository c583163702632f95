package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryIndexOnce(t *testing.T) {
	const n = 200
	var seen [n]int32

	dispatched, err := NewPool(8).Run(context.Background(), n, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, n, dispatched)
	for i, c := range seen {
		assert.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	var running, peak int32

	_, err := NewPool(size).Run(context.Background(), 30, func(_ context.Context, _ int) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(size))
}

func TestPoolStopsDispatchOnError(t *testing.T) {
	boom := errors.New("boom")
	var started int32

	dispatched, err := NewPool(1).Run(context.Background(), 50, func(_ context.Context, i int) error {
		atomic.AddInt32(&started, 1)
		if i == 4 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Less(t, dispatched, 50)
	assert.Equal(t, int32(dispatched), atomic.LoadInt32(&started))
}

func TestPoolWaitsForInFlightTasks(t *testing.T) {
	boom := errors.New("boom")
	var finished int32
	release := make(chan struct{})

	var mu sync.Mutex
	startedSlow := false

	_, err := NewPool(2).Run(context.Background(), 10, func(_ context.Context, i int) error {
		switch i {
		case 0:
			mu.Lock()
			startedSlow = true
			mu.Unlock()
			<-release
			atomic.AddInt32(&finished, 1)
			return nil
		case 1:
			for {
				mu.Lock()
				ok := startedSlow
				mu.Unlock()
				if ok {
					break
				}
				time.Sleep(time.Millisecond)
			}
			close(release)
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestPoolContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	dispatched, err := NewPool(1).Run(ctx, 100, func(_ context.Context, i int) error {
		if i == 2 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, dispatched, 100)
}

func TestPoolEmpty(t *testing.T) {
	dispatched, err := NewPool(4).Run(context.Background(), 0, func(context.Context, int) error {
		t.Fatal("task must not run")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, dispatched)
}

func TestNewPoolDefaultsToCPUCount(t *testing.T) {
	assert.Positive(t, NewPool(0).Size())
	assert.Equal(t, 5, NewPool(5).Size())
}

func TestSemaphore(t *testing.T) {
	s := NewSemaphore(1)
	require.NoError(t, s.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Acquire(ctx), context.DeadlineExceeded)

	s.Release()
	require.NoError(t, s.Acquire(context.Background()))
	s.Release()
}
