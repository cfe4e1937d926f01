package syssched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/status"
)

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const size = 3

	pool := NewWorkerPool("test", size)

	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)

		require.NoError(t, pool.Submit(func() {
			defer wg.Done()

			n := active.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}

			time.Sleep(time.Millisecond * 5)
			active.Add(-1)
		}))
	}

	wg.Wait()
	require.LessOrEqual(t, maxSeen.Load(), int32(size))
	require.NoError(t, pool.Close())
}

func TestWorkerPoolDoReturnsTaskError(t *testing.T) {
	pool := NewWorkerPool("test", 1)
	defer pool.Close()

	errTask := errors.New("task failed")

	require.ErrorIs(t, pool.Do(context.Background(), func() error { return errTask }), errTask)
	require.NoError(t, pool.Do(context.Background(), func() error { return nil }))
}

func TestWorkerPoolDoCanceled(t *testing.T) {
	pool := NewWorkerPool("test", 1)
	defer pool.Close()

	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*20)
	defer cancel()

	require.Error(t, pool.Do(ctx, func() error { return nil }))

	close(release)
}

func TestWorkerPoolCloseDrainsTasks(t *testing.T) {
	pool := NewWorkerPool("test", 2)

	var done atomic.Int32

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		}))
	}

	require.NoError(t, pool.Close())
	require.Equal(t, int32(10), done.Load())

	require.ErrorIs(t, pool.Submit(func() {}), status.StatusClosed)
	require.ErrorIs(t, pool.Do(context.Background(), func() error { return nil }),
		status.StatusClosed)
}
