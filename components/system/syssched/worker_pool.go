package syssched

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/open-control-systems/thingweb/components/status"
)

// WorkerPool runs tasks with a bounded number of concurrently active workers.
//
// Remarks:
//   - Tasks submitted concurrently have no relative ordering guarantee.
//   - Safe to use from multiple goroutines.
type WorkerPool struct {
	name string
	sem  *semaphore.Weighted
	size int

	wg sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool is an initialization of WorkerPool.
//
// Parameters:
//   - name to identify the pool in the logs.
//   - size - maximum number of concurrently running tasks, values less than 1 mean 1.
func NewWorkerPool(name string, size int) *WorkerPool {
	if size < 1 {
		size = 1
	}

	return &WorkerPool{
		name: name,
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the maximum number of concurrently running tasks.
func (p *WorkerPool) Size() int {
	return p.size
}

// Submit schedules the task and returns immediately.
//
// Remarks:
//   - The task is started as soon as a worker becomes available.
//   - Returns status.StatusClosed if the pool is closed.
func (p *WorkerPool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("worker-pool: %s: %w", p.name, status.StatusClosed)
	}

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		// Acquire never fails with a never-canceled context.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		task()
	}()

	return nil
}

// Do runs the task on one of the workers and waits for its completion.
//
// Remarks:
//   - Blocks until a worker becomes available or ctx is canceled.
func (p *WorkerPool) Do(ctx context.Context, task func() error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()

		return fmt.Errorf("worker-pool: %s: %w", p.name, status.StatusClosed)
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	defer p.wg.Done()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("worker-pool: %s: failed to acquire worker: %w", p.name, err)
	}
	defer p.sem.Release(1)

	return task()
}

// Close prevents new submissions and waits until all accepted tasks are finished.
func (p *WorkerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()

	return nil
}
