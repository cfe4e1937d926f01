package clcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-control-systems/thingweb/components/status"
)

// Future holds the result of an asynchronous remote interaction.
//
// Remarks:
//   - Resolved exactly once, later Resolve() calls are ignored.
//   - Safe to use from multiple goroutines.
type Future struct {
	once   sync.Once
	doneCh chan struct{}
	result Result
}

// NewFuture is an initialization of Future.
func NewFuture() *Future {
	return &Future{doneCh: make(chan struct{})}
}

// Resolved returns the future already resolved with r.
func Resolved(r Result) *Future {
	f := NewFuture()
	f.Resolve(r)

	return f
}

// Resolve sets the result and returns true if it was the first call.
func (f *Future) Resolve(r Result) bool {
	resolved := false

	f.once.Do(func() {
		f.result = r
		close(f.doneCh)

		resolved = true
	})

	return resolved
}

// Done returns a channel closed when the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.doneCh
}

// Result returns the result and true if the future is resolved.
func (f *Future) Result() (Result, bool) {
	select {
	case <-f.doneCh:
		return f.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the future is resolved or ctx is done.
//
// Remarks:
//   - The result is returned as is, its Err isn't promoted to the returned error.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.doneCh:
		return f.result, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("future: %v: %w", ctx.Err(), status.StatusTimeout)
	}
}
