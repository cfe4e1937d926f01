package clcore

import (
	"fmt"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Task performs a single remote interaction.
type Task func() (thcore.Content, error)

// Submit runs task on pool and returns the future resolved with its outcome.
//
// Remarks:
//   - Panics are recovered and reported as status.StatusError.
//   - Closed pool resolves the future with status.StatusClosed.
func Submit(pool *syssched.WorkerPool, op Op, name string, task Task) *Future {
	future := NewFuture()

	err := pool.Submit(func() {
		future.Resolve(run(op, name, task))
	})
	if err != nil {
		future.Resolve(Result{Op: op, Name: name, Err: err})
	}

	return future
}

func run(op Op, name string, task Task) (r Result) {
	r = Result{Op: op, Name: name}

	defer func() {
		if p := recover(); p != nil {
			core.LogErr.Printf("client: task panicked: op=%s name=%s: %v\n", op, name, p)

			r.Content = thcore.Content{}
			r.Err = fmt.Errorf("client: task panicked: %v: %w", p, status.StatusError)
		}
	}()

	r.Content, r.Err = task()

	return r
}
