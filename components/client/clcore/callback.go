package clcore

import (
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Callback receives results of the remote interactions.
type Callback interface {
	OnGet(name string, content thcore.Content)
	OnGetError(name string, err error)

	OnPut(name string, content thcore.Content)
	OnPutError(name string, err error)

	OnAction(name string, content thcore.Content)
	OnActionError(name string, err error)

	OnObserve(name string, content thcore.Content)
	OnObserveError(name string, err error)
}

// Notify invokes exactly one hook of callback once the future is resolved.
//
// Remarks:
//   - Returns immediately, the hook is invoked from a separate goroutine.
func Notify(future *Future, callback Callback) {
	go func() {
		<-future.Done()

		r, _ := future.Result()
		Dispatch(r, callback)
	}()
}

// Dispatch invokes the callback hook matching the result.
func Dispatch(r Result, callback Callback) {
	switch r.Op {
	case OpGet:
		if r.Err != nil {
			callback.OnGetError(r.Name, r.Err)
		} else {
			callback.OnGet(r.Name, r.Content)
		}

	case OpPut:
		if r.Err != nil {
			callback.OnPutError(r.Name, r.Err)
		} else {
			callback.OnPut(r.Name, r.Content)
		}

	case OpAction:
		if r.Err != nil {
			callback.OnActionError(r.Name, r.Err)
		} else {
			callback.OnAction(r.Name, r.Content)
		}

	case OpObserve:
		if r.Err != nil {
			callback.OnObserveError(r.Name, r.Err)
		} else {
			callback.OnObserve(r.Name, r.Content)
		}
	}
}

// ObserveCallback adapts callback to receive observe notifications.
func ObserveCallback(callback Callback) ObserveHandler {
	return func(r Result) {
		Dispatch(r, callback)
	}
}
