package clcore

import (
	"time"

	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// ObserveHandler receives notifications of the observed property.
type ObserveHandler func(r Result)

// Client interacts with a remote thing over a single protocol.
//
// Remarks:
//   - Calls never block, the returned future is resolved from the worker pool.
//   - Transport failures are reported through the future, never returned or panicked.
type Client interface {
	// Get reads the property.
	Get(name string) *Future

	// Put writes the property.
	Put(name string, content thcore.Content) *Future

	// Action invokes the action.
	Action(name string, content thcore.Content) *Future

	// Observe subscribes to the property changes.
	//
	// Remarks:
	//   - The future is resolved with the first notification or the subscription error.
	//   - Protocols without subscriptions resolve it with status.StatusNotSupported.
	Observe(name string, handler ObserveHandler) *Future

	// ObserveRelease cancels the property subscription.
	//
	// Remarks:
	//   - Returns status.StatusNotSupported if there is no active subscription.
	ObserveRelease(name string) error

	// Close releases the client resources.
	Close() error
}

// Params represents various options for the remote client.
type Params struct {
	// Timeout of a single request, zero means the transport default.
	Timeout time.Duration

	// Token to access protected resources.
	Token string
}

// Family builds clients for the protocols it supports.
//
// Remarks:
//   - Clients built by the same family share the family worker pool.
type Family interface {
	// Schemes returns the URI schemes handled by the family, e.g. "http".
	Schemes() []string

	// NewClient builds the client for the thing reachable at uri.
	//
	// Parameters:
	//   - uri - base URI of the thing, e.g. "http://127.0.0.1:8080/things/led".
	//   - desc - thing description.
	//   - params - client options.
	NewClient(uri string, desc *thdesc.Description, params Params) (Client, error)

	// Close waits for the pending tasks and releases the family resources.
	Close() error
}
