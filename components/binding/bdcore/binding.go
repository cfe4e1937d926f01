package bdcore

// ResourceBuilder registers resources on a protocol binding.
type ResourceBuilder interface {
	// NewResource registers listener at the url path, e.g. "/things/led/properties/red".
	NewResource(url string, listener Listener) error
}

// Endpoint describes where the binding resources are reachable.
type Endpoint interface {
	// Identifier returns the protocol name, e.g. "HTTP".
	Identifier() string

	// Base returns the base URI of the resources, e.g. "http://host:8080".
	Base() string
}

// Binding exposes resources over a single wire protocol.
type Binding interface {
	ResourceBuilder
	Endpoint

	// Start begins serving requests.
	Start() error

	// Close stops serving requests.
	Close() error
}

// Notifier is implemented by bindings that can push resource changes to subscribers.
type Notifier interface {
	// NotifyChanged notifies subscribers of the resource at url.
	NotifyChanged(url string)
}
