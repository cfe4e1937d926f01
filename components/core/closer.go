package core

// Closer implementation should free all allocated resources.
//
// Remarks:
//   - Bindings, client families, worker pools and databases are all closers.
type Closer interface {
	// Close releases the resource.
	Close() error
}
