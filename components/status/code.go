package status

import "errors"

var (
	// StatusError indicates a failure of an operation.
	StatusError = errors.New("operation failed")

	// StatusInvalidArg indicates that an argument is nil, malformed or violates a
	// uniqueness constraint.
	StatusInvalidArg = errors.New("invalid argument")

	// StatusInvalidState indicates that an operation can't be performed due to invalid state.
	StatusInvalidState = errors.New("invalid state")

	// StatusNotFound indicates that a resource, property or action doesn't exist.
	StatusNotFound = errors.New("not found")

	// StatusNoData indicates that there is no data for the requested key.
	StatusNoData = errors.New("no data")

	// StatusNotSupported indicates that an operation isn't supported.
	StatusNotSupported = errors.New("not supported")

	// StatusUnauthorized indicates a missing or invalid security token.
	StatusUnauthorized = errors.New("unauthorized")

	// StatusTokenExpired indicates that a security token is no longer valid.
	StatusTokenExpired = errors.New("token expired")

	// StatusUnsupportedProtocol indicates that no known client can speak any of the
	// protocols declared by a description.
	StatusUnsupportedProtocol = errors.New("unsupported protocol")

	// StatusTransport indicates a network or codec failure on the client side.
	StatusTransport = errors.New("transport failure")

	// StatusParse indicates a malformed description document.
	StatusParse = errors.New("parse failure")

	// StatusTimeout indicates that an operation didn't complete in time.
	StatusTimeout = errors.New("timeout")

	// StatusClosed indicates that a resource was already closed.
	StatusClosed = errors.New("closed")
)
