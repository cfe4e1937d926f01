package syssched

// ErrorHandler handles errors returned by periodically executed tasks.
type ErrorHandler interface {
	// HandleError handles error.
	HandleError(err error)
}
