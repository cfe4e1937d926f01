package core

// FuncCloser adapts an ordinary function to the Closer interface.
type FuncCloser func() error

// Close calls the function.
func (f FuncCloser) Close() error {
	return f()
}
