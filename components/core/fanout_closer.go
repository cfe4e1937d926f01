package core

import "errors"

// FanoutCloser propagates close call to the underlying closers.
//
// Remarks:
//   - Closers are closed in the reverse order of registration.
type FanoutCloser struct {
	closers []node
}

// Add registers closer with id to be notified when the close event is happened.
func (c *FanoutCloser) Add(id string, closer Closer) {
	c.closers = append(c.closers, node{id: id, c: closer})
}

// Close closes all registered closers and returns the joined errors.
func (c *FanoutCloser) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		n := c.closers[i]

		if err := n.c.Close(); err != nil {
			LogErr.Printf("fanout-closer: failed to close: id=%s err=%v\n", n.id, err)

			errs = append(errs, err)
		}
	}

	c.closers = nil

	return errors.Join(errs...)
}

type node struct {
	id string
	c  Closer
}
