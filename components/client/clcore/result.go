package clcore

import (
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Op is a kind of the remote interaction.
type Op int

const (
	OpGet Op = iota
	OpPut
	OpAction
	OpObserve
)

// String returns the human readable operation name.
func (o Op) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpPut:
		return "put"
	case OpAction:
		return "action"
	case OpObserve:
		return "observe"
	default:
		return "<none>"
	}
}

// Result is an outcome of the remote interaction.
//
// Remarks:
//   - Either Err is nil and Content holds the response, or Err holds the failure.
type Result struct {
	Op      Op
	Name    string
	Content thcore.Content
	Err     error
}

// Failed returns true if the interaction failed.
func (r Result) Failed() bool {
	return r.Err != nil
}
