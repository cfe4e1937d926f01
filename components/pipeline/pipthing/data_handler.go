package pipthing

import (
	"sort"
	"strings"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// DataHandler handles property values polled from a remote thing.
type DataHandler interface {
	// HandleData handles the property values of the thing.
	//
	// Parameters:
	//   - thing - thing name.
	//   - values - property values mapped by the property name.
	HandleData(thing string, values map[string]thcore.Content) error
}

// LogDataHandler logs property values.
type LogDataHandler struct{}

// HandleData logs the property values in the sorted order of the property names.
func (LogDataHandler) HandleData(thing string, values map[string]thcore.Content) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+values[name].String())
	}

	core.LogInf.Printf("thing-data: thing=%s %s\n", thing, strings.Join(pairs, " "))

	return nil
}
