package svcore

import (
	"context"
	"strings"
	"sync"

	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// ActionCallback handles the action invocation.
type ActionCallback func(ctx context.Context, input thcore.Content) error

// StateContainer holds the current property values and the registered action callbacks
// of a single thing.
//
// Remarks:
//   - All operations are serialized with a single mutex.
//   - Callbacks are append-only, there is no way to remove them.
type StateContainer struct {
	mu        sync.Mutex
	values    map[string]thcore.Content
	callbacks map[string][]ActionCallback
}

// NewStateContainer is an initialization of StateContainer.
func NewStateContainer() *StateContainer {
	return &StateContainer{
		values:    make(map[string]thcore.Content),
		callbacks: make(map[string][]ActionCallback),
	}
}

// Property returns a copy of the last stored value or the default for the property
// value type.
func (s *StateContainer) Property(prop *thcore.Property) thcore.Content {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.values[prop.Name()]; ok {
		return thcore.NewContent(c.Payload, c.Type)
	}

	return DefaultValue(prop.ValueType())
}

// SetProperty replaces the stored property value.
func (s *StateContainer) SetProperty(prop *thcore.Property, content thcore.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[prop.Name()] = thcore.NewContent(content.Payload, content.Type)
}

// AddCallback appends the callback to the action callback list.
func (s *StateContainer) AddCallback(action *thcore.Action, cb ActionCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callbacks[action.Name()] = append(s.callbacks[action.Name()], cb)
}

// Callbacks returns a snapshot of the action callback list.
func (s *StateContainer) Callbacks(action *thcore.Action) []ActionCallback {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ActionCallback(nil), s.callbacks[action.Name()]...)
}

// DefaultValue returns the value of a property that was never set.
//
// Examples:
//   - "xsd:unsignedByte", "xsd:float" - "0".
//   - "xsd:boolean" - "false".
//   - anything else - empty string.
func DefaultValue(valueType string) thcore.Content {
	hint := strings.ToLower(valueType)
	if i := strings.LastIndexByte(hint, ':'); i >= 0 {
		hint = hint[i+1:]
	}

	switch {
	case hint == "boolean" || hint == "bool":
		return thcore.NewTextContent("false")

	case isNumericHint(hint):
		return thcore.NewTextContent("0")

	default:
		return thcore.NewTextContent("")
	}
}

func isNumericHint(hint string) bool {
	for _, s := range []string{
		"int", "byte", "short", "long", "float", "double", "decimal", "number",
	} {
		if strings.Contains(hint, s) {
			return true
		}
	}

	return false
}
