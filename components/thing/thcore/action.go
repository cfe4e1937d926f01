package thcore

import (
	"fmt"

	"github.com/open-control-systems/thingweb/components/status"
)

// Param is a declared parameter of the action.
type Param struct {
	Name string
	Type string
}

// Action is a named invocable operation of the thing.
//
// Remarks:
//   - Immutable after construction, use ActionBuilder to create one.
type Action struct {
	name   string
	params []Param
}

// Name returns action name.
func (a *Action) Name() string {
	return a.name
}

// Params returns a copy of the ordered parameter list.
func (a *Action) Params() []Param {
	return append([]Param(nil), a.params...)
}

// ActionBuilder builds Action.
type ActionBuilder struct {
	name   string
	params []Param
}

// NewActionBuilder starts building an action.
func NewActionBuilder(name string) *ActionBuilder {
	return &ActionBuilder{name: name}
}

// Param appends a parameter.
func (b *ActionBuilder) Param(name, valueType string) *ActionBuilder {
	b.params = append(b.params, Param{Name: name, Type: valueType})
	return b
}

// Build returns the action, each call returns a new instance.
func (b *ActionBuilder) Build() (*Action, error) {
	if b.name == "" {
		return nil, fmt.Errorf("action-builder: empty name: %w", status.StatusInvalidArg)
	}

	for _, p := range b.params {
		if p.Name == "" {
			return nil, fmt.Errorf("action-builder: empty param name: action=%s: %w",
				b.name, status.StatusInvalidArg)
		}
	}

	return &Action{
		name:   b.name,
		params: append([]Param(nil), b.params...),
	}, nil
}
