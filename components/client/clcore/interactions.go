package clcore

import (
	"fmt"
	"strings"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// Interactions resolves interaction names to resource URLs of a remote thing.
type Interactions struct {
	base       string
	properties map[string]thdesc.Interaction
	actions    map[string]thdesc.Interaction
}

// NewInteractions is an initialization of Interactions.
//
// Parameters:
//   - base - base URI or path of the thing, e.g. "/things/led".
//   - desc - thing description.
func NewInteractions(base string, desc *thdesc.Description) *Interactions {
	in := &Interactions{
		base:       strings.TrimSuffix(base, "/"),
		properties: make(map[string]thdesc.Interaction),
		actions:    make(map[string]thdesc.Interaction),
	}

	for _, p := range desc.Properties() {
		in.properties[p.Name] = p
	}
	for _, a := range desc.Actions() {
		in.actions[a.Name] = a
	}

	return in
}

// PropertyURL returns the URL of the property name.
func (in *Interactions) PropertyURL(name string) (string, error) {
	if _, ok := in.properties[name]; !ok {
		return "", fmt.Errorf("client: unknown property=%s: %w", name, status.StatusNotFound)
	}

	return in.base + "/properties/" + name, nil
}

// ActionURL returns the URL of the action name.
func (in *Interactions) ActionURL(name string) (string, error) {
	if _, ok := in.actions[name]; !ok {
		return "", fmt.Errorf("client: unknown action=%s: %w", name, status.StatusNotFound)
	}

	return in.base + "/actions/" + name, nil
}

// Property returns the description of the property name.
func (in *Interactions) Property(name string) (thdesc.Interaction, bool) {
	p, ok := in.properties[name]

	return p, ok
}
