package thdesc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is a kind of the interaction declared in the description.
type Kind string

const (
	// KindProperty is a readable and possibly writable state slot.
	KindProperty Kind = "property"

	// KindAction is an invocable operation.
	KindAction Kind = "action"

	// KindEvent is a notification emitted by the thing.
	KindEvent Kind = "event"

	// KindUnknown is used for interactions of unrecognized kind.
	KindUnknown Kind = ""
)

// ParseKind converts the linked-data or plain kind notation to Kind.
//
// Examples:
//   - "Property", "property", "td:Property" are parsed as KindProperty.
func ParseKind(s string) Kind {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}

	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindProperty:
		return KindProperty
	case KindAction:
		return KindAction
	case KindEvent:
		return KindEvent
	default:
		return KindUnknown
	}
}

// Description is a machine-readable description of a thing.
type Description struct {
	Metadata     Metadata      `json:"metadata" yaml:"metadata"`
	Interactions []Interaction `json:"interactions" yaml:"interactions"`
}

// Metadata describes the thing identity and how it can be reached.
type Metadata struct {
	Name      string              `json:"name" yaml:"name"`
	Encodings StringList          `json:"encodings,omitempty" yaml:"encodings,omitempty"`
	Protocols map[string]Protocol `json:"protocols" yaml:"protocols"`
}

// Protocol is a single endpoint the thing is reachable through.
//
// Remarks:
//   - Smaller priority value is preferred by the clients.
type Protocol struct {
	URI      string `json:"uri" yaml:"uri"`
	Priority int    `json:"priority" yaml:"priority"`
}

// NamedProtocol is a protocol descriptor along with its name in the description.
type NamedProtocol struct {
	Name string
	Protocol
}

// Interaction describes a single property, action or event.
type Interaction struct {
	Kind       Kind   `json:"kind" yaml:"kind"`
	Name       string `json:"name" yaml:"name"`
	InputType  string `json:"inputType,omitempty" yaml:"inputType,omitempty"`
	OutputType string `json:"outputType,omitempty" yaml:"outputType,omitempty"`
	Writable   bool   `json:"writable,omitempty" yaml:"writable,omitempty"`
}

type rawInteraction struct {
	Kind       string `json:"kind" yaml:"kind"`
	Type       string `json:"@type" yaml:"@type"`
	Name       string `json:"name" yaml:"name"`
	InputType  string `json:"inputType" yaml:"inputType"`
	OutputType string `json:"outputType" yaml:"outputType"`
	Writable   bool   `json:"writable" yaml:"writable"`
}

func (r *rawInteraction) interaction() Interaction {
	kind := r.Kind
	if kind == "" {
		kind = r.Type
	}

	return Interaction{
		Kind:       ParseKind(kind),
		Name:       r.Name,
		InputType:  r.InputType,
		OutputType: r.OutputType,
		Writable:   r.Writable,
	}
}

// UnmarshalJSON accepts the kind either from "kind" or from "@type" field.
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var raw rawInteraction
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = raw.interaction()

	return nil
}

// UnmarshalYAML accepts the kind either from "kind" or from "@type" field.
func (i *Interaction) UnmarshalYAML(value *yaml.Node) error {
	var raw rawInteraction
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*i = raw.interaction()

	return nil
}

// StringList is a list of strings that can also be encoded as a single string.
type StringList []string

// UnmarshalJSON decodes either a string or a list of strings.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}

	*l = list

	return nil
}

// UnmarshalYAML decodes either a string or a list of strings.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = StringList{value.Value}
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}

	*l = list

	return nil
}

// Properties returns all property interactions.
func (d *Description) Properties() []Interaction {
	return d.filter(KindProperty)
}

// Actions returns all action interactions.
func (d *Description) Actions() []Interaction {
	return d.filter(KindAction)
}

// Events returns all event interactions.
func (d *Description) Events() []Interaction {
	return d.filter(KindEvent)
}

// Protocols returns protocol descriptors sorted by name.
func (d *Description) Protocols() []NamedProtocol {
	names := make([]string, 0, len(d.Metadata.Protocols))
	for name := range d.Metadata.Protocols {
		names = append(names, name)
	}
	sort.Strings(names)

	protocols := make([]NamedProtocol, 0, len(names))
	for _, name := range names {
		protocols = append(protocols, NamedProtocol{
			Name:     name,
			Protocol: d.Metadata.Protocols[name],
		})
	}

	return protocols
}

func (d *Description) filter(kind Kind) []Interaction {
	var interactions []Interaction

	for _, i := range d.Interactions {
		if i.Kind == kind {
			interactions = append(interactions, i)
		}
	}

	return interactions
}

// Marshal renders the description as JSON.
func Marshal(desc *Description) ([]byte, error) {
	return json.Marshal(desc)
}
