package thcore

import (
	"fmt"

	"github.com/open-control-systems/thingweb/components/status"
)

// Property is a named, typed state slot of the thing.
//
// Remarks:
//   - Immutable after construction, use PropertyBuilder to create one.
type Property struct {
	name      string
	readable  bool
	writeable bool
	valueType string
}

// Name returns property name.
func (p *Property) Name() string {
	return p.name
}

// Readable returns true if the property value can be read remotely.
func (p *Property) Readable() bool {
	return p.readable
}

// Writeable returns true if the property value can be changed remotely.
func (p *Property) Writeable() bool {
	return p.writeable
}

// ValueType returns the declared value type hint, e.g. "xsd:unsignedByte".
func (p *Property) ValueType() string {
	return p.valueType
}

// PropertyBuilder builds Property.
type PropertyBuilder struct {
	prop Property
}

// NewPropertyBuilder starts building a readable property.
func NewPropertyBuilder(name string) *PropertyBuilder {
	return &PropertyBuilder{
		prop: Property{
			name:     name,
			readable: true,
		},
	}
}

// Readable sets whether the property can be read.
func (b *PropertyBuilder) Readable(readable bool) *PropertyBuilder {
	b.prop.readable = readable
	return b
}

// Writeable sets whether the property can be written.
func (b *PropertyBuilder) Writeable(writeable bool) *PropertyBuilder {
	b.prop.writeable = writeable
	return b
}

// ValueType sets the value type hint.
func (b *PropertyBuilder) ValueType(valueType string) *PropertyBuilder {
	b.prop.valueType = valueType
	return b
}

// Build returns the property, each call returns a new instance.
func (b *PropertyBuilder) Build() (*Property, error) {
	if b.prop.name == "" {
		return nil, fmt.Errorf("property-builder: empty name: %w", status.StatusInvalidArg)
	}

	p := b.prop

	return &p, nil
}
