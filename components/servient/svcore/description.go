package svcore

import (
	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// newDescription describes the thing as exposed by the bindings.
//
// Remarks:
//   - Protocol priority follows the binding order, starting at 1.
func newDescription(
	thing *thcore.Thing,
	properties []*thcore.Property,
	actions []*thcore.Action,
	builders []bdcore.ResourceBuilder,
) *thdesc.Description {
	desc := &thdesc.Description{
		Metadata: thdesc.Metadata{
			Name:      thing.Name(),
			Encodings: thdesc.StringList{"JSON"},
			Protocols: make(map[string]thdesc.Protocol),
		},
	}

	priority := 1
	for _, b := range builders {
		ep, ok := b.(bdcore.Endpoint)
		if !ok {
			continue
		}

		desc.Metadata.Protocols[ep.Identifier()] = thdesc.Protocol{
			URI:      ep.Base() + ThingURL(thing.Name()),
			Priority: priority,
		}
		priority++
	}

	for _, p := range properties {
		desc.Interactions = append(desc.Interactions, thdesc.Interaction{
			Kind:       thdesc.KindProperty,
			Name:       p.Name(),
			OutputType: p.ValueType(),
			Writable:   p.Writeable(),
		})
	}

	for _, a := range actions {
		i := thdesc.Interaction{
			Kind: thdesc.KindAction,
			Name: a.Name(),
		}

		if params := a.Params(); len(params) > 0 {
			i.InputType = params[0].Type
		}

		desc.Interactions = append(desc.Interactions, i)
	}

	return desc
}
