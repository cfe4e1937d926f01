package thcore

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// Thing is an in-memory model of a device: its properties and actions.
//
// Remarks:
//   - Properties and actions are append-only, names are unique across both sets.
//   - Reads never block: each mutation publishes a new copy of the collection.
//   - Safe to use from multiple goroutines.
type Thing struct {
	name string
	desc *thdesc.Description

	mu         sync.Mutex
	properties atomic.Pointer[[]*Property]
	actions    atomic.Pointer[[]*Action]
	listeners  atomic.Pointer[[]ModelListener]
}

// NewThing is an initialization of Thing.
//
// Parameters:
//   - name is used to build unique resource URLs, so it should be unique per servient.
func NewThing(name string) (*Thing, error) {
	if name == "" {
		return nil, fmt.Errorf("thing: empty name: %w", status.StatusInvalidArg)
	}

	t := &Thing{name: name}

	t.properties.Store(&[]*Property{})
	t.actions.Store(&[]*Action{})
	t.listeners.Store(&[]ModelListener{})

	return t, nil
}

// NewThingFromDescription builds the thing model from its description.
//
// Remarks:
//   - Each property is readable, its type hint is taken from the output type.
//   - Each action gets a single "value" parameter typed by the input type.
//   - Events are ignored.
func NewThingFromDescription(desc *thdesc.Description) (*Thing, error) {
	if desc == nil {
		return nil, fmt.Errorf("thing: nil description: %w", status.StatusInvalidArg)
	}

	t, err := NewThing(desc.Metadata.Name)
	if err != nil {
		return nil, err
	}
	t.desc = desc

	for _, i := range desc.Properties() {
		p, err := NewPropertyBuilder(i.Name).
			Writeable(i.Writable).
			ValueType(i.OutputType).
			Build()
		if err != nil {
			return nil, err
		}

		if err := t.AddProperty(p); err != nil {
			return nil, err
		}
	}

	for _, i := range desc.Actions() {
		a, err := NewActionBuilder(i.Name).Param("value", i.InputType).Build()
		if err != nil {
			return nil, err
		}

		if err := t.AddAction(a); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Name returns the thing name.
func (t *Thing) Name() string {
	return t.name
}

// Description returns the description the thing was built from, nil if none.
func (t *Thing) Description() *thdesc.Description {
	return t.desc
}

// Properties returns a copy of the current snapshot of properties.
func (t *Thing) Properties() []*Property {
	return slices.Clone(*t.properties.Load())
}

// Actions returns a copy of the current snapshot of actions.
func (t *Thing) Actions() []*Action {
	return slices.Clone(*t.actions.Load())
}

// Property returns property by name, nil if it doesn't exist.
func (t *Thing) Property(name string) *Property {
	for _, p := range *t.properties.Load() {
		if p.name == name {
			return p
		}
	}

	return nil
}

// RequiredProperty returns property by name or status.StatusNotFound.
func (t *Thing) RequiredProperty(name string) (*Property, error) {
	p := t.Property(name)
	if p == nil {
		return nil, fmt.Errorf("thing: property not found: thing=%s name=%s: %w",
			t.name, name, status.StatusNotFound)
	}

	return p, nil
}

// Action returns action by name, nil if it doesn't exist.
func (t *Thing) Action(name string) *Action {
	for _, a := range *t.actions.Load() {
		if a.name == name {
			return a
		}
	}

	return nil
}

// IsOwnerOf returns true if this exact property instance belongs to the thing.
func (t *Thing) IsOwnerOf(prop *Property) bool {
	if prop == nil {
		return false
	}

	for _, p := range *t.properties.Load() {
		if p == prop {
			return true
		}
	}

	return false
}

// AddModelListener registers l to be notified on each model change.
func (t *Thing) AddModelListener(l ModelListener) error {
	if l == nil {
		return fmt.Errorf("thing: nil listener: %w", status.StatusInvalidArg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	listeners := append(append([]ModelListener(nil), t.listenersSnapshot()...), l)
	t.listeners.Store(&listeners)

	return nil
}

// AddProperty adds property to the thing and notifies model listeners.
//
// Remarks:
//   - Fails with status.StatusInvalidArg on nil property or duplicate name,
//     the model is left unchanged in that case.
func (t *Thing) AddProperty(prop *Property) error {
	if prop == nil {
		return fmt.Errorf("thing: nil property: %w", status.StatusInvalidArg)
	}

	if err := t.add(prop.name, func() {
		properties := append(t.Properties(), prop)
		t.properties.Store(&properties)
	}); err != nil {
		return err
	}

	t.notify()

	return nil
}

// AddAction adds action to the thing and notifies model listeners.
//
// Remarks:
//   - Fails with status.StatusInvalidArg on nil action or duplicate name,
//     the model is left unchanged in that case.
func (t *Thing) AddAction(action *Action) error {
	if action == nil {
		return fmt.Errorf("thing: nil action: %w", status.StatusInvalidArg)
	}

	if err := t.add(action.name, func() {
		actions := append(t.Actions(), action)
		t.actions.Store(&actions)
	}); err != nil {
		return err
	}

	t.notify()

	return nil
}

func (t *Thing) add(name string, publish func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Property(name) != nil || t.Action(name) != nil {
		return fmt.Errorf("thing: duplicate name: thing=%s name=%s: %w",
			t.name, name, status.StatusInvalidArg)
	}

	publish()

	return nil
}

func (t *Thing) listenersSnapshot() []ModelListener {
	return *t.listeners.Load()
}

func (t *Thing) notify() {
	for _, l := range t.listenersSnapshot() {
		l.OnModelChanged(t)
	}
}
