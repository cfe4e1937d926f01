package svcore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

const defaultWorkerCount = 8

// Params represents various options for Servient.
type Params struct {
	// Validator - if set, every resource requires a valid token.
	Validator bdcore.TokenValidator

	// WorkerCount - maximum number of concurrently running action callbacks,
	// zero means default.
	WorkerCount int
}

// Servient exposes a single thing over any number of protocol bindings.
//
// Remarks:
//   - Resources are registered once, during construction. Properties and actions
//     added to the thing afterwards aren't exposed.
//   - Safe to use from multiple goroutines.
type Servient struct {
	id        string
	thing     *thcore.Thing
	state     *StateContainer
	pool      *syssched.WorkerPool
	validator bdcore.TokenValidator
	desc      *thdesc.Description
	notifiers []bdcore.Notifier

	listeners atomic.Pointer[[]InteractionListener]

	mu       sync.RWMutex
	updaters map[string][]UpdateHandler
}

// NewServient is an initialization of Servient.
//
// Parameters:
//   - thing - device model to expose.
//   - params - various servient options.
//   - builders - protocol bindings to register the resources on.
//
// Remarks:
//   - For each property the resource is registered at /things/<thing>/properties/<property>.
//   - For each action the resource is registered at /things/<thing>/actions/<action>.
//   - The thing description is registered at /things/<thing>.
func NewServient(
	thing *thcore.Thing,
	params Params,
	builders ...bdcore.ResourceBuilder,
) (*Servient, error) {
	if thing == nil {
		return nil, fmt.Errorf("servient: nil thing: %w", status.StatusInvalidArg)
	}

	for _, b := range builders {
		if b == nil {
			return nil, fmt.Errorf("servient: nil binding: %w", status.StatusInvalidArg)
		}
	}

	if params.WorkerCount <= 0 {
		params.WorkerCount = defaultWorkerCount
	}

	s := &Servient{
		id:        uuid.NewString(),
		thing:     thing,
		state:     NewStateContainer(),
		pool:      syssched.NewWorkerPool("servient-"+thing.Name(), params.WorkerCount),
		validator: params.Validator,
		updaters:  make(map[string][]UpdateHandler),
	}
	s.listeners.Store(&[]InteractionListener{})

	properties := thing.Properties()
	actions := thing.Actions()

	s.desc = newDescription(thing, properties, actions, builders)

	for _, b := range builders {
		if n, ok := b.(bdcore.Notifier); ok {
			s.notifiers = append(s.notifiers, n)
		}

		if err := s.register(b, properties, actions); err != nil {
			return nil, err
		}
	}

	core.LogInf.Printf("servient: thing registered: id=%s thing=%s properties=%d"+
		" actions=%d bindings=%d\n",
		s.id, thing.Name(), len(properties), len(actions), len(builders))

	return s, nil
}

// ID returns the unique servient instance identifier.
func (s *Servient) ID() string {
	return s.id
}

// Thing returns the served thing.
func (s *Servient) Thing() *thcore.Thing {
	return s.thing
}

// Description returns the description of the served thing.
func (s *Servient) Description() *thdesc.Description {
	return s.desc
}

// SetProperty stores the property value.
func (s *Servient) SetProperty(prop *thcore.Property, content thcore.Content) error {
	if err := s.checkOwner(prop); err != nil {
		return err
	}

	s.state.SetProperty(prop, content)
	s.notifyChanged(PropertyURL(s.thing.Name(), prop.Name()))

	return nil
}

// SetPropertyByName stores the value of the property with the given name.
func (s *Servient) SetPropertyByName(name string, content thcore.Content) error {
	prop, err := s.thing.RequiredProperty(name)
	if err != nil {
		return err
	}

	return s.SetProperty(prop, content)
}

// Property returns the current property value.
func (s *Servient) Property(prop *thcore.Property) (thcore.Content, error) {
	if err := s.checkOwner(prop); err != nil {
		return thcore.Content{}, err
	}

	return s.state.Property(prop), nil
}

// PropertyByName returns the current value of the property with the given name.
func (s *Servient) PropertyByName(name string) (thcore.Content, error) {
	prop, err := s.thing.RequiredProperty(name)
	if err != nil {
		return thcore.Content{}, err
	}

	return s.Property(prop)
}

// OnInvoke registers the callback to be run on each action invocation.
func (s *Servient) OnInvoke(actionName string, cb ActionCallback) error {
	if cb == nil {
		return fmt.Errorf("servient: nil callback: %w", status.StatusInvalidArg)
	}

	action := s.thing.Action(actionName)
	if action == nil {
		return fmt.Errorf("servient: action not found: name=%s: %w",
			actionName, status.StatusNotFound)
	}

	s.state.AddCallback(action, cb)

	return nil
}

// OnUpdate registers the handler to be run after each remote property write.
func (s *Servient) OnUpdate(propertyName string, handler UpdateHandler) error {
	if handler == nil {
		return fmt.Errorf("servient: nil handler: %w", status.StatusInvalidArg)
	}

	if _, err := s.thing.RequiredProperty(propertyName); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.updaters[propertyName] = append(s.updaters[propertyName], handler)

	return nil
}

// AddInteractionListener registers l to be notified about remote property interactions.
func (s *Servient) AddInteractionListener(l InteractionListener) error {
	if l == nil {
		return fmt.Errorf("servient: nil listener: %w", status.StatusInvalidArg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listeners := append(append([]InteractionListener(nil), *s.listeners.Load()...), l)
	s.listeners.Store(&listeners)

	return nil
}

// Close waits for the running action callbacks to finish.
func (s *Servient) Close() error {
	return s.pool.Close()
}

func (s *Servient) register(
	builder bdcore.ResourceBuilder,
	properties []*thcore.Property,
	actions []*thcore.Action,
) error {
	url := ThingURL(s.thing.Name())
	if err := builder.NewResource(url, &descriptionListener{
		BaseListener: bdcore.BaseListener{Validator: s.validator},
		desc:         s.desc,
	}); err != nil {
		return fmt.Errorf("servient: failed to register resource: url=%s: %w", url, err)
	}

	for _, p := range properties {
		url := PropertyURL(s.thing.Name(), p.Name())

		if err := builder.NewResource(url, &propertyListener{
			BaseListener: bdcore.BaseListener{Validator: s.validator},
			servient:     s,
			prop:         p,
			url:          url,
		}); err != nil {
			return fmt.Errorf("servient: failed to register resource: url=%s: %w", url, err)
		}
	}

	for _, a := range actions {
		url := ActionURL(s.thing.Name(), a.Name())

		if err := builder.NewResource(url, &actionListener{
			BaseListener: bdcore.BaseListener{Validator: s.validator},
			servient:     s,
			action:       a,
		}); err != nil {
			return fmt.Errorf("servient: failed to register resource: url=%s: %w", url, err)
		}
	}

	return nil
}

func (s *Servient) checkOwner(prop *thcore.Property) error {
	if prop == nil {
		return fmt.Errorf("servient: nil property: %w", status.StatusInvalidArg)
	}

	if !s.thing.IsOwnerOf(prop) {
		return fmt.Errorf("servient: property doesn't belong to thing: name=%s thing=%s: %w",
			prop.Name(), s.thing.Name(), status.StatusInvalidArg)
	}

	return nil
}

func (s *Servient) readProperty(ctx context.Context, prop *thcore.Property) thcore.Content {
	content := s.state.Property(prop)
	if bdcore.IsNotification(ctx) {
		return content
	}

	i := Interaction{Thing: s.thing.Name(), Property: prop.Name(), Content: content}
	for _, l := range *s.listeners.Load() {
		l.OnReadProperty(ctx, i)
	}

	return content
}

func (s *Servient) writeProperty(
	ctx context.Context,
	prop *thcore.Property,
	url string,
	content thcore.Content,
) {
	s.state.SetProperty(prop, content)

	i := Interaction{Thing: s.thing.Name(), Property: prop.Name(), Content: content}
	for _, l := range *s.listeners.Load() {
		l.OnWriteProperty(ctx, i)
	}

	s.mu.RLock()
	updaters := append([]UpdateHandler(nil), s.updaters[prop.Name()]...)
	s.mu.RUnlock()

	for _, h := range updaters {
		h(ctx, content)
	}

	s.notifyChanged(url)
}

func (s *Servient) notifyChanged(url string) {
	for _, n := range s.notifiers {
		n.NotifyChanged(url)
	}
}
