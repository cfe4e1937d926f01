package svcore

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

type propertyListener struct {
	bdcore.BaseListener

	servient *Servient
	prop     *thcore.Property
	url      string
}

func (l *propertyListener) OnGet(ctx context.Context) (thcore.Content, error) {
	if !l.prop.Readable() {
		return thcore.Content{}, fmt.Errorf("property isn't readable: name=%s: %w",
			l.prop.Name(), status.StatusNotSupported)
	}

	return l.servient.readProperty(ctx, l.prop), nil
}

func (l *propertyListener) OnPut(ctx context.Context, content thcore.Content) error {
	if !l.prop.Writeable() {
		return fmt.Errorf("property isn't writeable: name=%s: %w",
			l.prop.Name(), status.StatusNotSupported)
	}

	if content.Type == thcore.MediaTypeUndefined {
		content.Type = thcore.MediaTypeTextPlain
	}

	l.servient.writeProperty(ctx, l.prop, l.url, content)

	return nil
}

type actionListener struct {
	bdcore.BaseListener

	servient *Servient
	action   *thcore.Action
}

func (l *actionListener) OnGet(_ context.Context) (thcore.Content, error) {
	return thcore.NewTextContent("Action: " + l.action.Name()), nil
}

func (l *actionListener) OnPut(ctx context.Context, content thcore.Content) error {
	return l.servient.invoke(ctx, l.action, content)
}

func (l *actionListener) OnPost(ctx context.Context, content thcore.Content) (thcore.Content, error) {
	if err := l.servient.invoke(ctx, l.action, content); err != nil {
		return thcore.Content{}, err
	}

	return thcore.NewTextContent("OK"), nil
}

type descriptionListener struct {
	bdcore.BaseListener

	desc *thdesc.Description
}

func (l *descriptionListener) OnGet(_ context.Context) (thcore.Content, error) {
	data, err := thdesc.Marshal(l.desc)
	if err != nil {
		return thcore.Content{}, err
	}

	return thcore.Content{Payload: data, Type: thcore.MediaTypeJSON}, nil
}

// invoke runs all registered callbacks of the action and waits for them.
//
// Remarks:
//   - A failing callback doesn't cancel the others.
//   - The caller learns only that at least one callback failed.
func (s *Servient) invoke(ctx context.Context, action *thcore.Action, input thcore.Content) error {
	callbacks := s.state.Callbacks(action)

	core.LogDbg.Printf("servient: invoking action: thing=%s action=%s callbacks=%d\n",
		s.thing.Name(), action.Name(), len(callbacks))

	// Every snapshotted callback runs even if the request is gone.
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group

	for _, cb := range callbacks {
		cb := cb

		g.Go(func() error {
			return s.pool.Do(ctx, func() error {
				return runCallback(ctx, cb, input)
			})
		})
	}

	if err := g.Wait(); err != nil {
		core.LogErr.Printf("servient: action failed: thing=%s action=%s: %v\n",
			s.thing.Name(), action.Name(), err)

		return fmt.Errorf("servient: action failed: action=%s: %w",
			action.Name(), status.StatusError)
	}

	return nil
}

func runCallback(ctx context.Context, cb ActionCallback, input thcore.Content) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()

	return cb(ctx, input)
}
