package clhttp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/binding/bdhttp"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

type testClientValidator struct{}

func (testClientValidator) Validate(_ bdcore.Method, _, token string) (string, error) {
	if token == "valid" {
		return "alice", nil
	}

	return "", status.StatusUnauthorized
}

type testClientEnv struct {
	servient *svcore.Servient
	family   *Family
}

func newTestClientEnv(t *testing.T, params svcore.Params) *testClientEnv {
	binding, err := bdhttp.NewBinding(bdhttp.Params{Host: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, binding.Start())
	t.Cleanup(func() { require.NoError(t, binding.Close()) })

	thing, err := thcore.NewThing("led")
	require.NoError(t, err)

	red, err := thcore.NewPropertyBuilder("red").Writeable(true).ValueType("xsd:unsignedByte").Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddProperty(red))

	fadeIn, err := thcore.NewActionBuilder("fadeIn").Param("value", "xsd:unsignedByte").Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddAction(fadeIn))

	fadeOut, err := thcore.NewActionBuilder("fadeOut").Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddAction(fadeOut))

	servient, err := svcore.NewServient(thing, params, binding)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, servient.Close()) })

	family := NewFamily(FamilyParams{})
	t.Cleanup(func() { require.NoError(t, family.Close()) })

	return &testClientEnv{
		servient: servient,
		family:   family,
	}
}

func (e *testClientEnv) newClient(t *testing.T, params clcore.Params) clcore.Client {
	desc := e.servient.Description()

	client, err := e.family.NewClient(desc.Metadata.Protocols["HTTP"].URI, desc, params)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	return client
}

func wait(t *testing.T, future *clcore.Future) clcore.Result {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := future.Wait(ctx)
	require.NoError(t, err)

	return r
}

func TestClientGetPutAction(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	var invoked atomic.Int32
	require.NoError(t, env.servient.OnInvoke("fadeIn", func(_ context.Context, c thcore.Content) error {
		if c.String() == "5" {
			invoked.Add(1)
		}
		return nil
	}))

	r := wait(t, client.Put("red", thcore.NewTextContent("200")))
	require.NoError(t, r.Err)
	require.Equal(t, clcore.OpPut, r.Op)

	r = wait(t, client.Get("red"))
	require.NoError(t, r.Err)
	require.Equal(t, "200", r.Content.String())
	require.Equal(t, thcore.MediaTypeTextPlain, r.Content.Type)

	r = wait(t, client.Action("fadeIn", thcore.NewTextContent("5")))
	require.NoError(t, r.Err)
	require.Equal(t, "OK", r.Content.String())
	require.EqualValues(t, 1, invoked.Load())
}

func TestClientActionFailure(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	require.NoError(t, env.servient.OnInvoke("fadeOut", func(context.Context, thcore.Content) error {
		return errors.New("led is unplugged")
	}))

	r := wait(t, client.Action("fadeOut", thcore.Content{}))
	require.ErrorIs(t, r.Err, status.StatusError)
	require.NotContains(t, r.Err.Error(), "unplugged")
}

func TestClientUnknownName(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	r := wait(t, client.Get("fadeIn"))
	require.ErrorIs(t, r.Err, status.StatusNotFound)

	r = wait(t, client.Action("red", thcore.Content{}))
	require.ErrorIs(t, r.Err, status.StatusNotFound)
}

func TestClientObserveNotSupported(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	future := client.Observe("red", func(clcore.Result) {})

	r, ok := future.Result()
	require.True(t, ok)
	require.Equal(t, clcore.OpObserve, r.Op)
	require.ErrorIs(t, r.Err, status.StatusNotSupported)

	require.ErrorIs(t, client.ObserveRelease("red"), status.StatusNotSupported)
}

func TestClientToken(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{Validator: testClientValidator{}})

	r := wait(t, env.newClient(t, clcore.Params{}).Get("red"))
	require.ErrorIs(t, r.Err, status.StatusUnauthorized)

	r = wait(t, env.newClient(t, clcore.Params{Token: "valid"}).Get("red"))
	require.NoError(t, r.Err)
	require.Equal(t, "0", r.Content.String())
}

func TestClientTransportError(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})

	client, err := env.family.NewClient("http://127.0.0.1:1/things/led",
		env.servient.Description(), clcore.Params{Timeout: time.Second})
	require.NoError(t, err)

	r := wait(t, client.Get("red"))
	require.ErrorIs(t, r.Err, status.StatusTransport)
}

func TestFamilyInvalidURI(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})

	_, err := env.family.NewClient("led", env.servient.Description(), clcore.Params{})
	require.ErrorIs(t, err, status.StatusInvalidArg)
}
