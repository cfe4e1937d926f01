package clcoap

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdcoap"
	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

type testClientValidator struct{}

func (testClientValidator) Validate(_ bdcore.Method, _, token string) (string, error) {
	if token == "valid" {
		return "alice", nil
	}

	return "", status.StatusUnauthorized
}

type testRevocableValidator struct {
	revoked atomic.Bool
}

func (v *testRevocableValidator) Validate(_ bdcore.Method, _, token string) (string, error) {
	if token == "valid" && !v.revoked.Load() {
		return "alice", nil
	}

	return "", status.StatusUnauthorized
}

type testClientEnv struct {
	binding  *bdcoap.Binding
	servient *svcore.Servient
	family   *Family
}

func newTestClientEnv(t *testing.T, params svcore.Params) *testClientEnv {
	binding, err := bdcoap.NewBinding(bdcoap.Params{Host: "127.0.0.1"})
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

	servient, err := svcore.NewServient(thing, params, binding)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, servient.Close()) })

	family := NewFamily(FamilyParams{})
	t.Cleanup(func() { require.NoError(t, family.Close()) })

	return &testClientEnv{
		binding:  binding,
		servient: servient,
		family:   family,
	}
}

func (e *testClientEnv) uri() string {
	return e.servient.Description().Metadata.Protocols["CoAP"].URI
}

func (e *testClientEnv) newClient(t *testing.T, params clcore.Params) clcore.Client {
	client, err := e.family.NewClient(e.uri(), e.servient.Description(), params)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	return client
}

func wait(t *testing.T, future *clcore.Future) clcore.Result {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := future.Wait(ctx)
	require.NoError(t, err)

	return r
}

func TestClientGetPutAction(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	invoked := make(chan string, 1)
	require.NoError(t, env.servient.OnInvoke("fadeIn", func(_ context.Context, c thcore.Content) error {
		invoked <- c.String()
		return nil
	}))

	r := wait(t, client.Put("red", thcore.NewTextContent("17")))
	require.NoError(t, r.Err)

	r = wait(t, client.Get("red"))
	require.NoError(t, r.Err)
	require.Equal(t, "17", r.Content.String())
	require.Equal(t, thcore.MediaTypeTextPlain, r.Content.Type)

	r = wait(t, client.Action("fadeIn", thcore.NewTextContent("3")))
	require.NoError(t, r.Err)
	require.Equal(t, "OK", r.Content.String())
	require.Equal(t, "3", <-invoked)

	r = wait(t, client.Get("green"))
	require.ErrorIs(t, r.Err, status.StatusNotFound)
}

func TestClientToken(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{Validator: testClientValidator{}})

	r := wait(t, env.newClient(t, clcore.Params{}).Get("red"))
	require.ErrorIs(t, r.Err, status.StatusUnauthorized)

	r = wait(t, env.newClient(t, clcore.Params{Token: "valid"}).Get("red"))
	require.NoError(t, r.Err)
	require.Equal(t, "0", r.Content.String())
}

func TestClientObserve(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	var (
		mu     sync.Mutex
		values []string
	)

	future := client.Observe("red", func(r clcore.Result) {
		if r.Err != nil {
			return
		}

		mu.Lock()
		values = append(values, r.Content.String())
		mu.Unlock()
	})

	r := wait(t, future)
	require.NoError(t, r.Err)
	require.Equal(t, clcore.OpObserve, r.Op)
	require.Equal(t, "0", r.Content.String())

	path := svcore.PropertyURL("led", "red")
	require.Eventually(t, func() bool {
		return env.binding.ObserverCount(path) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, env.servient.SetPropertyByName("red", thcore.NewTextContent("99")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(values) > 0 && values[len(values)-1] == "99"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, client.ObserveRelease("red"))
	require.ErrorIs(t, client.ObserveRelease("red"), status.StatusNotSupported)

	require.Eventually(t, func() bool {
		return env.binding.ObserverCount(path) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClientObserveFailedFirstNotification(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{Validator: testClientValidator{}})
	client := env.newClient(t, clcore.Params{Token: "invalid"})

	r := wait(t, client.Observe("red", nil))
	require.Error(t, r.Err)

	require.ErrorIs(t, client.ObserveRelease("red"), status.StatusNotSupported)
	require.Equal(t, 0, env.binding.ObserverCount(svcore.PropertyURL("led", "red")))
}

func TestClientObserveErrorNotificationDropsSubscription(t *testing.T) {
	validator := &testRevocableValidator{}

	env := newTestClientEnv(t, svcore.Params{Validator: validator})
	client := env.newClient(t, clcore.Params{Token: "valid"})

	failures := make(chan error, 1)

	r := wait(t, client.Observe("red", func(r clcore.Result) {
		if r.Err != nil {
			select {
			case failures <- r.Err:
			default:
			}
		}
	}))
	require.NoError(t, r.Err)

	path := svcore.PropertyURL("led", "red")
	require.Eventually(t, func() bool {
		return env.binding.ObserverCount(path) == 1
	}, 5*time.Second, 10*time.Millisecond)

	validator.revoked.Store(true)
	require.NoError(t, env.servient.SetPropertyByName("red", thcore.NewTextContent("99")))

	select {
	case err := <-failures:
		require.ErrorIs(t, err, status.StatusUnauthorized)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no error notification")
	}

	require.ErrorIs(t, client.ObserveRelease("red"), status.StatusNotSupported)

	require.Eventually(t, func() bool {
		return env.binding.ObserverCount(path) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClientObserveReleaseWithoutSubscription(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})
	client := env.newClient(t, clcore.Params{})

	require.ErrorIs(t, client.ObserveRelease("red"), status.StatusNotSupported)
}

func TestClientClosed(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})

	client, err := env.family.NewClient(env.uri(), env.servient.Description(), clcore.Params{})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	r := wait(t, client.Get("red"))
	require.ErrorIs(t, r.Err, status.StatusClosed)
}

func TestFetcher(t *testing.T) {
	env := newTestClientEnv(t, svcore.Params{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	desc, err := thdesc.FromURL(ctx, Fetcher{}, env.uri())
	require.NoError(t, err)
	require.Equal(t, "led", desc.Metadata.Name)
	require.Len(t, desc.Properties(), 1)
}

func TestSplitURI(t *testing.T) {
	addr, path, err := splitURI("coap://led.local/things/led")
	require.NoError(t, err)
	require.Equal(t, "led.local:5683", addr)
	require.Equal(t, "/things/led", path)

	_, _, err = splitURI("/things/led")
	require.ErrorIs(t, err, status.StatusInvalidArg)
}
