package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdhttp"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

type testLEDEnv struct {
	led      *led
	servient *svcore.Servient
	client   clcore.Client
}

func newTestLEDEnv(t *testing.T) *testLEDEnv {
	binding, err := bdhttp.NewBinding(bdhttp.Params{Host: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, binding.Start())
	t.Cleanup(func() { require.NoError(t, binding.Close()) })

	thing, err := newLEDThing()
	require.NoError(t, err)

	servient, err := svcore.NewServient(thing, svcore.Params{}, binding)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, servient.Close()) })

	l := newLED()
	require.NoError(t, bindLED(servient, l))

	closer := &core.FanoutCloser{}
	t.Cleanup(func() { require.NoError(t, closer.Close()) })

	env, err := newClientEnv(context.Background(), &config{Timeout: time.Second}, closer)
	require.NoError(t, err)

	client, err := env.factory.FromDescription(servient.Description(), clcore.Params{})
	require.NoError(t, err)
	closer.Add("client", client)

	return &testLEDEnv{
		led:      l,
		servient: servient,
		client:   client,
	}
}

func waitResult(t *testing.T, future *clcore.Future) clcore.Result {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := future.Wait(ctx)
	require.NoError(t, err)

	return r
}

func TestLEDThing(t *testing.T) {
	thing, err := newLEDThing()
	require.NoError(t, err)
	require.Equal(t, ledName, thing.Name())
	require.Len(t, thing.Properties(), 4)
	require.Len(t, thing.Actions(), 3)

	for _, name := range []string{"red", "green", "blue", "brightness"} {
		prop := thing.Property(name)
		require.NotNil(t, prop)
		require.True(t, prop.Readable())
		require.True(t, prop.Writeable())
	}
}

func TestLEDSetColor(t *testing.T) {
	env := newTestLEDEnv(t)

	r := waitResult(t, env.client.Put("blue", thcore.NewTextContent("255")))
	require.NoError(t, r.Err)
	require.Equal(t, uint8(255), env.led.color("blue"))

	r = waitResult(t, env.client.Get("blue"))
	require.NoError(t, r.Err)
	require.Equal(t, "255", r.Content.String())

	r = waitResult(t, env.client.Get("red"))
	require.NoError(t, r.Err)
	require.Equal(t, "0", r.Content.String())
}

func TestLEDInvalidColor(t *testing.T) {
	env := newTestLEDEnv(t)

	r := waitResult(t, env.client.Put("green", thcore.NewTextContent("256")))
	require.NoError(t, r.Err)
	require.Equal(t, uint8(0), env.led.color("green"))
}

func TestLEDFade(t *testing.T) {
	env := newTestLEDEnv(t)

	r := waitResult(t, env.client.Action("fadeIn", thcore.NewTextContent("2")))
	require.NoError(t, r.Err)
	require.Equal(t, uint8(ledMaxBrightness), env.led.getBrightness())

	v, err := env.servient.PropertyByName("brightness")
	require.NoError(t, err)
	require.Equal(t, "255", v.String())

	r = waitResult(t, env.client.Action("fadeOut", thcore.NewTextContent("")))
	require.NoError(t, r.Err)
	require.Equal(t, uint8(0), env.led.getBrightness())

	r = waitResult(t, env.client.Action("fadeIn", thcore.NewTextContent("slow")))
	require.ErrorIs(t, r.Err, status.StatusError)
}

func TestLEDOnOff(t *testing.T) {
	env := newTestLEDEnv(t)

	r := waitResult(t, env.client.Action("ledOnOff", thcore.NewTextContent("true")))
	require.NoError(t, r.Err)
	require.True(t, env.led.isOn())

	r = waitResult(t, env.client.Action("ledOnOff", thcore.NewTextContent(`"false"`)))
	require.NoError(t, r.Err)
	require.False(t, env.led.isOn())
}
