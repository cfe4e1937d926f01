package bdhttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

type testBindingValidator struct{}

func (testBindingValidator) Validate(_ bdcore.Method, _, token string) (string, error) {
	switch token {
	case "valid":
		return "alice", nil
	case "expired":
		return "", errors.Join(errors.New("key kid-1 rotated"), status.StatusTokenExpired)
	default:
		return "", errors.Join(errors.New("hmac mismatch"), status.StatusUnauthorized)
	}
}

type testBindingListener struct {
	bdcore.BaseListener

	content thcore.Content
}

func (l *testBindingListener) OnGet(_ context.Context) (thcore.Content, error) {
	return l.content, nil
}

func newTestBinding(t *testing.T) *Binding {
	binding, err := NewBinding(Params{Host: "127.0.0.1"})
	require.NoError(t, err)

	require.NoError(t, binding.Start())
	t.Cleanup(func() { require.NoError(t, binding.Close()) })

	return binding
}

func doRequest(
	t *testing.T,
	method, url, token, body string,
) (*http.Response, string) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(data)
}

func newTestLed(t *testing.T) *thcore.Thing {
	thing, err := thcore.NewThing("led")
	require.NoError(t, err)

	blue, err := thcore.NewPropertyBuilder("blue").
		Writeable(true).
		ValueType("xsd:unsignedByte").
		Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddProperty(blue))

	temp, err := thcore.NewPropertyBuilder("temperature").ValueType("xsd:float").Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddProperty(temp))

	fadeIn, err := thcore.NewActionBuilder("fadeIn").Param("value", "xsd:unsignedByte").Build()
	require.NoError(t, err)
	require.NoError(t, thing.AddAction(fadeIn))

	return thing
}

func TestBindingIdentity(t *testing.T) {
	binding := newTestBinding(t)

	require.Equal(t, "HTTP", binding.Identifier())
	require.True(t, strings.HasPrefix(binding.Base(), "http://127.0.0.1:"))
}

func TestBindingNewResource(t *testing.T) {
	binding := newTestBinding(t)

	require.ErrorIs(t, binding.NewResource("/a", nil), status.StatusInvalidArg)
	require.NoError(t, binding.NewResource("/a", &testBindingListener{}))
	require.ErrorIs(t, binding.NewResource("/A", &testBindingListener{}), status.StatusInvalidArg)
}

func TestBindingLedScenario(t *testing.T) {
	binding := newTestBinding(t)

	servient, err := svcore.NewServient(newTestLed(t), svcore.Params{}, binding)
	require.NoError(t, err)
	defer servient.Close()

	var invoked atomic.Int32
	require.NoError(t, servient.OnInvoke("fadeIn", func(context.Context, thcore.Content) error {
		invoked.Add(1)
		return nil
	}))

	base := binding.Base()

	resp, body := doRequest(t, http.MethodPut, base+"/things/led/properties/blue", "", "255")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body)

	value, err := servient.PropertyByName("blue")
	require.NoError(t, err)
	require.Equal(t, "255", value.String())

	resp, body = doRequest(t, http.MethodGet, base+"/Things/LED/properties/blue/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "255", body)
	require.Equal(t, "text/plain", thcore.ParseMediaType(resp.Header.Get("Content-Type")).String())

	resp, body = doRequest(t, http.MethodPost, base+"/things/led/actions/fadeIn", "", "5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", body)
	require.Equal(t, int32(1), invoked.Load())

	resp, body = doRequest(t, http.MethodGet, base+"/things/led/actions/fadeIn", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Action: fadeIn", body)

	resp, _ = doRequest(t, http.MethodPut, base+"/things/led/properties/temperature", "", "1")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodDelete, base+"/things/led/properties/blue", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, body = doRequest(t, http.MethodGet, base+"/things/led", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Contains(t, body, `"name":"led"`)
}

func TestBindingNotFoundListsResources(t *testing.T) {
	binding := newTestBinding(t)

	servient, err := svcore.NewServient(newTestLed(t), svcore.Params{}, binding)
	require.NoError(t, err)
	defer servient.Close()

	resp, body := doRequest(t, http.MethodGet, binding.Base()+"/things/lamp", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "/things/led/properties/blue")
	require.Contains(t, body, "/things/led/actions/fadein")
}

func TestBindingAuthorization(t *testing.T) {
	binding := newTestBinding(t)

	servient, err := svcore.NewServient(newTestLed(t), svcore.Params{
		Validator: testBindingValidator{},
	}, binding)
	require.NoError(t, err)
	defer servient.Close()

	url := binding.Base() + "/things/led/properties/blue"

	resp, body := doRequest(t, http.MethodGet, url, "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	require.NotContains(t, body, "hmac")

	resp, body = doRequest(t, http.MethodGet, url, "expired", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token expired", body)

	resp, body = doRequest(t, http.MethodGet, url, "valid", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "0", body)
}

func TestBindingMetricsEndpoint(t *testing.T) {
	binding, err := NewBinding(Params{
		Host: "127.0.0.1",
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	})
	require.NoError(t, err)
	require.NoError(t, binding.Start())
	defer binding.Close()

	resp, body := doRequest(t, http.MethodGet, binding.Base()+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "metrics", body)
}
