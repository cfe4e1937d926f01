package httransport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/status"
)

type testResolver struct {
	addr net.Addr
	err  error
}

func (r *testResolver) Resolve(_ context.Context, _ string) (net.Addr, error) {
	return r.addr, r.err
}

type testRoundTripper struct {
	req *http.Request
}

func (rt *testRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.req = req

	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestResolveRoundTripperLocalHost(t *testing.T) {
	rt := &testRoundTripper{}
	tripper := NewResolveRoundTripper(&testResolver{
		addr: &net.IPAddr{IP: net.IPv4(192, 168, 4, 2)},
	}, rt)

	req, err := http.NewRequest(http.MethodGet, "http://led.local:8080/things/led", nil)
	require.NoError(t, err)

	resp, err := tripper.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, "192.168.4.2:8080", rt.req.URL.Host)
	require.Equal(t, "led.local:8080", rt.req.Host)
	require.Equal(t, "led.local:8080", req.URL.Host)
}

func TestResolveRoundTripperOtherHost(t *testing.T) {
	rt := &testRoundTripper{}
	tripper := NewResolveRoundTripper(&testResolver{err: errors.New("unused")}, rt)

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:8080/things/led", nil)
	require.NoError(t, err)

	_, err = tripper.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", rt.req.URL.Host)
}

func TestResolveRoundTripperResolveFailed(t *testing.T) {
	tripper := NewResolveRoundTripper(&testResolver{err: status.StatusTimeout},
		&testRoundTripper{})

	req, err := http.NewRequest(http.MethodGet, "http://led.local/things/led", nil)
	require.NoError(t, err)

	_, err = tripper.RoundTrip(req)
	require.ErrorIs(t, err, status.StatusTransport)
}
