package htclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/status"
)

func TestURLFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/things/led" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = w.Write([]byte(`{"name":"led"}`))
	}))
	defer server.Close()

	fetcher := NewURLFetcher(NewDefaultClient(0))

	data, err := fetcher.Fetch(context.Background(), server.URL+"/things/led")
	require.NoError(t, err)
	require.Equal(t, `{"name":"led"}`, string(data))

	_, err = fetcher.Fetch(context.Background(), server.URL+"/things/lamp")
	require.ErrorIs(t, err, status.StatusTransport)

	_, err = fetcher.Fetch(context.Background(), "://bad")
	require.ErrorIs(t, err, status.StatusInvalidArg)
}
