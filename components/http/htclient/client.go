package htclient

import (
	"io"
	"net/http"
	"time"

	"github.com/open-control-systems/thingweb/components/http/httransport"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
)

const maxBodySize = 4 << 20

// HTTPClient is a standard HTTP client wrapper to simplify response reading.
type HTTPClient struct {
	http.Client
}

// NewDefaultClient is a general purpose HTTP client.
//
// Parameters:
//   - timeout - request timeout, zero means no timeout.
func NewDefaultClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		Client: http.Client{Timeout: timeout},
	}
}

// NewResolveClient is an HTTP client with custom resolving rules for ".local" hosts.
func NewResolveClient(resolver sysnet.Resolver, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		Client: http.Client{
			Timeout:   timeout,
			Transport: httransport.NewResolveRoundTripper(resolver, http.DefaultTransport),
		},
	}
}

// Do sends a request, receives a response, and fully reads the response body.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, err
	}

	return resp, body, nil
}
