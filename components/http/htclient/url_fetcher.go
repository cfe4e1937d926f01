package htclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/open-control-systems/thingweb/components/status"
)

// URLFetcher fetches documents from HTTP endpoints.
type URLFetcher struct {
	client *HTTPClient
}

// NewURLFetcher is an initialization of URLFetcher.
//
// Parameters:
//   - client to perform an actual HTTP request.
func NewURLFetcher(client *HTTPClient) *URLFetcher {
	return &URLFetcher{
		client: client,
	}
}

// Fetch fetches data from the HTTP resource.
func (f *URLFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("url-fetcher: invalid request: url=%s: %v: %w",
			url, err, status.StatusInvalidArg)
	}

	resp, body, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("url-fetcher: failed to fetch: url=%s: %v: %w",
			url, err, status.StatusTransport)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("url-fetcher: failed to fetch: url=%s code=%d: %w",
			url, resp.StatusCode, status.StatusTransport)
	}

	return body, nil
}
