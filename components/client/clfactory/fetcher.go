package clfactory

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// SchemeFetcher selects the fetcher by the URL scheme.
type SchemeFetcher map[string]thdesc.Fetcher

// Fetch fetches url with the fetcher registered for its scheme.
func (f SchemeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("scheme-fetcher: invalid url=%q: %w", rawURL, status.StatusInvalidArg)
	}

	fetcher, ok := f[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("scheme-fetcher: scheme=%q: %w",
			u.Scheme, status.StatusUnsupportedProtocol)
	}

	return fetcher.Fetch(ctx, rawURL)
}
