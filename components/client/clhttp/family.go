package clhttp

import (
	"fmt"
	"net/url"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/http/htclient"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// DefaultWorkerCount is the default number of concurrently running requests.
const DefaultWorkerCount = 5

// FamilyParams represents various options for the HTTP client family.
type FamilyParams struct {
	// WorkerCount - maximum number of concurrently running requests, DefaultWorkerCount if zero.
	WorkerCount int

	// Resolver - if set, resolves ".local" hostnames.
	Resolver sysnet.Resolver
}

// Family builds HTTP clients sharing a single worker pool.
type Family struct {
	pool     *syssched.WorkerPool
	resolver sysnet.Resolver
}

// NewFamily is an initialization of Family.
func NewFamily(params FamilyParams) *Family {
	count := params.WorkerCount
	if count == 0 {
		count = DefaultWorkerCount
	}

	return &Family{
		pool:     syssched.NewWorkerPool("http-client", count),
		resolver: params.Resolver,
	}
}

// Schemes returns "http" and "https".
func (*Family) Schemes() []string {
	return []string{"http", "https"}
}

// NewClient builds the HTTP client for the thing reachable at uri.
func (f *Family) NewClient(
	uri string,
	desc *thdesc.Description,
	params clcore.Params,
) (clcore.Client, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("http-client: invalid uri=%q: %w", uri, status.StatusInvalidArg)
	}

	var client *htclient.HTTPClient
	if f.resolver != nil {
		client = htclient.NewResolveClient(f.resolver, params.Timeout)
	} else {
		client = htclient.NewDefaultClient(params.Timeout)
	}

	return &Client{
		pool:         f.pool,
		client:       client,
		token:        params.Token,
		interactions: clcore.NewInteractions(uri, desc),
	}, nil
}

// Close waits for the pending requests of all clients.
func (f *Family) Close() error {
	return f.pool.Close()
}
