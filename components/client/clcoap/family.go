package clcoap

import (
	"fmt"
	"net"
	"net/url"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

const (
	// DefaultWorkerCount is the default number of concurrently running requests.
	DefaultWorkerCount = 5

	defaultPort = "5683"
)

// FamilyParams represents various options for the CoAP client family.
type FamilyParams struct {
	// WorkerCount - maximum number of concurrently running requests, DefaultWorkerCount if zero.
	WorkerCount int
}

// Family builds CoAP clients sharing a single worker pool.
type Family struct {
	pool *syssched.WorkerPool
}

// NewFamily is an initialization of Family.
func NewFamily(params FamilyParams) *Family {
	count := params.WorkerCount
	if count == 0 {
		count = DefaultWorkerCount
	}

	return &Family{
		pool: syssched.NewWorkerPool("coap-client", count),
	}
}

// Schemes returns "coap" and "coaps".
func (*Family) Schemes() []string {
	return []string{"coap", "coaps"}
}

// NewClient builds the CoAP client for the thing reachable at uri.
//
// Remarks:
//   - The connection is established on the first request.
func (f *Family) NewClient(
	uri string,
	desc *thdesc.Description,
	params clcore.Params,
) (clcore.Client, error) {
	addr, path, err := splitURI(uri)
	if err != nil {
		return nil, err
	}

	return newClient(f.pool, addr, clcore.NewInteractions(path, desc), params), nil
}

// Close waits for the pending requests of all clients.
func (f *Family) Close() error {
	return f.pool.Close()
}

func splitURI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Hostname() == "" {
		return "", "", fmt.Errorf("coap-client: invalid uri=%q: %w", uri, status.StatusInvalidArg)
	}

	port := u.Port()
	if port == "" {
		port = defaultPort
	}

	return net.JoinHostPort(u.Hostname(), port), u.Path, nil
}
