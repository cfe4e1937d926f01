package clcoap

import (
	"context"
	"fmt"

	"github.com/plgd-dev/go-coap/v2/udp"

	"github.com/open-control-systems/thingweb/components/status"
)

// Fetcher fetches documents from CoAP endpoints, e.g. "coap://host:5683/things/led".
type Fetcher struct{}

// Fetch dials the endpoint, reads the resource and closes the connection.
func (Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	addr, path, err := splitURI(uri)
	if err != nil {
		return nil, err
	}

	conn, err := udp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("coap-fetcher: failed to dial: addr=%s: %v: %w",
			addr, err, status.StatusTransport)
	}
	defer conn.Close()

	msg, err := conn.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("coap-fetcher: failed to fetch: uri=%s: %v: %w",
			uri, err, status.StatusTransport)
	}

	content, err := readResponse(msg)
	if err != nil {
		return nil, err
	}

	return content.Payload, nil
}
