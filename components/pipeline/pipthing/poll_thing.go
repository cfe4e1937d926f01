package pipthing

import (
	"context"
	"fmt"
	"time"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// PollThing reads all properties of the remote thing.
type PollThing struct {
	ctx     context.Context
	desc    *thdesc.Description
	client  clcore.Client
	handler DataHandler
	timeout time.Duration
}

// NewPollThing is an initialization of PollThing.
//
// Parameters:
//   - ctx - parent context.
//   - desc - remote thing description.
//   - client to read the remote properties.
//   - handler to handle the property values.
//   - timeout - how long to wait for the property values.
func NewPollThing(
	ctx context.Context,
	desc *thdesc.Description,
	client clcore.Client,
	handler DataHandler,
	timeout time.Duration,
) *PollThing {
	return &PollThing{
		ctx:     ctx,
		desc:    desc,
		client:  client,
		handler: handler,
		timeout: timeout,
	}
}

// Run reads properties and passes the values to the underlying handler.
//
// Remarks:
//   - All properties are requested at once.
//   - Failed properties are logged and skipped.
//   - Returns status.StatusNoData if no property has been read.
func (p *PollThing) Run() error {
	props := p.desc.Properties()

	futures := make([]*clcore.Future, 0, len(props))
	for _, prop := range props {
		futures = append(futures, p.client.Get(prop.Name))
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	values := make(map[string]thcore.Content)

	for _, future := range futures {
		r, err := future.Wait(ctx)
		if err != nil {
			return fmt.Errorf("poll-thing: failed to wait properties: thing=%s: %w",
				p.desc.Metadata.Name, err)
		}
		if r.Failed() {
			core.LogWrn.Printf("poll-thing: failed to read property: thing=%s name=%s: %v\n",
				p.desc.Metadata.Name, r.Name, r.Err)

			continue
		}

		values[r.Name] = r.Content
	}

	if len(values) == 0 {
		return fmt.Errorf("poll-thing: no properties read: thing=%s: %w",
			p.desc.Metadata.Name, status.StatusNoData)
	}

	return p.handler.HandleData(p.desc.Metadata.Name, values)
}
