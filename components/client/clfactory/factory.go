package clfactory

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// Loader loads descriptions by URL.
type Loader interface {
	Load(ctx context.Context, url string) (*thdesc.Description, error)
}

// Factory builds the remote client for a thing from its description.
//
// Remarks:
//   - The client is selected by the smallest protocol priority among the protocols
//     with a registered family.
//   - Protocols are visited in the sorted order of their names, on a priority collision
//     the later one wins.
type Factory struct {
	families map[string]clcore.Family
}

// NewFactory is an initialization of Factory.
//
// Parameters:
//   - families to build clients, the later family wins if schemes overlap.
func NewFactory(families ...clcore.Family) *Factory {
	f := &Factory{
		families: make(map[string]clcore.Family),
	}

	for _, family := range families {
		for _, scheme := range family.Schemes() {
			f.families[strings.ToLower(scheme)] = family
		}
	}

	return f
}

// FromDescription builds the client for the thing described by desc.
//
// Remarks:
//   - Returns status.StatusUnsupportedProtocol if no protocol has a family to serve it.
//   - Clients built but not selected are closed.
func (f *Factory) FromDescription(
	desc *thdesc.Description,
	params clcore.Params,
) (clcore.Client, error) {
	if desc == nil {
		return nil, fmt.Errorf("client-factory: nil description: %w", status.StatusInvalidArg)
	}

	candidates := make(map[int]clcore.Client)

	for _, proto := range desc.Protocols() {
		if proto.URI == "" {
			continue
		}

		family := f.familyOf(proto.URI)
		if family == nil {
			core.LogDbg.Printf("client-factory: unsupported protocol: thing=%s name=%s uri=%s\n",
				desc.Metadata.Name, proto.Name, proto.URI)
			continue
		}

		client, err := family.NewClient(proto.URI, desc, params)
		if err != nil {
			core.LogWrn.Printf("client-factory: failed to build client: thing=%s name=%s: %v\n",
				desc.Metadata.Name, proto.Name, err)
			continue
		}

		if prev, ok := candidates[proto.Priority]; ok {
			closeClient(prev)
		}
		candidates[proto.Priority] = client
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("client-factory: thing=%s: %w",
			desc.Metadata.Name, status.StatusUnsupportedProtocol)
	}

	priorities := make([]int, 0, len(candidates))
	for priority := range candidates {
		priorities = append(priorities, priority)
	}
	sort.Ints(priorities)

	for _, priority := range priorities[1:] {
		closeClient(candidates[priority])
	}

	return candidates[priorities[0]], nil
}

// FromBytes builds the client from the JSON description document.
func (f *Factory) FromBytes(data []byte, params clcore.Params) (clcore.Client, error) {
	desc, err := thdesc.FromBytes(data)
	if err != nil {
		return nil, err
	}

	return f.FromDescription(desc, params)
}

// FromFile builds the client from the description file, JSON or YAML.
func (f *Factory) FromFile(path string, params clcore.Params) (clcore.Client, error) {
	desc, err := thdesc.FromFile(path)
	if err != nil {
		return nil, err
	}

	return f.FromDescription(desc, params)
}

// FromURL builds the client from the description loaded by loader.
func (f *Factory) FromURL(
	ctx context.Context,
	loader Loader,
	url string,
	params clcore.Params,
) (clcore.Client, error) {
	desc, err := loader.Load(ctx, url)
	if err != nil {
		return nil, err
	}

	return f.FromDescription(desc, params)
}

func (f *Factory) familyOf(uri string) clcore.Family {
	u, err := url.Parse(uri)
	if err != nil {
		return nil
	}

	return f.families[strings.ToLower(u.Scheme)]
}

func closeClient(client clcore.Client) {
	if err := client.Close(); err != nil {
		core.LogWrn.Printf("client-factory: failed to close client: %v\n", err)
	}
}
