package pipthing

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/sysmdns"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// Loader loads descriptions by URL.
type Loader interface {
	Load(ctx context.Context, url string) (*thdesc.Description, error)
}

// ClientBuilder builds the client for the remote thing.
type ClientBuilder interface {
	FromDescription(desc *thdesc.Description, params clcore.Params) (clcore.Client, error)
}

// StoreParams represents various options for Store.
type StoreParams struct {
	// Pipeline - options of every added pipeline.
	Pipeline PipelineParams

	// Client - options of every built client.
	Client clcore.Params
}

// Store allows to add/remove thing pipelines.
//
// Remarks:
//   - Pipelines are keyed by the description URL.
//   - Store is a sysmdns.ServiceHandler, discovered things are added automatically.
type Store struct {
	ctx     context.Context
	loader  Loader
	builder ClientBuilder
	handler DataHandler
	params  StoreParams

	mu        sync.Mutex
	pipelines map[string]*Pipeline
	closed    bool
}

// NewStore is an initialization of Store.
//
// Parameters:
//   - ctx - parent context.
//   - loader to load thing descriptions.
//   - builder to build clients from the descriptions.
//   - handler to handle the property values.
//   - params - various store options.
func NewStore(
	ctx context.Context,
	loader Loader,
	builder ClientBuilder,
	handler DataHandler,
	params StoreParams,
) *Store {
	return &Store{
		ctx:       ctx,
		loader:    loader,
		builder:   builder,
		handler:   handler,
		params:    params,
		pipelines: make(map[string]*Pipeline),
	}
}

// Add starts polling the thing described at url.
//
// Remarks:
//   - Returns status.StatusInvalidArg if the url is already added.
func (s *Store) Add(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("thing-pipeline-store: store is closed: %w", status.StatusClosed)
	}

	if _, ok := s.pipelines[url]; ok {
		return fmt.Errorf("thing-pipeline-store: thing already exists: url=%s: %w",
			url, status.StatusInvalidArg)
	}

	desc, err := s.loader.Load(s.ctx, url)
	if err != nil {
		return fmt.Errorf("thing-pipeline-store: failed to load description: url=%s: %w",
			url, err)
	}

	client, err := s.builder.FromDescription(desc, s.params.Client)
	if err != nil {
		return fmt.Errorf("thing-pipeline-store: failed to build client: url=%s: %w",
			url, err)
	}

	pipeline := NewPipeline(s.ctx, desc, client, s.handler, s.params.Pipeline)
	if err := pipeline.Start(); err != nil {
		return err
	}

	s.pipelines[url] = pipeline

	core.LogInf.Printf("thing-pipeline-store: thing added: url=%s thing=%s\n",
		url, pipeline.Name())

	return nil
}

// Remove stops polling the thing described at url.
func (s *Store) Remove(url string) error {
	s.mu.Lock()
	pipeline, ok := s.pipelines[url]
	delete(s.pipelines, url)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("thing-pipeline-store: thing not found: url=%s: %w",
			url, status.StatusNotFound)
	}

	return pipeline.Close()
}

// URLs returns description URLs of the added things in sorted order.
func (s *Store) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, len(s.pipelines))
	for url := range s.pipelines {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	return urls
}

// HandleService adds the thing announced by the mDNS service.
//
// Remarks:
//   - Repeated announcements of an added thing are ignored.
func (s *Store) HandleService(service sysmdns.Service) error {
	url, err := sysmdns.DescriptionURL(service)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.pipelines[url]
	s.mu.Unlock()

	if ok {
		return nil
	}

	return s.Add(url)
}

// Close stops all pipelines.
func (s *Store) Close() error {
	s.mu.Lock()
	pipelines := s.pipelines
	s.pipelines = make(map[string]*Pipeline)
	s.closed = true
	s.mu.Unlock()

	for url, pipeline := range pipelines {
		if err := pipeline.Close(); err != nil {
			core.LogErr.Printf("thing-pipeline-store: failed to close pipeline: url=%s: %v\n",
				url, err)
		}
	}

	return nil
}
