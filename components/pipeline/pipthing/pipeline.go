package pipthing

import (
	"context"
	"time"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

// PipelineParams represents various options for Pipeline.
type PipelineParams struct {
	// FetchInterval - how often to read the properties.
	FetchInterval time.Duration

	// FetchTimeout - how long to wait for the property values.
	FetchTimeout time.Duration
}

// Pipeline periodically reads the properties of the remote thing.
type Pipeline struct {
	name   string
	client clcore.Client
	runner *syssched.AsyncTaskRunner
}

// NewPipeline initializes the thing pipeline.
//
// Parameters:
//   - ctx - parent context.
//   - desc - remote thing description.
//   - client to read the remote properties, closed with the pipeline.
//   - handler to handle the property values.
//   - params - various pipeline options.
func NewPipeline(
	ctx context.Context,
	desc *thdesc.Description,
	client clcore.Client,
	handler DataHandler,
	params PipelineParams,
) *Pipeline {
	p := &Pipeline{
		name:   desc.Metadata.Name,
		client: client,
	}

	p.runner = syssched.NewAsyncTaskRunner(
		ctx,
		NewPollThing(ctx, desc, client, handler, params.FetchTimeout),
		p,
		syssched.AsyncTaskRunnerParams{
			UpdateInterval: params.FetchInterval,
		},
	)

	return p
}

// Name returns the remote thing name.
func (p *Pipeline) Name() string {
	return p.name
}

// Start begins asynchronous property polling.
func (p *Pipeline) Start() error {
	core.LogInf.Printf("thing-pipeline: starting: thing=%s\n", p.name)

	return p.runner.Start()
}

// Close stops polling and closes the client.
func (p *Pipeline) Close() error {
	if err := p.runner.Stop(); err != nil {
		return err
	}

	core.LogInf.Printf("thing-pipeline: stopped: thing=%s\n", p.name)

	return p.client.Close()
}

// HandleError logs polling errors.
func (p *Pipeline) HandleError(err error) {
	core.LogErr.Printf("thing-pipeline: failed to poll thing: thing=%s: %v\n", p.name, err)
}
