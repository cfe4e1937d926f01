package main

import (
	"github.com/spf13/cobra"

	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/pipeline/pipthing"
	"github.com/open-control-systems/thingweb/components/storage/stinfluxdb"
	"github.com/open-control-systems/thingweb/components/system/sysmdns"
)

func newPollCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll [description-url...]",
		Short: "Periodically read the properties of the remote things",
		Long: "Periodically read the properties of the remote things.\n" +
			"If mDNS is enabled, the discovered things are polled as well.\n" +
			"Values are stored in influxDB if THINGWEB_INFLUXDB_URL is set, logged otherwise.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd, cfg, args)
		},
	}

	cmd.Flags().DurationVar(&cfg.FetchInterval, "interval", cfg.FetchInterval,
		"how often to read the properties")

	return cmd
}

func runPoll(cmd *cobra.Command, cfg *config, urls []string) error {
	ctx := cmd.Context()

	closer := &core.FanoutCloser{}
	defer closeAll(closer)

	var handler pipthing.DataHandler = pipthing.LogDataHandler{}
	if cfg.InfluxURL != "" {
		recorder := stinfluxdb.NewRecorder(ctx, stinfluxdb.DBParams{
			URL:    cfg.InfluxURL,
			Org:    cfg.InfluxOrg,
			Token:  cfg.InfluxToken,
			Bucket: cfg.InfluxBucket,
		})
		closer.Add("influxdb-recorder", recorder)

		handler = recorder
	}

	var storeHandler sysmdns.FanoutServiceHandler

	env, err := newClientEnv(ctx, cfg, closer, &storeHandler)
	if err != nil {
		return err
	}

	store := pipthing.NewStore(ctx, env.loader, env.factory, handler, pipthing.StoreParams{
		Pipeline: pipthing.PipelineParams{
			FetchInterval: cfg.FetchInterval,
			FetchTimeout:  cfg.Timeout,
		},
		Client: clcore.Params{
			Timeout: cfg.Timeout,
			Token:   cfg.Token,
		},
	})
	closer.Add("thing-pipeline-store", store)

	storeHandler.Add(store)

	for _, url := range urls {
		if err := store.Add(url); err != nil {
			core.LogErr.Printf("thingweb: failed to poll thing: url=%s: %v\n", url, err)
		}
	}

	<-ctx.Done()

	return nil
}
