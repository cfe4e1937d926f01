package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-control-systems/thingweb/components/client/clcoap"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/client/clfactory"
	"github.com/open-control-systems/thingweb/components/client/clhttp"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/http/htclient"
	"github.com/open-control-systems/thingweb/components/storage/stcore"
	"github.com/open-control-systems/thingweb/components/system/sysmdns"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

const descriptionBucket = "descriptions"

type clientEnv struct {
	factory *clfactory.Factory
	loader  *thdesc.CachingLoader
}

// newClientEnv builds the client factory and the description loader.
//
// Remarks:
//   - If mDNS is enabled, ".local" hosts are resolved from the browsed services.
func newClientEnv(
	ctx context.Context,
	cfg *config,
	closer *core.FanoutCloser,
	handlers ...sysmdns.ServiceHandler,
) (*clientEnv, error) {
	var (
		resolver  sysnet.Resolver
		resolveDB *sysnet.ResolveStore
	)

	if cfg.MdnsEnabled {
		resolveDB = sysnet.NewResolveStore()
		resolver = resolveDB

		fanout := &sysmdns.FanoutServiceHandler{}
		fanout.Add(sysmdns.NewResolveServiceHandler(resolveDB))
		for _, h := range handlers {
			fanout.Add(h)
		}

		if err := startBrowser(ctx, cfg, closer, fanout); err != nil {
			return nil, err
		}
	}

	httpFamily := clhttp.NewFamily(clhttp.FamilyParams{Resolver: resolver})
	closer.Add("http-client-family", httpFamily)

	coapFamily := clcoap.NewFamily(clcoap.FamilyParams{})
	closer.Add("coap-client-family", coapFamily)

	var db stcore.DB = &stcore.NoopDB{}
	if cfg.CachePath != "" {
		bdb, err := stcore.NewBboltDB(cfg.CachePath, nil)
		if err != nil {
			return nil, err
		}
		closer.Add("bbolt-db", core.FuncCloser(bdb.Close))

		db = stcore.NewBboltDBBucket(bdb, descriptionBucket)
	}

	httpFetcher := htclient.NewURLFetcher(newHTTPClient(resolver, cfg))

	return &clientEnv{
		factory: clfactory.NewFactory(httpFamily, coapFamily),
		loader: thdesc.NewCachingLoader(clfactory.SchemeFetcher{
			"http":  httpFetcher,
			"https": httpFetcher,
			"coap":  clcoap.Fetcher{},
		}, db),
	}, nil
}

func newHTTPClient(resolver sysnet.Resolver, cfg *config) *htclient.HTTPClient {
	if resolver != nil {
		return htclient.NewResolveClient(resolver, cfg.Timeout)
	}

	return htclient.NewDefaultClient(cfg.Timeout)
}

func startBrowser(
	ctx context.Context,
	cfg *config,
	closer *core.FanoutCloser,
	handler sysmdns.ServiceHandler,
) error {
	browser, err := sysmdns.NewBrowser(ctx, handler, sysmdns.BrowserParams{
		Service: sysnet.MdnsServiceName(sysnet.MdnsServiceTypeWoT, sysnet.MdnsProtoTCP),
		Domain:  cfg.MdnsDomain,
		Timeout: cfg.MdnsTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create mDNS browser: %w", err)
	}

	runner := syssched.NewAsyncTaskRunner(ctx, browser, browser, syssched.AsyncTaskRunnerParams{
		UpdateInterval: cfg.MdnsTimeout * 2,
	})
	if err := runner.Start(); err != nil {
		return err
	}
	closer.Add("mdns-browser", runner)

	return nil
}

// newClient builds the client from the description at source: URL or file path.
func (e *clientEnv) newClient(
	ctx context.Context,
	cfg *config,
	source string,
) (clcore.Client, error) {
	params := clcore.Params{
		Timeout: cfg.Timeout,
		Token:   cfg.Token,
	}

	if strings.Contains(source, "://") {
		return e.factory.FromURL(ctx, e.loader, source, params)
	}

	return e.factory.FromFile(source, params)
}

func closeAll(closer *core.FanoutCloser) {
	if err := closer.Close(); err != nil {
		core.LogErr.Printf("thingweb: failed to close resources: %v\n", err)
	}
}
