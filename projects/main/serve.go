package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/thingweb/components/binding/bdcoap"
	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/binding/bdhttp"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/security/secjwt"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/servient/svmetrics"
	"github.com/open-control-systems/thingweb/components/storage/stinfluxdb"
	"github.com/open-control-systems/thingweb/components/system/sysmdns"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

func newServeCmd(cfg *config) *cobra.Command {
	var descPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the thing over HTTP and CoAP",
		Long: "Expose the thing over HTTP and CoAP.\n" +
			"The demo LED is served unless a description file is provided.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, descPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&descPath, "description", "", "thing description file (JSON or YAML)")
	flags.StringVar(&cfg.Host, "host", cfg.Host, "host to listen on")
	flags.StringVar(&cfg.PublicHost, "public-host", cfg.PublicHost, "host announced in the description")
	flags.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "HTTP port")
	flags.IntVar(&cfg.CoAPPort, "coap-port", cfg.CoAPPort, "CoAP port")

	return cmd
}

func runServe(ctx context.Context, cfg *config, descPath string) error {
	closer := &core.FanoutCloser{}
	defer closeAll(closer)

	thing, err := newServedThing(descPath)
	if err != nil {
		return err
	}

	metrics, err := svmetrics.NewListener()
	if err != nil {
		return err
	}

	httpBinding, err := bdhttp.NewBinding(bdhttp.Params{
		Host:       cfg.Host,
		Port:       cfg.HTTPPort,
		PublicHost: cfg.PublicHost,
		Metrics:    metrics.Handler(),
	})
	if err != nil {
		return err
	}

	coapBinding, err := bdcoap.NewBinding(bdcoap.Params{
		Host:       cfg.Host,
		Port:       cfg.CoAPPort,
		PublicHost: cfg.PublicHost,
	})
	if err != nil {
		_ = httpBinding.Close()
		return err
	}

	servient, err := newServient(cfg, thing, httpBinding, coapBinding)
	if err != nil {
		_ = coapBinding.Close()
		_ = httpBinding.Close()
		return err
	}
	closer.Add("servient", servient)
	closer.Add("http-binding", httpBinding)
	closer.Add("coap-binding", coapBinding)

	if err := servient.AddInteractionListener(metrics); err != nil {
		return err
	}

	if cfg.InfluxURL != "" {
		recorder := stinfluxdb.NewRecorder(ctx, stinfluxdb.DBParams{
			URL:    cfg.InfluxURL,
			Org:    cfg.InfluxOrg,
			Token:  cfg.InfluxToken,
			Bucket: cfg.InfluxBucket,
		})
		closer.Add("influxdb-recorder", recorder)

		if err := servient.AddInteractionListener(recorder); err != nil {
			return err
		}
	}

	if thing.Name() == ledName {
		if err := bindLED(servient, newLED()); err != nil {
			return err
		}
	}

	if err := httpBinding.Start(); err != nil {
		return err
	}
	if err := coapBinding.Start(); err != nil {
		return err
	}

	if cfg.MdnsEnabled {
		if err := advertise(cfg, closer, thing.Name(), httpBinding.Port(), coapBinding.Port()); err != nil {
			core.LogWrn.Printf("thingweb: mDNS advertising disabled: %v\n", err)
		}
	}

	core.LogInf.Printf("thingweb: serving: thing=%s http=%s coap=%s\n",
		thing.Name(), httpBinding.Base(), coapBinding.Base())

	<-ctx.Done()

	return nil
}

func newServedThing(descPath string) (*thcore.Thing, error) {
	if descPath == "" {
		return newLEDThing()
	}

	desc, err := thdesc.FromFile(descPath)
	if err != nil {
		return nil, err
	}

	return thcore.NewThingFromDescription(desc)
}

func newServient(
	cfg *config,
	thing *thcore.Thing,
	builders ...bdcore.ResourceBuilder,
) (*svcore.Servient, error) {
	params := svcore.Params{}

	if cfg.JWTSecret != "" {
		validator, err := secjwt.NewValidator(jwtParams(cfg))
		if err != nil {
			return nil, err
		}
		params.Validator = validator
	}

	return svcore.NewServient(thing, params, builders...)
}

func advertise(cfg *config, closer *core.FanoutCloser, name string, httpPort, coapPort int) error {
	path := svcore.ThingURL(name)

	for _, p := range []struct {
		proto  sysnet.MdnsProto
		scheme string
		port   int
	}{
		{proto: sysnet.MdnsProtoTCP, scheme: "http", port: httpPort},
		{proto: sysnet.MdnsProtoUDP, scheme: "coap", port: coapPort},
	} {
		advertiser, err := sysmdns.NewAdvertiser(sysmdns.AdvertiserParams{
			Instance:   name,
			Service:    sysnet.MdnsServiceName(sysnet.MdnsServiceTypeWoT, p.proto),
			Domain:     cfg.MdnsDomain,
			Port:       p.port,
			TxtRecords: sysmdns.DescriptionTxtRecords(path, p.scheme),
		})
		if err != nil {
			return err
		}
		closer.Add(fmt.Sprintf("mdns-advertiser-%s", p.scheme), advertiser)
	}

	return nil
}

func jwtParams(cfg *config) secjwt.Params {
	return secjwt.Params{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}
}
