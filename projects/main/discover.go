package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/thingweb/components/system/sysmdns"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
)

func newDiscoverCmd(cfg *config) *cobra.Command {
	var udp bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Browse the local network for things",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proto := sysnet.MdnsProtoTCP
			if udp {
				proto = sysnet.MdnsProtoUDP
			}

			return runDiscover(cmd, cfg, proto)
		},
	}

	cmd.Flags().BoolVar(&udp, "udp", false, "browse things reachable over UDP, e.g. CoAP")

	return cmd
}

func runDiscover(cmd *cobra.Command, cfg *config, proto sysnet.MdnsProto) error {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)

	handler := sysmdns.FuncServiceHandler(func(service sysmdns.Service) error {
		url, err := sysmdns.DescriptionURL(service)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()

		if _, ok := seen[url]; ok {
			return nil
		}
		seen[url] = struct{}{}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", service.Instance(), url)

		return nil
	})

	browser, err := sysmdns.NewBrowser(cmd.Context(), handler, sysmdns.BrowserParams{
		Service: sysnet.MdnsServiceName(sysnet.MdnsServiceTypeWoT, proto),
		Domain:  cfg.MdnsDomain,
		Timeout: cfg.MdnsTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create mDNS browser: %w", err)
	}

	return browser.Run()
}
