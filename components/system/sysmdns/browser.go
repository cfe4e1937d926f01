package sysmdns

import (
	"context"
	"net"
	"time"

	"github.com/open-control-systems/zeroconf"

	"github.com/open-control-systems/thingweb/components/core"
)

// BrowserParams represents various options for zeroconf mDNS browser.
type BrowserParams struct {
	// Service is a mDNS service to lookup for.
	//
	// Examples:
	//  - Lookup for all things over TCP protocol: "_wot._tcp".
	Service string

	// Domain is a mDNS domain.
	//
	// Examples:
	//  - Local domain: "local".
	Domain string

	// Timeout is a mDNS browsing timeout.
	Timeout time.Duration
}

// Browser browses the local network for the mDNS services.
//
// Remarks:
//   - Run() performs a single lookup, use syssched.AsyncTaskRunner for periodic browsing.
//
// References:
//   - https://github.com/grandcat/zeroconf
type Browser struct {
	params   BrowserParams
	ctx      context.Context
	handler  ServiceHandler
	resolver *zeroconf.Resolver
}

// NewBrowser is an initialization of Browser.
func NewBrowser(
	ctx context.Context,
	handler ServiceHandler,
	params BrowserParams,
) (*Browser, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}

	return &Browser{
		params:   params,
		ctx:      ctx,
		handler:  handler,
		resolver: resolver,
	}, nil
}

// Run executes a single mDNS lookup operation.
func (b *Browser) Run() error {
	ctx, cancel := context.WithTimeout(b.ctx, b.params.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	if err := b.resolver.Browse(ctx, b.params.Service, b.params.Domain, entries); err != nil {
		return err
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil
			}
			b.handleEntry(entry)

		case <-ctx.Done():
			return nil
		}
	}
}

// HandleError handles browsing errors.
func (b *Browser) HandleError(err error) {
	core.LogErr.Printf("mdns-browser: browsing failed: service=%s domain=%s: %v\n",
		b.params.Service, b.params.Domain, err)
}

func (b *Browser) handleEntry(entry *zeroconf.ServiceEntry) {
	if entry == nil {
		return
	}

	if err := b.handler.HandleService(&entryService{entry: entry}); err != nil {
		core.LogWrn.Printf("mdns-browser: failed to handle service: instance=%s: %v\n",
			entry.Instance, err)
	}
}

type entryService struct {
	entry *zeroconf.ServiceEntry
}

func (s *entryService) Instance() string {
	return s.entry.Instance
}

func (s *entryService) Name() string {
	return s.entry.Service
}

func (s *entryService) Hostname() string {
	return s.entry.HostName
}

func (s *entryService) Port() int {
	return s.entry.Port
}

func (s *entryService) TxtRecords() []string {
	return s.entry.Text
}

func (s *entryService) Addrs() []net.IP {
	return append(append([]net.IP(nil), s.entry.AddrIPv4...), s.entry.AddrIPv6...)
}
