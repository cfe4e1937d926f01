package sysmdns

import (
	"fmt"

	"github.com/open-control-systems/zeroconf"

	"github.com/open-control-systems/thingweb/components/core"
)

// AdvertiserParams represents various options for the mDNS advertiser.
type AdvertiserParams struct {
	// Instance is a service instance name, e.g. thing name.
	Instance string

	// Service is a mDNS service name, e.g. "_wot._tcp".
	Service string

	// Domain is a mDNS domain, e.g. "local".
	Domain string

	// Port is a service port.
	Port int

	// TxtRecords are additional service records, e.g. ["td=/things/led"].
	TxtRecords []string
}

// Advertiser registers the service on the local network.
type Advertiser struct {
	params AdvertiserParams
	server *zeroconf.Server
}

// NewAdvertiser is an initialization of Advertiser.
//
// Remarks:
//   - The service is announced until Close() is called.
func NewAdvertiser(params AdvertiserParams) (*Advertiser, error) {
	server, err := zeroconf.Register(params.Instance, params.Service, params.Domain,
		params.Port, params.TxtRecords, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns-advertiser: failed to register: instance=%s service=%s: %w",
			params.Instance, params.Service, err)
	}

	core.LogInf.Printf("mdns-advertiser: registered: instance=%s service=%s port=%d txt=%v\n",
		params.Instance, params.Service, params.Port, params.TxtRecords)

	return &Advertiser{
		params: params,
		server: server,
	}, nil
}

// Close stops announcing the service.
func (a *Advertiser) Close() error {
	a.server.Shutdown()

	core.LogInf.Printf("mdns-advertiser: unregistered: instance=%s service=%s\n",
		a.params.Instance, a.params.Service)

	return nil
}

// DescriptionTxtRecords returns TXT records announcing the thing description.
//
// Parameters:
//   - path - description path, e.g. "/things/led".
//   - scheme - description URI scheme, e.g. "http".
func DescriptionTxtRecords(path, scheme string) []string {
	return []string{
		TxtDescriptionPath + "=" + path,
		TxtScheme + "=" + scheme,
		TxtType + "=Thing",
	}
}
