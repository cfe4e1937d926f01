package sysmdns

import (
	"fmt"
	"net"
	"strings"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
)

// ResolveRegistry accepts hosts discovered over local network.
type ResolveRegistry interface {
	sysnet.ResolveHandler

	// Add adds host to the list of known hosts.
	Add(host string)
}

// ResolveServiceHandler registers hostnames of the discovered services with their addresses.
type ResolveServiceHandler struct {
	registry ResolveRegistry
}

// NewResolveServiceHandler is an initialization of ResolveServiceHandler.
func NewResolveServiceHandler(registry ResolveRegistry) *ResolveServiceHandler {
	return &ResolveServiceHandler{registry: registry}
}

// HandleService handles mDNS service discovered over local network.
func (h *ResolveServiceHandler) HandleService(service Service) error {
	addrs := service.Addrs()
	if len(addrs) < 1 {
		return fmt.Errorf("ignore service: instance=%s service=%s hostname=%s:"+
			" IP address not found: %w",
			service.Instance(), service.Name(), service.Hostname(), status.StatusNoData)
	}

	hostname := strings.TrimSuffix(service.Hostname(), ".")

	h.registry.Add(hostname)
	h.registry.HandleResolve(hostname, &net.IPAddr{IP: addrs[0]})

	return nil
}
