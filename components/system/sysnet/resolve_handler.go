package sysnet

import "net"

// ResolveHandler receives addresses of the hosts discovered over local network.
type ResolveHandler interface {
	// HandleResolve handles the address of the hostname, e.g. "led.local".
	HandleResolve(hostname string, addr net.Addr)
}
