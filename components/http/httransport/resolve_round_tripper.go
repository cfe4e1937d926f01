package httransport

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/sysnet"
)

// ResolveRoundTripper resolves ".local" hostnames before the HTTP transaction.
//
// Remarks:
//   - Other hostnames are passed to rt as is.
//   - The request port is preserved.
type ResolveRoundTripper struct {
	rs sysnet.Resolver
	rt http.RoundTripper
}

// NewResolveRoundTripper is an initialization of ResolveRoundTripper.
//
// Parameters:
//   - rs to resolve HTTP addresses.
//   - rt to perform an actual HTTP transaction.
func NewResolveRoundTripper(rs sysnet.Resolver, rt http.RoundTripper) *ResolveRoundTripper {
	return &ResolveRoundTripper{
		rs: rs,
		rt: rt,
	}
}

// RoundTrip resolves HTTP address and performs HTTP transaction.
func (r *ResolveRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	hostname := req.URL.Hostname()
	if !strings.HasSuffix(hostname, ".local") {
		return r.rt.RoundTrip(req)
	}

	addr, err := r.rs.Resolve(req.Context(), hostname)
	if err != nil {
		return nil, fmt.Errorf("resolve-round-tripper: failed to resolve: hostname=%s: %v: %w",
			hostname, err, status.StatusTransport)
	}

	host := hostOf(addr)
	if port := req.URL.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	}

	clone := req.Clone(req.Context())
	clone.URL.Host = host
	clone.Host = req.Host

	return r.rt.RoundTrip(clone)
}

func hostOf(addr net.Addr) string {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.String()
	case *net.TCPAddr:
		return a.IP.String()
	case *net.UDPAddr:
		return a.IP.String()
	default:
		if host, _, err := net.SplitHostPort(addr.String()); err == nil {
			return host
		}

		return addr.String()
	}
}
