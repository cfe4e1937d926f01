package sysmdns

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/open-control-systems/thingweb/components/status"
)

const (
	// TxtDescriptionPath is the TXT record key holding the description path, e.g. "td=/things/led".
	TxtDescriptionPath = "td"

	// TxtScheme is the TXT record key holding the description URI scheme, e.g. "scheme=coap".
	TxtScheme = "scheme"

	// TxtType is the TXT record key holding the type of the service, e.g. "type=Thing".
	TxtType = "type"
)

// Service is a single mDNS service discovered on the local network.
type Service interface {
	// Instance returns mDNS service instance name, e.g. "led".
	Instance() string

	// Name returns mDNS service name, e.g. "_wot._tcp".
	Name() string

	// Hostname returns host machine DNS name, e.g. "led.local".
	Hostname() string

	// Port returns service port, e.g. 8080.
	Port() int

	// TxtRecords returns service txt records, e.g. ["td=/things/led", "type=Thing"].
	TxtRecords() []string

	// Addrs returns host machine IP addresses.
	Addrs() []net.IP
}

// TxtRecord returns the value of the TXT record key.
func TxtRecord(service Service, key string) (string, bool) {
	for _, record := range service.TxtRecords() {
		k, v, ok := strings.Cut(record, "=")
		if ok && strings.EqualFold(k, key) {
			return v, true
		}
	}

	return "", false
}

// DescriptionURL builds the thing description URL of the discovered service.
//
// Remarks:
//   - The path is taken from the "td" TXT record, the scheme from the "scheme" one,
//     "http" if missing.
//   - The first IP address is used if any, the hostname otherwise.
func DescriptionURL(service Service) (string, error) {
	path, ok := TxtRecord(service, TxtDescriptionPath)
	if !ok || path == "" {
		return "", fmt.Errorf("mdns-service: %s record not found: instance=%s: %w",
			TxtDescriptionPath, service.Instance(), status.StatusNoData)
	}

	scheme, ok := TxtRecord(service, TxtScheme)
	if !ok || scheme == "" {
		scheme = "http"
	}

	host := strings.TrimSuffix(service.Hostname(), ".")
	if addrs := service.Addrs(); len(addrs) > 0 {
		host = addrs[0].String()
	}
	if host == "" {
		return "", fmt.Errorf("mdns-service: host not found: instance=%s: %w",
			service.Instance(), status.StatusNoData)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(service.Port())) + path, nil
}
