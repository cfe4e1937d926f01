package sysnet

import "strings"

// MdnsServiceType represents known mDNS service types.
//
// References:
//   - See common services: http://www.dns-sd.org/serviceTypes.html
//   - https://www.w3.org/TR/wot-discovery/#introduction-dns-sd-sec
//   - https://www.ietf.org/rfc/rfc6763.txt
type MdnsServiceType int

const (
	// MdnsServiceTypeWoT is used for Things exposing a description.
	MdnsServiceTypeWoT MdnsServiceType = iota

	// MdnsServiceTypeHTTP is used for a HTTP mDNS service type.
	MdnsServiceTypeHTTP

	// MdnsServiceTypeCoAP is used for a CoAP mDNS service type.
	MdnsServiceTypeCoAP
)

// String returns string representation of the mDNS service type.
func (s MdnsServiceType) String() string {
	switch s {
	case MdnsServiceTypeWoT:
		return "_wot"
	case MdnsServiceTypeHTTP:
		return "_http"
	case MdnsServiceTypeCoAP:
		return "_coap"
	default:
		return "<none>"
	}
}

// MdnsProto represents known transport protocols.
type MdnsProto int

const (
	// MdnsProtoTCP is used for application protocols that run over TCP.
	MdnsProtoTCP MdnsProto = iota

	// MdnsProtoUDP is used for application protocols that run over UDP.
	MdnsProtoUDP
)

// String returns string representation of the mDNS protocol.
func (p MdnsProto) String() string {
	switch p {
	case MdnsProtoTCP:
		return "_tcp"
	case MdnsProtoUDP:
		return "_udp"
	default:
		return "<none>"
	}
}

// MdnsServiceName makes mDNS service name from the provided mDNS service type and protocol.
//
// Examples:
//   - _wot._tcp - Thing reachable over TCP protocol.
//   - _coap._udp - CoAP service over UDP protocol.
func MdnsServiceName(serviceType MdnsServiceType, proto MdnsProto) string {
	return strings.Join([]string{serviceType.String(), proto.String()}, ".")
}
