package thcore

import (
	"mime"
	"strings"
)

// MediaType identifies the encoding of the content payload.
type MediaType string

const (
	MediaTypeTextPlain   MediaType = "text/plain"
	MediaTypeJSON        MediaType = "application/json"
	MediaTypeCBOR        MediaType = "application/cbor"
	MediaTypeXML         MediaType = "application/xml"
	MediaTypeEXI         MediaType = "application/exi"
	MediaTypeOctetStream MediaType = "application/octet-stream"
	MediaTypeUndefined   MediaType = ""
)

// ParseMediaType converts the content type header value to MediaType.
//
// Remarks:
//   - Parameters are stripped, e.g. "text/plain; charset=utf-8" is parsed as text/plain.
//   - Unknown types are returned as MediaTypeUndefined.
func ParseMediaType(s string) MediaType {
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.Split(s, ";")[0]))
	}

	switch MediaType(mt) {
	case MediaTypeTextPlain, MediaTypeJSON, MediaTypeCBOR, MediaTypeXML, MediaTypeEXI,
		MediaTypeOctetStream:
		return MediaType(mt)
	default:
		return MediaTypeUndefined
	}
}

// String returns the media type, "undefined" for MediaTypeUndefined.
func (m MediaType) String() string {
	if m == MediaTypeUndefined {
		return "undefined"
	}

	return string(m)
}
