package bdcoap

import (
	"github.com/plgd-dev/go-coap/v2/message"

	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// ToMediaType converts the CoAP content format to the media type.
func ToMediaType(cf message.MediaType) thcore.MediaType {
	switch cf {
	case message.TextPlain:
		return thcore.MediaTypeTextPlain
	case message.AppJSON:
		return thcore.MediaTypeJSON
	case message.AppCBOR:
		return thcore.MediaTypeCBOR
	case message.AppXML:
		return thcore.MediaTypeXML
	case message.AppExi:
		return thcore.MediaTypeEXI
	case message.AppOctets:
		return thcore.MediaTypeOctetStream
	default:
		return thcore.MediaTypeUndefined
	}
}

// FromMediaType converts the media type to the CoAP content format.
//
// Remarks:
//   - Undefined media type is sent as application/octet-stream.
func FromMediaType(mt thcore.MediaType) message.MediaType {
	switch mt {
	case thcore.MediaTypeTextPlain:
		return message.TextPlain
	case thcore.MediaTypeJSON:
		return message.AppJSON
	case thcore.MediaTypeCBOR:
		return message.AppCBOR
	case thcore.MediaTypeXML:
		return message.AppXML
	case thcore.MediaTypeEXI:
		return message.AppExi
	default:
		return message.AppOctets
	}
}

// UintOption builds the option carrying the encoded unsigned integer.
func UintOption(id message.OptionID, value uint32) message.Option {
	buf := make([]byte, 4)
	n, _ := message.EncodeUint32(buf, value)

	return message.Option{ID: id, Value: buf[:n]}
}
