package cdcbor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Transcoder converts content between JSON and CBOR encodings.
//
// References:
//   - https://www.rfc-editor.org/rfc/rfc8949
type Transcoder struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewTranscoder is an initialization of Transcoder.
func NewTranscoder() (*Transcoder, error) {
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	enc, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor-transcoder: failed to create encoder: %w", err)
	}

	decOpts := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyQuiet,
		IndefLength:    cbor.IndefLengthAllowed,
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}
	dec, err := decOpts.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor-transcoder: failed to create decoder: %w", err)
	}

	return &Transcoder{
		enc: enc,
		dec: dec,
	}, nil
}

// ToCBOR converts JSON or text content to CBOR.
//
// Remarks:
//   - Text content is encoded as a CBOR text string.
//   - CBOR content is returned as is.
func (t *Transcoder) ToCBOR(c thcore.Content) (thcore.Content, error) {
	var value interface{}

	switch c.Type {
	case thcore.MediaTypeCBOR:
		return c, nil

	case thcore.MediaTypeJSON:
		dec := json.NewDecoder(bytes.NewReader(c.Payload))
		dec.UseNumber()

		if err := dec.Decode(&value); err != nil {
			return thcore.Content{}, fmt.Errorf("cbor-transcoder: invalid JSON: %v: %w",
				err, status.StatusParse)
		}

		value = fromJSONNumbers(value)

	case thcore.MediaTypeTextPlain, thcore.MediaTypeUndefined:
		value = string(c.Payload)

	default:
		return thcore.Content{}, fmt.Errorf("cbor-transcoder: media type=%s: %w",
			c.Type, status.StatusNotSupported)
	}

	data, err := t.enc.Marshal(value)
	if err != nil {
		return thcore.Content{}, fmt.Errorf("cbor-transcoder: failed to encode: %w", err)
	}

	return thcore.Content{Payload: data, Type: thcore.MediaTypeCBOR}, nil
}

// ToJSON converts CBOR or text content to JSON.
//
// Remarks:
//   - JSON content is returned as is.
func (t *Transcoder) ToJSON(c thcore.Content) (thcore.Content, error) {
	var value interface{}

	switch c.Type {
	case thcore.MediaTypeJSON:
		return c, nil

	case thcore.MediaTypeCBOR:
		if err := t.dec.Unmarshal(c.Payload, &value); err != nil {
			return thcore.Content{}, fmt.Errorf("cbor-transcoder: invalid CBOR: %v: %w",
				err, status.StatusParse)
		}

	case thcore.MediaTypeTextPlain, thcore.MediaTypeUndefined:
		value = string(c.Payload)

	default:
		return thcore.Content{}, fmt.Errorf("cbor-transcoder: media type=%s: %w",
			c.Type, status.StatusNotSupported)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return thcore.Content{}, fmt.Errorf("cbor-transcoder: failed to encode: %w", err)
	}

	return thcore.Content{Payload: data, Type: thcore.MediaTypeJSON}, nil
}

// fromJSONNumbers replaces json.Number with int64 or float64 so that integers stay
// CBOR integers.
func fromJSONNumbers(v interface{}) interface{} {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		f, _ := v.Float64()

		return f

	case map[string]interface{}:
		for k, e := range v {
			v[k] = fromJSONNumbers(e)
		}

		return v

	case []interface{}:
		for i, e := range v {
			v[i] = fromJSONNumbers(e)
		}

		return v

	default:
		return v
	}
}
