package thcore

// Content is a raw payload tagged with its media type.
type Content struct {
	Payload []byte
	Type    MediaType
}

// NewTextContent creates text/plain content.
func NewTextContent(s string) Content {
	return Content{
		Payload: []byte(s),
		Type:    MediaTypeTextPlain,
	}
}

// NewContent creates content, the payload is copied.
func NewContent(payload []byte, mt MediaType) Content {
	return Content{
		Payload: append([]byte(nil), payload...),
		Type:    mt,
	}
}

// String returns payload as string.
func (c Content) String() string {
	return string(c.Payload)
}
