package htcore

import (
	"net/http"
	"strconv"

	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// WriteText writes text to HTTP response.
func WriteText(w http.ResponseWriter, code int, text string) {
	WriteContent(w, code, thcore.NewTextContent(text))
}

// WriteContent writes content to HTTP response, along with its content type.
func WriteContent(w http.ResponseWriter, code int, c thcore.Content) {
	switch c.Type {
	case thcore.MediaTypeUndefined:
		w.Header().Set("Content-Type", string(thcore.MediaTypeOctetStream))
	case thcore.MediaTypeTextPlain:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", string(c.Type))
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(c.Payload)))

	w.WriteHeader(code)

	if len(c.Payload) > 0 {
		_, _ = w.Write(c.Payload)
	}
}
