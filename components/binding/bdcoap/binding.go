package bdcoap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"
	coapNet "github.com/plgd-dev/go-coap/v2/net"
	"github.com/plgd-dev/go-coap/v2/udp"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/codec/cdcbor"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

const (
	// AuthQuery is the URI query key carrying the access token.
	AuthQuery = "auth"

	wellKnownCore = "/.well-known/core"
)

// Params represents various options for the CoAP binding.
type Params struct {
	// Host to listen on, all interfaces if empty.
	Host string

	// Port to listen on, random free port if zero.
	Port int

	// PublicHost - host used in the base URI, the listening address if empty.
	PublicHost string
}

// Binding exposes resources over CoAP/UDP.
//
// Remarks:
//   - Token is read from the "auth=<token>" URI query.
//   - GET with the Observe option registers or deregisters the observer.
//   - "Accept: application/cbor" transcodes JSON and text payloads to CBOR.
//   - CBOR request payloads are transcoded to JSON.
//
// References:
//   - https://www.rfc-editor.org/rfc/rfc7252
//   - https://www.rfc-editor.org/rfc/rfc7641
//   - https://www.rfc-editor.org/rfc/rfc6690
type Binding struct {
	conn       *coapNet.UDPConn
	server     *udp.Server
	transcoder *cdcbor.Transcoder
	tree       *resourceTree
	observers  *observerRegistry
	base       string
	port       int

	started atomic.Bool
	doneCh  chan struct{}
}

// NewBinding is an initialization of Binding.
//
// Remarks:
//   - The port is bound immediately, requests are served after Start().
func NewBinding(params Params) (*Binding, error) {
	transcoder, err := cdcbor.NewTranscoder()
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(params.Host, strconv.Itoa(params.Port))

	conn, err := coapNet.NewListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("coap-binding: failed to listen: addr=%s: %w", addr, err)
	}

	port := params.Port
	if udpAddr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		port = udpAddr.Port
	}

	b := &Binding{
		conn:       conn,
		transcoder: transcoder,
		tree:       newResourceTree(),
		observers:  newObserverRegistry(),
		port:       port,
		doneCh:     make(chan struct{}),
	}

	b.server = udp.NewServer(udp.WithMux(b))

	host := params.PublicHost
	if host == "" {
		host = params.Host
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	b.base = "coap://" + net.JoinHostPort(host, strconv.Itoa(port))

	return b, nil
}

// Identifier returns "CoAP".
func (*Binding) Identifier() string {
	return "CoAP"
}

// Base returns the base URI of the resources.
func (b *Binding) Base() string {
	return b.base
}

// Port returns the UDP port the binding listens on.
func (b *Binding) Port() int {
	return b.port
}

// NewResource registers listener at url.
func (b *Binding) NewResource(url string, listener bdcore.Listener) error {
	if listener == nil {
		return fmt.Errorf("coap-binding: nil listener: %w", status.StatusInvalidArg)
	}

	return b.tree.insert(url, listener)
}

// Start begins serving requests.
func (b *Binding) Start() error {
	if !b.started.CompareAndSwap(false, true) {
		return fmt.Errorf("coap-binding: already started: %w", status.StatusInvalidState)
	}

	core.LogInf.Printf("coap-binding: starting: base=%s\n", b.base)

	go func() {
		defer close(b.doneCh)

		if err := b.server.Serve(b.conn); err != nil {
			core.LogErr.Printf("coap-binding: failed to serve: %v\n", err)
		}
	}()

	return nil
}

// Close stops serving requests and releases the socket.
func (b *Binding) Close() error {
	b.server.Stop()

	if b.started.Load() {
		<-b.doneCh
	}

	if err := b.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// ServeCOAP handles a single CoAP request.
func (b *Binding) ServeCOAP(w mux.ResponseWriter, r *mux.Message) {
	path := "/"
	if p, err := r.Options.Path(); err == nil {
		path = cleanPath(p)
	}

	if path == wellKnownCore {
		b.serveWellKnownCore(w, r)
		return
	}

	listener := b.tree.find(path)
	if listener == nil {
		writeText(w, codes.NotFound, "resource not found")
		return
	}

	content, err := b.readContent(r)
	if err != nil {
		writeText(w, codes.BadRequest, fmt.Sprintf("bad request: %v", err))
		return
	}

	ctx := r.Context
	if ctx == nil {
		ctx = context.Background()
	}

	req := bdcore.Request{
		Method:  methodFromCode(r.Code),
		URI:     path,
		Token:   authToken(r.Options),
		Content: content,
	}

	wantCBOR := acceptsCBOR(r.Options)

	observe, err := r.Options.Observe()
	hasObserve := err == nil && r.Code == codes.GET

	if hasObserve && observe != 0 {
		b.observers.remove(path, r.Token)
	}

	resp := bdcore.Dispatch(ctx, listener, req)
	if resp.Code == bdcore.CodeOK && wantCBOR {
		resp.Content = b.toCBOR(resp.Content)
	}

	var opts []message.Option

	if hasObserve && observe == 0 && resp.Code == bdcore.CodeOK {
		o := &observer{
			client:    w.Client(),
			token:     append(message.Token(nil), r.Token...),
			authToken: req.Token,
			cbor:      wantCBOR,
		}
		b.observers.add(path, o)

		opts = append(opts, UintOption(message.Observe, o.nextSeq()))

		core.LogDbg.Printf("coap-binding: observer registered: url=%s token=%s\n",
			path, o.token)
	}

	writeContent(w, responseCode(resp.Code), resp.Content, opts...)
}

// ObserverCount returns the number of observers registered at url.
func (b *Binding) ObserverCount(url string) int {
	return b.observers.count(cleanPath(url))
}

func (b *Binding) serveWellKnownCore(w mux.ResponseWriter, r *mux.Message) {
	if r.Code != codes.GET {
		writeText(w, codes.MethodNotAllowed, "method not allowed")
		return
	}

	paths := b.tree.paths()

	links := make([]string, 0, len(paths))
	for _, p := range paths {
		links = append(links, "<"+p+">")
	}

	if err := w.SetResponse(codes.Content, message.AppLinkFormat,
		bytes.NewReader([]byte(strings.Join(links, ",")))); err != nil {
		core.LogWrn.Printf("coap-binding: failed to set response: %v\n", err)
	}
}

func (b *Binding) readContent(r *mux.Message) (thcore.Content, error) {
	var payload []byte

	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return thcore.Content{}, err
		}
		payload = data
	}

	content := thcore.Content{Payload: payload}

	if cf, err := r.Options.ContentFormat(); err == nil {
		content.Type = ToMediaType(cf)
	}

	if content.Type == thcore.MediaTypeCBOR {
		return b.transcoder.ToJSON(content)
	}

	return content, nil
}

func (b *Binding) toCBOR(c thcore.Content) thcore.Content {
	if c.Type != thcore.MediaTypeJSON && c.Type != thcore.MediaTypeTextPlain {
		return c
	}

	ret, err := b.transcoder.ToCBOR(c)
	if err != nil {
		core.LogWrn.Printf("coap-binding: failed to transcode to CBOR: %v\n", err)
		return c
	}

	return ret
}

func writeText(w mux.ResponseWriter, code codes.Code, text string) {
	writeContent(w, code, thcore.NewTextContent(text))
}

func writeContent(w mux.ResponseWriter, code codes.Code, c thcore.Content, opts ...message.Option) {
	var body io.ReadSeeker
	if len(c.Payload) > 0 {
		body = bytes.NewReader(c.Payload)
	}

	if err := w.SetResponse(code, FromMediaType(c.Type), body, opts...); err != nil {
		core.LogWrn.Printf("coap-binding: failed to set response: %v\n", err)
	}
}

func authToken(opts message.Options) string {
	queries, err := opts.Queries()
	if err != nil {
		return ""
	}

	for _, q := range queries {
		key, value, ok := strings.Cut(q, "=")
		if ok && key == AuthQuery {
			return value
		}
	}

	return ""
}

func acceptsCBOR(opts message.Options) bool {
	v, err := opts.GetUint32(message.Accept)
	if err != nil {
		return false
	}

	return message.MediaType(v) == message.AppCBOR
}

func methodFromCode(code codes.Code) bdcore.Method {
	switch code {
	case codes.GET:
		return bdcore.MethodGet
	case codes.PUT:
		return bdcore.MethodPut
	case codes.POST:
		return bdcore.MethodPost
	case codes.DELETE:
		return bdcore.MethodDelete
	default:
		return bdcore.Method(code.String())
	}
}

func responseCode(code bdcore.Code) codes.Code {
	switch code {
	case bdcore.CodeOK:
		return codes.Content
	case bdcore.CodeChanged:
		return codes.Changed
	case bdcore.CodeDeleted:
		return codes.Deleted
	case bdcore.CodeBadRequest:
		return codes.BadRequest
	case bdcore.CodeUnauthorized:
		return codes.Unauthorized
	case bdcore.CodeNotFound:
		return codes.NotFound
	case bdcore.CodeMethodNotAllowed:
		return codes.MethodNotAllowed
	default:
		return codes.InternalServerError
	}
}

func cleanPath(p string) string {
	return "/" + strings.Join(splitPath(p), "/")
}
