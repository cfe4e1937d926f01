package bdhttp

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/http/htcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

const maxBodySize = 1 << 20

// Params represents various options for the HTTP binding.
type Params struct {
	// Host to listen on, all interfaces if empty.
	Host string

	// Port to listen on, random free port if zero.
	Port int

	// PublicHost - host used in the base URI, the listening address if empty.
	PublicHost string

	// Metrics - if set, served at /metrics.
	Metrics http.Handler
}

// Binding exposes resources over HTTP.
//
// Remarks:
//   - Resource paths are case-insensitive.
//   - Token is read from the "Authorization: Bearer <token>" header.
type Binding struct {
	server *htcore.Server
	base   string

	mu        sync.RWMutex
	resources map[string]bdcore.Listener
}

// NewBinding is an initialization of Binding.
//
// Remarks:
//   - The port is bound immediately, requests are served after Start().
func NewBinding(params Params) (*Binding, error) {
	b := &Binding{
		resources: make(map[string]bdcore.Listener),
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)

	if params.Metrics != nil {
		router.Handle("/metrics", params.Metrics)
	}

	router.HandleFunc("/*", b.serveResource)

	server, err := htcore.NewServer(router, htcore.ServerParams{
		Host: params.Host,
		Port: params.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("http-binding: failed to create server: %w", err)
	}
	b.server = server

	host := params.PublicHost
	if host == "" {
		host = params.Host
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	b.base = "http://" + net.JoinHostPort(host, strconv.Itoa(server.Port()))

	return b, nil
}

// Identifier returns "HTTP".
func (*Binding) Identifier() string {
	return "HTTP"
}

// Base returns the base URI of the resources.
func (b *Binding) Base() string {
	return b.base
}

// Port returns the listening port.
func (b *Binding) Port() int {
	return b.server.Port()
}

// NewResource registers listener at url.
func (b *Binding) NewResource(url string, listener bdcore.Listener) error {
	if listener == nil {
		return fmt.Errorf("http-binding: nil listener: %w", status.StatusInvalidArg)
	}

	key := normalize(url)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.resources[key]; ok {
		return fmt.Errorf("http-binding: resource already exists: url=%s: %w",
			url, status.StatusInvalidArg)
	}

	b.resources[key] = listener

	return nil
}

// Start begins serving requests.
func (b *Binding) Start() error {
	core.LogInf.Printf("http-binding: starting: base=%s\n", b.base)

	b.server.Start()

	return nil
}

// Close stops serving requests.
func (b *Binding) Close() error {
	return b.server.Close()
}

func (b *Binding) serveResource(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	listener := b.resources[normalize(r.URL.Path)]
	b.mu.RUnlock()

	if listener == nil {
		htcore.WriteText(w, http.StatusNotFound, b.notFoundText(r.URL.Path))
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		htcore.WriteText(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	resp := bdcore.Dispatch(r.Context(), listener, bdcore.Request{
		Method: bdcore.Method(r.Method),
		URI:    r.URL.Path,
		Token:  bearerToken(r),
		Content: thcore.Content{
			Payload: payload,
			Type:    thcore.ParseMediaType(r.Header.Get("Content-Type")),
		},
	})

	if resp.Code == bdcore.CodeUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	htcore.WriteContent(w, statusCode(resp.Code), resp.Content)
}

func (b *Binding) notFoundText(path string) string {
	b.mu.RLock()
	urls := make([]string, 0, len(b.resources))
	for url := range b.resources {
		urls = append(urls, url)
	}
	b.mu.RUnlock()

	sort.Strings(urls)

	var sb strings.Builder

	fmt.Fprintf(&sb, "Resource %s not found\n\nKnown resources:\n", path)
	for _, url := range urls {
		sb.WriteString(url)
		sb.WriteString("\n")
	}

	return sb.String()
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

func normalize(url string) string {
	url = strings.ToLower(url)
	if len(url) > 1 {
		url = strings.TrimSuffix(url, "/")
	}

	return url
}

func statusCode(code bdcore.Code) int {
	switch code {
	case bdcore.CodeOK, bdcore.CodeChanged, bdcore.CodeDeleted:
		return http.StatusOK
	case bdcore.CodeBadRequest:
		return http.StatusBadRequest
	case bdcore.CodeUnauthorized:
		return http.StatusUnauthorized
	case bdcore.CodeNotFound:
		return http.StatusNotFound
	case bdcore.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
