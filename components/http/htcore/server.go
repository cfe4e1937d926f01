package htcore

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/open-control-systems/thingweb/components/core"
)

// Server is a wrapper for http.Server.
type Server struct {
	server http.Server
	ln     net.Listener
	doneCh chan struct{}
	url    string

	started atomic.Bool
}

// ServerParams contains server parameters.
type ServerParams struct {
	// Host to listen on, "0.0.0.0" if empty.
	Host string

	// Port to listen on, random free port if zero.
	Port int

	// ReadHeaderTimeout - how long to wait for the request headers, 10s if zero.
	ReadHeaderTimeout time.Duration
}

// NewServer creates a new server.
//
// Remarks:
//   - The listener is opened immediately, so the URL is known before Start().
//
// References:
//   - The implementation is based on the httptest.Server.
func NewServer(handler http.Handler, params ServerParams) (*Server, error) {
	if params.Host == "" {
		params.Host = "0.0.0.0"
	}
	if params.ReadHeaderTimeout == 0 {
		params.ReadHeaderTimeout = time.Second * 10
	}

	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(params.Host, strconv.Itoa(params.Port)))
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP(addr.Network(), addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: http.Server{
			Addr:              ln.Addr().String(),
			Handler:           handler,
			ReadHeaderTimeout: params.ReadHeaderTimeout,
		},
		ln:     ln,
		doneCh: make(chan struct{}),
		url:    "http://" + ln.Addr().String(),
	}, nil
}

// Start runs the server.
func (s *Server) Start() {
	if s.started.Swap(true) {
		return
	}

	go s.run()
}

// Close stops the server and waits until it finishes.
//
// Remarks:
//   - Can be called without Start().
func (s *Server) Close() error {
	err := s.server.Close()

	_ = s.ln.Close()

	if s.started.Load() {
		<-s.doneCh
	}

	return err
}

// URL returns base URL of form http://ipaddr:port with no trailing slash.
func (s *Server) URL() string {
	return s.url
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *Server) run() {
	defer close(s.doneCh)

	if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		core.LogErr.Printf("http-server: failed to serve connection: %v\n", err)
	}
}
