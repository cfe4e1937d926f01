package clcoap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/udp"
	"github.com/plgd-dev/go-coap/v2/udp/client"
	"github.com/plgd-dev/go-coap/v2/udp/message/pool"

	"github.com/open-control-systems/thingweb/components/binding/bdcoap"
	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// DefaultTimeout is used for requests when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client interacts with a remote thing over CoAP/UDP.
//
// References:
//   - https://www.rfc-editor.org/rfc/rfc7641
type Client struct {
	pool         *syssched.WorkerPool
	addr         string
	interactions *clcore.Interactions
	token        string
	timeout      time.Duration

	mu           sync.Mutex
	conn         *client.ClientConn
	observations map[string]*client.Observation
	closed       bool
}

func newClient(
	pool *syssched.WorkerPool,
	addr string,
	interactions *clcore.Interactions,
	params clcore.Params,
) *Client {
	timeout := params.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		pool:         pool,
		addr:         addr,
		interactions: interactions,
		token:        params.Token,
		timeout:      timeout,
		observations: make(map[string]*client.Observation),
	}
}

// Get reads the property with CoAP GET.
func (c *Client) Get(name string) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpGet, name, func() (thcore.Content, error) {
		path, err := c.interactions.PropertyURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(func(ctx context.Context, conn *client.ClientConn) (*pool.Message, error) {
			return conn.Get(ctx, path, c.options()...)
		})
	})
}

// Put writes the property with CoAP PUT.
func (c *Client) Put(name string, content thcore.Content) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpPut, name, func() (thcore.Content, error) {
		path, err := c.interactions.PropertyURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(func(ctx context.Context, conn *client.ClientConn) (*pool.Message, error) {
			return conn.Put(ctx, path, bdcoap.FromMediaType(content.Type),
				bytes.NewReader(content.Payload), c.options()...)
		})
	})
}

// Action invokes the action with CoAP POST.
func (c *Client) Action(name string, content thcore.Content) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpAction, name, func() (thcore.Content, error) {
		path, err := c.interactions.ActionURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(func(ctx context.Context, conn *client.ClientConn) (*pool.Message, error) {
			return conn.Post(ctx, path, bdcoap.FromMediaType(content.Type),
				bytes.NewReader(content.Payload), c.options()...)
		})
	})
}

// Observe subscribes to the property changes with CoAP Observe.
//
// Remarks:
//   - The future is resolved with the first notification.
//   - Every notification, including the first one, is passed to handler.
//   - The previous subscription of the same property is canceled.
func (c *Client) Observe(name string, handler clcore.ObserveHandler) *clcore.Future {
	future := clcore.NewFuture()

	submitted := clcore.Submit(c.pool, clcore.OpObserve, name, func() (thcore.Content, error) {
		path, err := c.interactions.PropertyURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		conn, err := c.getConn()
		if err != nil {
			return thcore.Content{}, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		var (
			current atomic.Pointer[client.Observation]
			failed  atomic.Bool
		)

		obs, err := conn.Observe(ctx, path, func(msg *pool.Message) {
			r := clcore.Result{Op: clcore.OpObserve, Name: name}
			r.Content, r.Err = readResponse(msg)

			// The server drops the observer after an error notification.
			if r.Err != nil {
				failed.Store(true)
				if o := current.Load(); o != nil {
					c.dropObservation(name, o)
				}
			}

			future.Resolve(r)

			if handler != nil {
				handler(r)
			}
		}, c.options()...)
		if err != nil {
			return thcore.Content{}, fmt.Errorf("coap-client: observe failed: path=%s: %v: %w",
				path, err, status.StatusTransport)
		}

		current.Store(obs)
		c.replaceObservation(name, obs)

		if failed.Load() {
			c.dropObservation(name, obs)
		}

		return thcore.Content{}, nil
	})

	go func() {
		<-submitted.Done()

		if r, _ := submitted.Result(); r.Err != nil {
			future.Resolve(r)
		}
	}()

	return future
}

// ObserveRelease cancels the property subscription.
func (c *Client) ObserveRelease(name string) error {
	c.mu.Lock()
	obs, ok := c.observations[name]
	delete(c.observations, name)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("coap-client: no subscription: property=%s: %w",
			name, status.StatusNotSupported)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	// Cancel request carries no auth query, the server drops the observer regardless
	// of the response code.
	if err := obs.Cancel(ctx); err != nil {
		core.LogWrn.Printf("coap-client: cancel request failed: property=%s: %v\n", name, err)
	}

	return nil
}

// Close cancels all subscriptions and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	observations := c.observations
	c.observations = make(map[string]*client.Observation)
	conn := c.conn
	c.conn = nil
	c.closed = true
	c.mu.Unlock()

	for name, obs := range observations {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		if err := obs.Cancel(ctx); err != nil {
			core.LogWrn.Printf("coap-client: failed to cancel subscription: property=%s: %v\n",
				name, err)
		}
		cancel()
	}

	if conn != nil {
		return conn.Close()
	}

	return nil
}

func (c *Client) replaceObservation(name string, obs *client.Observation) {
	c.mu.Lock()
	prev := c.observations[name]
	c.observations[name] = obs
	c.mu.Unlock()

	if prev == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := prev.Cancel(ctx); err != nil {
		core.LogWrn.Printf("coap-client: failed to cancel subscription: property=%s: %v\n",
			name, err)
	}
}

// dropObservation forgets obs if it's still the subscription of the property.
func (c *Client) dropObservation(name string, obs *client.Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.observations[name] == obs {
		delete(c.observations, name)
	}
}

func (c *Client) getConn() (*client.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("coap-client: %w", status.StatusClosed)
	}

	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := udp.Dial(c.addr)
	if err != nil {
		return nil, fmt.Errorf("coap-client: failed to dial: addr=%s: %v: %w",
			c.addr, err, status.StatusTransport)
	}

	c.conn = conn

	return conn, nil
}

func (c *Client) do(
	request func(ctx context.Context, conn *client.ClientConn) (*pool.Message, error),
) (thcore.Content, error) {
	conn, err := c.getConn()
	if err != nil {
		return thcore.Content{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	msg, err := request(ctx, conn)
	if err != nil {
		return thcore.Content{}, fmt.Errorf("coap-client: request failed: addr=%s: %v: %w",
			c.addr, err, status.StatusTransport)
	}

	return readResponse(msg)
}

func (c *Client) options() []message.Option {
	if c.token == "" {
		return nil
	}

	return []message.Option{{
		ID:    message.URIQuery,
		Value: []byte(bdcoap.AuthQuery + "=" + c.token),
	}}
}

func readResponse(msg *pool.Message) (thcore.Content, error) {
	var payload []byte

	if msg.Body() != nil {
		data, err := msg.ReadBody()
		if err != nil && err != io.EOF {
			return thcore.Content{}, fmt.Errorf("coap-client: failed to read body: %v: %w",
				err, status.StatusTransport)
		}
		payload = data
	}

	if err := clcore.ErrorFromCode(codeFromCoAP(msg.Code()), string(payload)); err != nil {
		return thcore.Content{}, err
	}

	content := thcore.Content{Payload: payload}
	if cf, err := msg.ContentFormat(); err == nil {
		content.Type = bdcoap.ToMediaType(cf)
	}

	return content, nil
}

func codeFromCoAP(code codes.Code) bdcore.Code {
	switch code {
	case codes.Content, codes.Valid:
		return bdcore.CodeOK
	case codes.Changed, codes.Created:
		return bdcore.CodeChanged
	case codes.Deleted:
		return bdcore.CodeDeleted
	case codes.BadRequest, codes.BadOption:
		return bdcore.CodeBadRequest
	case codes.Unauthorized, codes.Forbidden:
		return bdcore.CodeUnauthorized
	case codes.NotFound:
		return bdcore.CodeNotFound
	case codes.MethodNotAllowed:
		return bdcore.CodeMethodNotAllowed
	default:
		return bdcore.CodeInternalError
	}
}
