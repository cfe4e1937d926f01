package clhttp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/client/clcore"
	"github.com/open-control-systems/thingweb/components/http/htclient"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Client interacts with a remote thing over HTTP.
//
// Remarks:
//   - HTTP has no subscriptions, Observe() always fails with status.StatusNotSupported.
type Client struct {
	pool         *syssched.WorkerPool
	client       *htclient.HTTPClient
	token        string
	interactions *clcore.Interactions
}

// Get reads the property with HTTP GET.
func (c *Client) Get(name string) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpGet, name, func() (thcore.Content, error) {
		url, err := c.interactions.PropertyURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(http.MethodGet, url, thcore.Content{})
	})
}

// Put writes the property with HTTP PUT.
func (c *Client) Put(name string, content thcore.Content) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpPut, name, func() (thcore.Content, error) {
		url, err := c.interactions.PropertyURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(http.MethodPut, url, content)
	})
}

// Action invokes the action with HTTP POST.
func (c *Client) Action(name string, content thcore.Content) *clcore.Future {
	return clcore.Submit(c.pool, clcore.OpAction, name, func() (thcore.Content, error) {
		url, err := c.interactions.ActionURL(name)
		if err != nil {
			return thcore.Content{}, err
		}

		return c.do(http.MethodPost, url, content)
	})
}

// Observe resolves immediately with status.StatusNotSupported.
func (*Client) Observe(name string, _ clcore.ObserveHandler) *clcore.Future {
	return clcore.Resolved(clcore.Result{
		Op:   clcore.OpObserve,
		Name: name,
		Err:  fmt.Errorf("http-client: observe: %w", status.StatusNotSupported),
	})
}

// ObserveRelease returns status.StatusNotSupported.
func (*Client) ObserveRelease(_ string) error {
	return fmt.Errorf("http-client: observe release: %w", status.StatusNotSupported)
}

// Close is a no-op, pending requests are owned by the family.
func (*Client) Close() error {
	return nil
}

func (c *Client) do(method, url string, content thcore.Content) (thcore.Content, error) {
	var body io.Reader = http.NoBody
	if len(content.Payload) > 0 {
		body = bytes.NewReader(content.Payload)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return thcore.Content{}, fmt.Errorf("http-client: invalid request: %v: %w",
			err, status.StatusInvalidArg)
	}

	if content.Type != thcore.MediaTypeUndefined {
		req.Header.Set("Content-Type", string(content.Type))
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, data, err := c.client.Do(req)
	if err != nil {
		return thcore.Content{}, fmt.Errorf("http-client: request failed: method=%s url=%s: %v: %w",
			method, url, err, status.StatusTransport)
	}

	if err := clcore.ErrorFromCode(codeFromStatus(resp.StatusCode), string(data)); err != nil {
		return thcore.Content{}, err
	}

	return thcore.Content{
		Payload: data,
		Type:    thcore.ParseMediaType(resp.Header.Get("Content-Type")),
	}, nil
}

func codeFromStatus(code int) bdcore.Code {
	switch {
	case code >= 200 && code < 300:
		return bdcore.CodeOK
	case code == http.StatusBadRequest:
		return bdcore.CodeBadRequest
	case code == http.StatusUnauthorized:
		return bdcore.CodeUnauthorized
	case code == http.StatusNotFound:
		return bdcore.CodeNotFound
	case code == http.StatusMethodNotAllowed:
		return bdcore.CodeMethodNotAllowed
	default:
		return bdcore.CodeInternalError
	}
}
