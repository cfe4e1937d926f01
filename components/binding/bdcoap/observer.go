package bdcoap

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/core"
)

type observer struct {
	client    mux.Client
	token     message.Token
	authToken string
	cbor      bool
	seq       uint32
}

func (o *observer) nextSeq() uint32 {
	return atomic.AddUint32(&o.seq, 1)
}

func (o *observer) done() bool {
	select {
	case <-o.client.Done():
		return true
	default:
		return false
	}
}

// observerRegistry tracks subscriptions per resource path, keyed by the CoAP token.
type observerRegistry struct {
	mu        sync.Mutex
	observers map[string]map[string]*observer
}

func newObserverRegistry() *observerRegistry {
	return &observerRegistry{observers: make(map[string]map[string]*observer)}
}

func (r *observerRegistry) add(path string, o *observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byToken, ok := r.observers[path]
	if !ok {
		byToken = make(map[string]*observer)
		r.observers[path] = byToken
	}

	byToken[o.token.String()] = o
}

func (r *observerRegistry) remove(path string, token message.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byToken, ok := r.observers[path]
	if !ok {
		return
	}

	delete(byToken, token.String())
	if len(byToken) == 0 {
		delete(r.observers, path)
	}
}

func (r *observerRegistry) list(path string) []*observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	byToken := r.observers[path]

	ret := make([]*observer, 0, len(byToken))
	for _, o := range byToken {
		ret = append(ret, o)
	}

	return ret
}

func (r *observerRegistry) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.observers[path])
}

// NotifyChanged pushes the current resource state to every observer of url.
//
// Remarks:
//   - Observers with closed connections, failed writes, or rejected tokens are dropped.
//   - The state is read with a notification context, interaction listeners aren't fired.
func (b *Binding) NotifyChanged(url string) {
	path := cleanPath(url)

	observers := b.observers.list(path)
	if len(observers) == 0 {
		return
	}

	listener := b.tree.find(path)
	if listener == nil {
		return
	}

	for _, o := range observers {
		if o.done() {
			b.observers.remove(path, o.token)
			continue
		}

		resp := bdcore.Dispatch(bdcore.WithNotification(context.Background()), listener, bdcore.Request{
			Method: bdcore.MethodGet,
			URI:    path,
			Token:  o.authToken,
		})

		content := resp.Content
		if resp.Code == bdcore.CodeOK && o.cbor {
			content = b.toCBOR(content)
		}

		msg := message.Message{
			Code:    responseCode(resp.Code),
			Token:   o.token,
			Context: o.client.Context(),
			Body:    bytes.NewReader(content.Payload),
			Options: message.Options{
				UintOption(message.Observe, o.nextSeq()),
				UintOption(message.ContentFormat, uint32(FromMediaType(content.Type))),
			},
		}

		if err := o.client.WriteMessage(&msg); err != nil {
			core.LogWrn.Printf("coap-binding: failed to notify observer: url=%s token=%s: %v\n",
				path, o.token, err)

			b.observers.remove(path, o.token)
			continue
		}

		if msg.Code != codes.Content {
			b.observers.remove(path, o.token)
		}
	}
}
