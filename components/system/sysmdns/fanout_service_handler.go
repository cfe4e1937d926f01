package sysmdns

import (
	"sync"

	"github.com/open-control-systems/thingweb/components/core"
)

// FanoutServiceHandler notifies the underlying handlers about discovered mDNS service.
//
// Remarks:
//   - Handler failures are logged, the remaining handlers are still notified.
type FanoutServiceHandler struct {
	mu       sync.RWMutex
	handlers []ServiceHandler
}

// HandleService handles mDNS service discovered over local network.
func (h *FanoutServiceHandler) HandleService(service Service) error {
	h.mu.RLock()
	handlers := append([]ServiceHandler(nil), h.handlers...)
	h.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.HandleService(service); err != nil {
			core.LogErr.Printf("fanout-service-handler: failed to handle mDNS service:"+
				" instance=%s: %v\n", service.Instance(), err)
		}
	}

	return nil
}

// Add adds handler to be notified when mDNS service is discovered.
func (h *FanoutServiceHandler) Add(handler ServiceHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers = append(h.handlers, handler)
}
