package sysmdns

// ServiceHandler is a mDNS service handler.
type ServiceHandler interface {
	// HandleService handles the mDNS service discovered over local network.
	HandleService(service Service) error
}

// FuncServiceHandler is a function adapter of ServiceHandler.
type FuncServiceHandler func(service Service) error

// HandleService calls f(service).
func (f FuncServiceHandler) HandleService(service Service) error {
	return f(service)
}
