package sysnet

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
)

// ResolveStore caches the result of host resolving.
//
// Remarks:
//   - Filled by mDNS browsing, consumed by clients connecting to ".local" hosts.
//   - Every pending Resolve() call is woken up on each accepted update.
type ResolveStore struct {
	mu            sync.Mutex
	updateCh      chan struct{}
	knownHosts    map[string]struct{}
	resolvedAddrs map[string]net.Addr
}

// NewResolveStore is an initialization of ResolveStore.
func NewResolveStore() *ResolveStore {
	return &ResolveStore{
		updateCh:      make(chan struct{}),
		knownHosts:    make(map[string]struct{}),
		resolvedAddrs: make(map[string]net.Addr),
	}
}

// HandleResolve caches known resolved addresses.
//
// Remarks:
//   - Unknown hosts are filtered out.
func (s *ResolveStore) HandleResolve(host string, addr net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.knownHosts[host]; !ok {
		return
	}

	ra, ok := s.resolvedAddrs[host]
	switch {
	case !ok:
		core.LogInf.Printf("resolve-store: addr resolved: host=%s addr=%s\n", host, addr)
	case ra.String() != addr.String():
		core.LogInf.Printf("resolve-store: addr changed: host=%s cur=%s new=%s\n",
			host, ra, addr)
	default:
		return
	}

	s.resolvedAddrs[host] = addr

	close(s.updateCh)
	s.updateCh = make(chan struct{})
}

// Resolve resolves the host address to the network address.
//
// Remarks:
//   - Resolving an unknown host fails with status.StatusNoData.
//   - Waits for the known host to be resolved until ctx is done.
func (s *ResolveStore) Resolve(ctx context.Context, host string) (net.Addr, error) {
	for {
		s.mu.Lock()
		_, known := s.knownHosts[host]
		addr, resolved := s.resolvedAddrs[host]
		updateCh := s.updateCh
		s.mu.Unlock()

		if resolved {
			return addr, nil
		}
		if !known {
			return nil, fmt.Errorf("resolve-store: unknown host=%s: %w", host, status.StatusNoData)
		}

		select {
		case <-updateCh:
		case <-ctx.Done():
			return nil, fmt.Errorf("resolve-store: host=%s: %w", host, status.StatusTimeout)
		}
	}
}

// Add adds host to the list of known hosts.
func (s *ResolveStore) Add(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.knownHosts[host] = struct{}{}
}

// Remove removes host from the list of known hosts.
func (s *ResolveStore) Remove(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.knownHosts, host)
	delete(s.resolvedAddrs, host)

	close(s.updateCh)
	s.updateCh = make(chan struct{})
}

// Hosts returns the sorted list of known hosts.
func (s *ResolveStore) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts := make([]string, 0, len(s.knownHosts))
	for host := range s.knownHosts {
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)

	return hosts
}
