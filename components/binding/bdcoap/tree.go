package bdcoap

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/status"
)

type node struct {
	listener bdcore.Listener
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// resourceTree maps URL paths to listeners, one node per path segment.
//
// Remarks:
//   - Inserting a listener at an existing interior node attaches it to the node,
//     the node children stay reachable.
//   - Interior nodes created on the way have no listener and aren't served.
type resourceTree struct {
	mu   sync.RWMutex
	root *node
}

func newResourceTree() *resourceTree {
	return &resourceTree{root: newNode()}
}

func (t *resourceTree) insert(path string, listener bdcore.Listener) error {
	segments := splitPath(path)
	if len(segments) == 0 {
		return fmt.Errorf("coap-binding: empty path: %w", status.StatusInvalidArg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	for _, seg := range segments {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}

	if n.listener != nil {
		return fmt.Errorf("coap-binding: resource already exists: url=%s: %w",
			path, status.StatusInvalidArg)
	}

	n.listener = listener

	return nil
}

func (t *resourceTree) find(path string) bdcore.Listener {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.root
	for _, seg := range splitPath(path) {
		child, ok := n.children[seg]
		if !ok {
			return nil
		}
		n = child
	}

	return n.listener
}

// paths returns the sorted paths of all served resources.
func (t *resourceTree) paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var paths []string

	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		if n.listener != nil {
			paths = append(paths, prefix)
		}
		for seg, child := range n.children {
			walk(prefix+"/"+seg, child)
		}
	}
	walk("", t.root)

	sort.Strings(paths)

	return paths
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	return segments
}
