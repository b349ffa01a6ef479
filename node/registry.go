package node

import "github.com/villas-go/villasnode/internal/idcodec"

// Registry looks nodes up by name, grounded on original_source/lib/node.c's
// vlist_lookup(all, str) global node list. Rather than a linear scan over a
// name-keyed list, entries are indexed by idcodec.NodeKey's fingerprint of
// the name, giving mapping.Parse's node-qualifier resolution and a path
// builder's node lookups a stable O(1) key independent of string identity.
type Registry struct {
	byKey map[uint64]Node
}

// NewRegistry returns an empty node Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[uint64]Node)}
}

// Register indexes n under its own Name(). A later Register call for the
// same name replaces the earlier entry.
func (r *Registry) Register(n Node) {
	r.byKey[idcodec.NodeKey(n.Name())] = n
}

// Lookup resolves a node by name, mirroring vlist_lookup's by-name resolution.
func (r *Registry) Lookup(name string) (Node, bool) {
	n, ok := r.byKey[idcodec.NodeKey(name)]
	return n, ok
}

// Names returns every name currently registered, suitable for building the
// nodeNames set mapping.Parse uses to resolve a token's optional node
// qualifier.
func (r *Registry) Names() map[string]bool {
	out := make(map[string]bool, len(r.byKey))
	for _, n := range r.byKey {
		out[n.Name()] = true
	}
	return out
}
