package mapping

import "github.com/villas-go/villasnode/internal/idcodec"

// Registry caches parsed Tokens by their literal source string, grounded on
// original_source/lib/mapping.c building a path's mapping vlist once from
// its config and reusing it for the path's lifetime rather than reparsing
// the token grammar on every sample. Entries are indexed by
// idcodec.MappingKey's fingerprint of the literal token string.
type Registry struct {
	byKey map[uint64]*Token
}

// NewRegistry returns an empty mapping Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[uint64]*Token)}
}

// Register indexes an already-parsed Token under its literal source string.
func (r *Registry) Register(literal string, t *Token) {
	r.byKey[idcodec.MappingKey(literal)] = t
}

// Lookup resolves a previously registered Token by its literal source
// string.
func (r *Registry) Lookup(literal string) (*Token, bool) {
	t, ok := r.byKey[idcodec.MappingKey(literal)]
	return t, ok
}
