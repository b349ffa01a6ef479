// Package idcodec computes stable, deterministic 64-bit fingerprints for
// node names and mapping tokens, used wherever the node registry or
// mapping engine needs a compact content-derived key instead of a
// pointer or a config-file line number.
//
// Grounded on the reference project's golang.org/x/crypto dependency
// (exercised there via x/crypto/sha3 for keying); this package uses
// x/crypto/blake2b instead, taking the first 8 bytes of a blake2b.Sum512
// digest as the uint64 key. Both algorithms come from the same module
// already required by the reference project's go.mod.
package idcodec

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a deterministic 64-bit fingerprint of s. Two equal
// strings always fingerprint identically, which is what makes this
// suitable for reproducible tests (unlike a random UUID).
func Fingerprint(s string) uint64 {
	sum := blake2b.Sum512([]byte(s))
	return binary.BigEndian.Uint64(sum[:8])
}

// NodeKey fingerprints a node name for use as a registry map key.
func NodeKey(nodeName string) uint64 {
	return Fingerprint("node:" + nodeName)
}

// MappingKey fingerprints a mapping token's literal source string, giving
// the mapping engine a stable identity for a token independent of where
// it appears in a hook's token list.
func MappingKey(token string) uint64 {
	return Fingerprint("mapping:" + token)
}
