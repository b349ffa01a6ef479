// Package sample implements the fixed-capacity, reference-counted sample
// records that flow through every path, and the arena Pool that owns them.
//
// Grounded on original_source/include/villas/sample.h: a sample carries a
// sequence number, origin/received/sent timestamps, a weak back-reference
// to its producing node, and a value vector whose slots are individually
// tagged int or float. Samples are never constructed directly — only a
// Pool hands them out, and only that same Pool ever reclaims them, exactly
// as struct pool/struct sample require in the original.
package sample

import (
	"sync/atomic"
)

// Format tags a single value slot as carrying an integer or a float.
type Format uint8

const (
	// FormatFloat marks a slot's value as a float64.
	FormatFloat Format = iota
	// FormatInt marks a slot's value as an int64.
	FormatInt
)

// Value is one tagged slot of a Sample's data vector. Only one of I or F is
// meaningful for a given slot; which one is recorded in the Sample's format
// bitmap and read back via Sample.Format.
type Value struct {
	I int64
	F float64
}

// Source is the minimal identity a producing node exposes back to the
// samples it emits. It is intentionally tiny (just a name) so that this
// package never has to import the node package, avoiding an import cycle
// between the two halves of the data-plane (node.Node.Read fills
// pool-owned samples; sample.Sample.Source names the node that produced
// it).
type Source interface {
	Name() string
}

// Sample is one time-stamped vector of typed values. It is always owned by
// exactly one Pool, and always reaches a caller with refcount >= 1.
//
// Not safe for use by multiple goroutines without external synchronization,
// except for IncRef/DecRefMany which are the coordination points between the
// queue's producer and its many readers.
type Sample struct {
	Sequence uint64

	OriginSec, OriginNsec   int64
	ReceivedSec, ReceivedNs int64
	SentSec, SentNsec       int64

	// Source is a weak reference: the pool does not keep it alive and does
	// not consult it when reclaiming the sample.
	Source Source

	// ID is a stable identifier for the sample's originating stream. It
	// backs the mapping engine's hdr.id projection.
	ID uint64

	capacity int
	length   int
	refcount int32 // atomic

	pool   *Pool
	poolIx int

	values     []Value
	formatBits []uint64 // parallel bitmap, one bit per slot; 1 == FormatInt
}

// Capacity returns the immutable number of value slots reserved for this
// sample.
func (s *Sample) Capacity() int { return s.capacity }

// Length returns the number of value slots currently valid. Length never
// exceeds Capacity.
func (s *Sample) Length() int { return s.length }

// SetLength widens or narrows the valid prefix of the value vector. It is
// used by mapping and hooks that build a sample incrementally; it panics if
// n exceeds capacity, which the caller (mapping/hook authors, not external
// input) is expected never to trigger.
func (s *Sample) SetLength(n int) {
	if n < 0 || n > s.capacity {
		panic("sample: length exceeds capacity")
	}
	s.length = n
}

// Value returns the tagged value at slot i.
func (s *Sample) Value(i int) Value { return s.values[i] }

// SetValue writes the value at slot i without touching its format tag.
// Callers that also need to change the tag should call SetFormat.
func (s *Sample) SetValue(i int, v Value) { s.values[i] = v }

// Format reports whether slot i currently holds an int or a float.
func (s *Sample) Format(i int) Format {
	word := s.formatBits[i/64]
	if word&(1<<uint(i%64)) != 0 {
		return FormatInt
	}
	return FormatFloat
}

// SetFormat sets the format tag for slot i and monotonically widens Length
// to include it.
func (s *Sample) SetFormat(i int, f Format) {
	word := i / 64
	bit := uint(i % 64)
	if f == FormatInt {
		s.formatBits[word] |= 1 << bit
	} else {
		s.formatBits[word] &^= 1 << bit
	}
	if i+1 > s.length {
		s.length = i + 1
	}
}

// RefCount returns the current reference count, mostly useful for tests.
func (s *Sample) RefCount() int32 { return atomic.LoadInt32(&s.refcount) }

// IncRef increases the reference count. Called whenever a queue, hook, or
// caller retains an additional pointer to the sample beyond the one it was
// handed.
func IncRef(s *Sample) {
	atomic.AddInt32(&s.refcount, 1)
}

// Copy performs a deep field copy of src into dst, including the typed
// value slots and their format tags, without touching dst's identity
// (pool, sequence within the pool, refcount). dst must have capacity
// sufficient to hold src's length.
func Copy(dst, src *Sample) {
	if src.length > dst.capacity {
		panic("sample: copy source longer than destination capacity")
	}

	dst.Sequence = src.Sequence
	dst.OriginSec, dst.OriginNsec = src.OriginSec, src.OriginNsec
	dst.ReceivedSec, dst.ReceivedNs = src.ReceivedSec, src.ReceivedNs
	dst.SentSec, dst.SentNsec = src.SentSec, src.SentNsec
	dst.Source = src.Source
	dst.ID = src.ID
	dst.length = src.length

	for i := 0; i < src.length; i++ {
		dst.values[i] = src.values[i]
		dst.SetFormat(i, src.Format(i))
	}
}
