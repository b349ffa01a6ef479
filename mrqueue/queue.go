// Package mrqueue implements the single-producer/multi-reader lock-free
// ring buffer described in spec §4.B: one producer cursor, and a
// registered set of independently advancing reader cursors, none of which
// ever block the producer.
//
// The design generalizes ring24.Ring from the reference project this
// module grew out of: ring24 pins its sequence-number-per-slot protocol to
// exactly one consumer. This queue instead tracks liveness with an
// explicit producer Cursor plus a slice of reader Cursors, and computes the
// "everyone has passed this slot" boundary as the minimum over all
// registered readers rather than a single fixed sequence check — the same
// cache-line-isolation instinct (producer and readers never share a
// mutable word except through atomics), applied to a fan-out topology
// instead of a 1:1 pipe.
package mrqueue

import (
	"fmt"
	"sync/atomic"

	"github.com/villas-go/villasnode/sample"
)

// Cursor is an absolute, monotonically increasing ring position shared
// safely between goroutines via atomic load/store. The producer cursor and
// every reader cursor are Cursors.
type Cursor struct {
	v atomic.Uint64
}

// Load returns the cursor's current absolute position.
func (c *Cursor) Load() uint64 { return c.v.Load() }

// Store sets the cursor's absolute position.
func (c *Cursor) Store(x uint64) { c.v.Store(x) }

// Queue is a fixed-capacity (power-of-two) ring of *sample.Sample pointers
// with one producer and N pre-registered readers.
type Queue struct {
	buf      []*sample.Sample
	mask     uint64
	capacity uint64

	producer Cursor
	readers  []*Cursor
}

// New creates a Queue of the given power-of-two capacity. It returns an
// error rather than allocating a queue that could never uphold the
// power-of-two masking PushMany/GetMany/PullMany rely on.
func New(capacity int) (*Queue, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("mrqueue: capacity must be a positive power of two, got %d", capacity)
	}
	return &Queue{
		buf:      make([]*sample.Sample, capacity),
		mask:     uint64(capacity - 1),
		capacity: uint64(capacity),
	}, nil
}

// Capacity returns the ring's slot count.
func (q *Queue) Capacity() int { return int(q.capacity) }

// Used returns a snapshot of how many slots are currently occupied,
// measured as the producer's position minus the slowest registered
// reader's position. With no registered readers this reports 0, since
// nothing is pinning any slot.
func (q *Queue) Used() int {
	slow, ok := q.slowestReader()
	if !ok {
		return 0
	}
	head := q.producer.Load()
	if head < slow {
		return 0
	}
	return int(head - slow)
}

// Producer returns the queue's shared producer cursor. Path reads this as
// its input node's "received" counter (per original_source/lib/path.c,
// where node::received IS the value queue_push_many advances), since both
// need to observe the exact same absolute position.
func (q *Queue) Producer() *Cursor { return &q.producer }

// ReaderAdd registers a new reader cursor starting at the given absolute
// position and returns it. Per spec §4.B this must happen before the
// producer writes beyond startingAt, and per §3/§5 removal is not
// supported once the path is running: call this only during PREPARE.
func (q *Queue) ReaderAdd(startingAt uint64) *Cursor {
	c := &Cursor{}
	c.Store(startingAt)
	q.readers = append(q.readers, c)
	return c
}

func (q *Queue) slowestReader() (uint64, bool) {
	if len(q.readers) == 0 {
		return 0, false
	}
	min := q.readers[0].Load()
	for _, r := range q.readers[1:] {
		if v := r.Load(); v < min {
			min = v
		}
	}
	return min, true
}

// PushMany advances the producer cursor by however many of items[:n] it
// could accept without overrunning the slowest registered reader. It never
// blocks: a full queue yields a short return (§4.B/§5's backpressure
// guarantee), and it is the caller's responsibility to decref whatever
// tail of items it could not place.
func (q *Queue) PushMany(items []*sample.Sample, n int) int {
	if n > len(items) {
		n = len(items)
	}
	base := q.producer.Load()

	available := q.capacity
	if slow, ok := q.slowestReader(); ok {
		available = q.capacity - (base - slow)
	}
	accept := n
	if uint64(accept) > available {
		accept = int(available)
	}
	if accept < 0 {
		accept = 0
	}

	for i := 0; i < accept; i++ {
		q.buf[(base+uint64(i))&q.mask] = items[i]
	}
	q.producer.Store(base + uint64(accept))
	return accept
}

// GetMany performs a non-destructive peek of up to n pointers starting at
// absolute index base, returning how many were actually available (bounded
// by how far the producer has written).
func (q *Queue) GetMany(items []*sample.Sample, n int, base uint64) int {
	head := q.producer.Load()
	if base >= head {
		return 0
	}
	avail := head - base
	if n > len(items) {
		n = len(items)
	}
	take := uint64(n)
	if avail < take {
		take = avail
	}
	for i := uint64(0); i < take; i++ {
		items[i] = q.buf[(base+i)&q.mask]
	}
	return int(take)
}

// PullMany advances the reader cursor by up to n (bounded by how far the
// producer has written), then reports how many of the oldest still-pinned
// samples have just become unreachable by every registered reader. Only
// that many entries of items are populated; they are the samples the
// caller must now decref back to the pool — spec §4.B: "when a slot's last
// reader passes, the caller is expected to decref returned samples."
//
// This is a genuine narrowing, not merely "however far this reader moved":
// if another reader is still lagging behind this one, PullMany can advance
// this reader's own cursor while returning release == 0, because the
// oldest samples are still owned by that other, slower reader.
func (q *Queue) PullMany(items []*sample.Sample, n int, cursor *Cursor) int {
	oldMin, hadReaders := q.slowestReader()

	old := cursor.Load()
	head := q.producer.Load()
	avail := head - old
	take := uint64(n)
	if avail < take {
		take = avail
	}
	cursor.Store(old + take)

	if !hadReaders {
		return 0
	}
	newMin, _ := q.slowestReader()

	release := int64(newMin) - int64(oldMin)
	if release <= 0 {
		return 0
	}
	if release > int64(len(items)) {
		release = int64(len(items))
	}
	for i := int64(0); i < release; i++ {
		items[i] = q.buf[(oldMin+uint64(i))&q.mask]
	}
	return int(release)
}
