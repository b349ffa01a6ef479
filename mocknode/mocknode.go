// Package mocknode provides an in-memory Node used to drive path tests
// without a real transport.
package mocknode

import (
	"context"
	"errors"
	"sync"

	"github.com/villas-go/villasnode/node"
	"github.com/villas-go/villasnode/sample"
)

// ErrClosed is returned by Read/Write once the node has been stopped.
var ErrClosed = errors.New("mocknode: closed")

// Feed is one input record queued for a future Read call to fill into a
// path-owned sample; it deliberately does not carry a *sample.Sample of
// its own; a real node fills the caller-supplied sample slots in place
// rather than handing back a different pool's samples, and this mock
// mirrors that.
type Feed struct {
	Sequence uint64
	Values   []sample.Value
	Formats  []sample.Format
}

// Written is a snapshot of one sample passed to Write, captured by value
// since the underlying *sample.Sample is recycled back to its pool soon
// after the call returns.
type Written struct {
	Sequence uint64
	Values   []sample.Value
}

// Node is a Node backed by an in-memory FIFO of Feed records for Read,
// and a captured log of everything passed to Write.
type Node struct {
	node.Base

	mu      sync.Mutex
	pending []Feed
	written []Written
	closed  bool
}

// New returns a Node named name with no pending input.
func New(name string) *Node {
	n := &Node{}
	n.Base = node.NewBase(name)
	return n
}

// Feed appends records to the input queue Read will draw from.
func (n *Node) Feed(items ...Feed) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, items...)
}

// Written returns everything ever passed to Write, in call order.
func (n *Node) Written() []Written {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Written, len(n.written))
	copy(out, n.written)
	return out
}

func (n *Node) Start(ctx context.Context) error {
	if err := n.Base.TransitionStart(); err != nil {
		return err
	}
	return n.Base.TransitionRunning()
}

func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	if err := n.Base.TransitionStop(); err != nil {
		return err
	}
	return n.Base.TransitionStopped()
}

// Read fills up to len(vec) caller-owned samples from pending Feed
// records, per spec §4.F: a node writes into the vector it is handed
// rather than substituting its own. It returns 0, nil rather than
// blocking when nothing is pending, since tests drive Feed explicitly.
func (n *Node) Read(ctx context.Context, vec []*sample.Sample) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return 0, ErrClosed
	}
	count := len(vec)
	if count > len(n.pending) {
		count = len(n.pending)
	}
	for i := 0; i < count; i++ {
		item := n.pending[i]
		smp := vec[i]
		smp.Sequence = item.Sequence
		for j, v := range item.Values {
			smp.SetFormat(j, item.Formats[j])
			smp.SetValue(j, v)
		}
	}
	n.pending = n.pending[count:]
	return count, nil
}

// Write records a value-only snapshot of the first len(vec) samples.
func (n *Node) Write(ctx context.Context, vec []*sample.Sample) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return 0, ErrClosed
	}
	for _, smp := range vec {
		values := make([]sample.Value, smp.Length())
		for i := range values {
			values[i] = smp.Value(i)
		}
		n.written = append(n.written, Written{Sequence: smp.Sequence, Values: values})
	}
	return len(vec), nil
}

func (n *Node) Reverse() error { return nil }
