// Package node defines the polymorphic endpoint abstraction a path reads
// from and writes to, grounded on
// original_source/include/villas/node.h's struct node / node_type virtual
// table split.
//
// The reference implementation represents a node as a struct plus a
// separate node_type vtable of C function pointers ("C++ OOP style", per
// its own comment). This package collapses that split into a single Go
// interface: a concrete transport implements Node directly rather than
// filling in a table of callbacks.
package node

import (
	"context"

	"github.com/villas-go/villasnode/sample"
)

// State is a node's lifecycle state, mirroring node_state.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Node is the capability set a path uses to move samples in and out of a
// transport, per spec §4.F. Read may block; it returns 1..n samples per
// call. Write returns the number of samples actually sent. Reverse swaps
// a node's logical in/out roles without reconfiguration (used when the
// same transport backs both directions of a loopback path).
//
// Concrete transports (MQTT, sockets, OPAL shared memory, NGSI HTTP) are
// out of this package's scope; only the abstract capability set lives
// here (spec §1's stated scope boundary).
type Node interface {
	Name() string

	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	Read(ctx context.Context, vec []*sample.Sample) (int, error)
	Write(ctx context.Context, vec []*sample.Sample) (int, error)

	Reverse() error
}

// PollFDs is implemented by nodes that can hand a set of readiness file
// descriptors to a caller running its own event loop instead of blocking
// inside Read/Write; not every Node needs to support it.
type PollFDs interface {
	PollFDs() ([]int, error)
}

// Base is embeddable state a concrete Node implementation can use to get
// the standard state machine (spec §4.G: CREATED → STARTING → RUNNING →
// STOPPING → STOPPED) and a stable name without reimplementing it.
type Base struct {
	name  string
	state State
}

// NewBase returns a Base in StateCreated.
func NewBase(name string) Base {
	return Base{name: name, state: StateCreated}
}

func (b *Base) Name() string { return b.name }
func (b *Base) State() State { return b.state }

// TransitionStart moves Base from Created or Stopped into Starting,
// returning an error for any other state (mirrors node_start's guard in
// the reference implementation).
func (b *Base) TransitionStart() error {
	if b.state != StateCreated && b.state != StateStopped {
		return &StateError{From: b.state, To: StateStarting}
	}
	b.state = StateStarting
	return nil
}

// TransitionRunning moves Base from Starting into Running.
func (b *Base) TransitionRunning() error {
	if b.state != StateStarting {
		return &StateError{From: b.state, To: StateRunning}
	}
	b.state = StateRunning
	return nil
}

// TransitionStop moves Base from Running into Stopping.
func (b *Base) TransitionStop() error {
	if b.state != StateRunning {
		return &StateError{From: b.state, To: StateStopping}
	}
	b.state = StateStopping
	return nil
}

// TransitionStopped moves Base from Stopping into Stopped.
func (b *Base) TransitionStopped() error {
	if b.state != StateStopping {
		return &StateError{From: b.state, To: StateStopped}
	}
	b.state = StateStopped
	return nil
}

// StateError reports an invalid node state transition attempt.
type StateError struct {
	From, To State
}

func (e *StateError) Error() string {
	return "node: cannot transition from " + e.From.String() + " to " + e.To.String()
}
