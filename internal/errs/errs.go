// Package errs classifies routing-core failures: every error the core
// produces carries a Kind so callers (mainly the path runtime) can decide
// whether to log-and-continue or log-and-terminate without string
// matching.
package errs

import "fmt"

// Kind classifies a failure by how the runtime is expected to react to it.
type Kind int

const (
	// Config marks a static rejection during parse/prepare.
	Config Kind = iota
	// Resource marks a pool/queue/timer allocation failure.
	Resource
	// Codec marks a C37.118 framing failure (see c37118/frame.Status).
	Codec
	// Transport marks a node I/O failure.
	Transport
	// Invariant marks an assertion of an internal contract; always fatal.
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Resource:
		return "resource"
	case Codec:
		return "codec"
	case Transport:
		return "transport"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across package boundaries in
// this module. It names the failing operation, the Kind, and wraps the
// underlying cause so errors.Is/errors.As keep working for callers that
// care about the original sentinel.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind for operation op wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsFatal reports whether an error of this kind must abort the process
// rather than being logged and skipped. Only Invariant violations are
// fatal; everything else is recoverable at the path-loop or node level.
func IsFatal(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == Invariant
	}
	return false
}
