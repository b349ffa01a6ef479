// Package hook implements the priority-sorted sample-transform pipeline
// that a path runs at fixed points in its lifecycle and its per-vector
// I/O, grounded on original_source/lib/path.c's hook_run call sites.
// Hooks are held in an ordered slice sorted once at construction, rather
// than an intrusive priority list with manual insertion.
package hook

import (
	"sort"

	"github.com/villas-go/villasnode/sample"
)

// Phase identifies the pipeline point a Hook runs at.
type Phase uint16

const (
	PhaseInit Phase = 1 << iota
	PhaseParse
	PhaseDeinit
	PhasePathStart
	PhasePathStop
	PhaseRead
	PhaseWrite
	PhaseAsync
	PhasePeriodic
)

// Has reports whether mask includes p.
func (p Phase) Has(mask Phase) bool { return mask&p != 0 }

// Func is a single hook's transform. It receives the samples the pipeline
// is currently carrying and returns how many of the leading entries
// survive; a hook may shrink the count to drop trailing samples, but must
// not reorder or grow it. Lifecycle phases (Init/Parse/Deinit/PathStart/
// PathStop) ignore the returned count except for treating a returned
// error as fatal.
type Func func(phase Phase, smps []*sample.Sample) (int, error)

// Hook is one entry in a path's ordered hook list, per spec §3's "Hook
// entry" data model: a priority, a phase mask, an optional history
// window, and a read cursor into the path's queue.
type Hook struct {
	Name     string
	Priority int
	Phases   Phase
	History  int
	Run      Func

	// Cursor is nil until the owning path registers a reader for this
	// hook's history window at PREPARE (only hooks with History > 0 need
	// one).
	Cursor ReaderCursor
}

// ReaderCursor is the minimal interface a path's queue reader cursor
// exposes to a hook; it is satisfied by *mrqueue.Cursor without hook
// importing mrqueue, avoiding a hook<->path<->mrqueue import cycle.
type ReaderCursor interface {
	Load() uint64
	Store(uint64)
}

// Pipeline is a path's hook list, sorted ascending by priority once when
// New builds it and never mutated again while the path runs (spec §9, §5:
// "Signal list of a node: frozen at PREPARED").
type Pipeline struct {
	hooks []*Hook
}

// New builds a Pipeline from hooks, sorting them ascending by priority.
// Sort stability preserves configuration order among equal priorities,
// matching spec §3's "Ordering: stable by ascending priority."
func New(hooks []*Hook) *Pipeline {
	sorted := make([]*Hook, len(hooks))
	copy(sorted, hooks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Pipeline{hooks: sorted}
}

// Hooks returns the pipeline's hooks in run order.
func (p *Pipeline) Hooks() []*Hook { return p.hooks }

// Run invokes every hook whose Phases mask matches phase, in priority
// order, threading the shrinking sample count through each. It stops and
// returns an error immediately if any hook returns one, per spec §4.D's
// "return nonzero is fatal" for lifecycle phases; for READ/WRITE/ASYNC an
// error is likewise propagated so the path can log-and-drop or
// log-and-terminate per §7's error handling design.
func (p *Pipeline) Run(phase Phase, smps []*sample.Sample) (int, error) {
	n := len(smps)
	for _, h := range p.hooks {
		if !h.Phases.Has(phase) {
			continue
		}
		var err error
		n, err = h.Run(phase, smps[:n])
		if err != nil {
			return n, err
		}
		if n < 0 || n > len(smps) {
			n = 0
		}
	}
	return n, nil
}

// MaxHistory returns the largest History window requested by any hook in
// the pipeline, used by the owning path to size its pool's slack per spec
// §3's "pool sized to hold at least vectorize + history + slack".
func (p *Pipeline) MaxHistory() int {
	max := 0
	for _, h := range p.hooks {
		if h.History > max {
			max = h.History
		}
	}
	return max
}
