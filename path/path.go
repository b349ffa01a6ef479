// Package path implements the two-thread (ingest + optional periodic
// emit) sample-routing runtime binding one input node to one or more
// output nodes through a hook pipeline and a shared pool/queue pair,
// grounded on original_source/lib/path.c.
//
// Cancellation follows spec §9's design note against asynchronous
// signals (the reference implementation cancels its threads with
// pthread_cancel, which the note calls out as unsafe): both the ingest
// and periodic emit goroutines instead poll a cooperative atomic flag at
// the top of their loop, the same idiom control.go uses for its
// hot/stop coordination flags.
package path

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/villas-go/villasnode/hook"
	"github.com/villas-go/villasnode/internal/errs"
	"github.com/villas-go/villasnode/internal/logging"
	"github.com/villas-go/villasnode/mrqueue"
	"github.com/villas-go/villasnode/node"
	"github.com/villas-go/villasnode/sample"
)

// State is a path's lifecycle state, per spec §4.G.
type State int

const (
	StateCreated State = iota
	StatePrepared
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePrepared:
		return "prepared"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// destination pairs an output node with its own read cursor into the
// path's queue.
type destination struct {
	node   node.Node
	cursor *mrqueue.Cursor
}

// Path binds one input node, one or more output nodes, and an ordered
// hook pipeline into a running route, per spec §3's "Path" data model.
type Path struct {
	In        node.Node
	Out       []node.Node
	Hooks     *hook.Pipeline
	Vectorize int
	QueueLen  int
	SampleLen int
	Rate      float64 // Hz; 0 means emit inline after every enqueue

	log logging.Logger

	pool  *sample.Pool
	queue *mrqueue.Queue
	dests []*destination

	state    State
	stopping atomic.Bool

	skipped atomic.Uint64
	overrun atomic.Uint64

	name string

	wg      sync.WaitGroup
	firstMu sync.Mutex
	firstErr error
}

// New constructs a Path in StateCreated. Prepare must be called before
// Start.
func New(in node.Node, out []node.Node, hooks *hook.Pipeline, vectorize, queueLen, sampleLen int, rate float64) *Path {
	return &Path{
		In:        in,
		Out:       out,
		Hooks:     hooks,
		Vectorize: vectorize,
		QueueLen:  queueLen,
		SampleLen: sampleLen,
		Rate:      rate,
		log:       logging.New("path"),
		state:     StateCreated,
	}
}

// Name lazily builds and caches a display name from the input and output
// node names, mirroring path_name's lazy singleton string in the
// reference implementation.
func (p *Path) Name() string {
	if p.name == "" {
		name := p.In.Name() + " =>"
		for _, n := range p.Out {
			name += " " + n.Name()
		}
		p.name = name
	}
	return p.name
}

// State returns the path's current lifecycle state.
func (p *Path) State() State { return p.state }

// Skipped returns the running count of samples dropped by READ-phase
// hooks.
func (p *Path) Skipped() uint64 { return p.skipped.Load() }

// Overrun returns the running count of missed periodic emit ticks.
func (p *Path) Overrun() uint64 { return p.overrun.Load() }

// QueueDepth returns the queue's total slot capacity. Valid after Prepare.
func (p *Path) QueueDepth() int { return p.queue.Capacity() }

// QueueUsed returns a snapshot of how many queue slots are currently
// occupied. Valid after Prepare.
func (p *Path) QueueUsed() int { return p.queue.Used() }

// PoolCapacity returns the sample pool's total slot count. Valid after
// Prepare.
func (p *Path) PoolCapacity() int { return p.pool.Capacity() }

// PoolFree returns a snapshot of how many pool slots are currently free.
// Valid after Prepare.
func (p *Path) PoolFree() int { return p.pool.Free() }

// PoolInFlight returns the pool's allocated-minus-released count. Valid
// after Prepare.
func (p *Path) PoolInFlight() int64 { return p.pool.InFlight() }

// Err returns the first error that caused a path goroutine to terminate,
// or nil if the path is still healthy.
func (p *Path) Err() error {
	p.firstMu.Lock()
	defer p.firstMu.Unlock()
	return p.firstErr
}

func (p *Path) recordErr(err error) {
	if err == nil {
		return
	}
	p.firstMu.Lock()
	defer p.firstMu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

// Prepare runs INIT/PARSE lifecycle hooks, sizes and allocates the pool
// and queue, and registers a reader cursor for every history-carrying
// hook and every destination, per spec §4.G's PREPARE step and
// original_source/lib/path.c's path_prepare.
func (p *Path) Prepare() error {
	if p.state != StateCreated {
		return fmt.Errorf("path: Prepare called in state %s", p.state)
	}

	if _, err := p.Hooks.Run(hook.PhaseInit, nil); err != nil {
		return errs.New(errs.Config, "path.Prepare: INIT hook", err)
	}
	if _, err := p.Hooks.Run(hook.PhaseParse, nil); err != nil {
		return errs.New(errs.Config, "path.Prepare: PARSE hook", err)
	}

	// Vectorize/SampleLen/QueueLen are internal contracts every path
	// constructor is expected to uphold before Prepare ever runs; a
	// violation here is not a rejected user config, it's a caller of
	// New that skipped pathcfg.Config.Normalize (or similar) entirely.
	if p.Vectorize <= 0 || p.SampleLen <= 0 || p.QueueLen <= 0 {
		return errs.New(errs.Invariant, "path.Prepare", fmt.Errorf("vectorize=%d sampleLen=%d queueLen=%d must all be positive", p.Vectorize, p.SampleLen, p.QueueLen))
	}

	// Pool sized to hold at least vectorize + history + slack in flight
	// at once (spec §3): one vector in the ingest buffer, one vector's
	// worth of slack for destinations lagging behind the producer, and
	// the deepest hook history window.
	slack := p.Vectorize
	poolCap := p.Vectorize + p.Hooks.MaxHistory() + slack
	p.pool = sample.NewPool(poolCap, p.SampleLen)

	queue, err := mrqueue.New(p.QueueLen)
	if err != nil {
		return errs.New(errs.Resource, "path.Prepare: queue alloc", err)
	}
	p.queue = queue

	for _, h := range p.Hooks.Hooks() {
		if h.History > 0 {
			h.Cursor = p.queue.ReaderAdd(0)
		}
	}
	for _, n := range p.Out {
		p.dests = append(p.dests, &destination{node: n, cursor: p.queue.ReaderAdd(0)})
	}

	p.state = StatePrepared
	return nil
}

// Start runs PATH_START hooks, then launches the ingest goroutine and, if
// Rate > 0, the periodic emit goroutine.
func (p *Path) Start(ctx context.Context) error {
	if p.state != StatePrepared {
		return fmt.Errorf("path: Start called in state %s", p.state)
	}

	if _, err := p.Hooks.Run(hook.PhasePathStart, nil); err != nil {
		return errs.New(errs.Config, "path.Start: PATH_START hook", err)
	}

	p.state = StateRunning
	p.wg.Add(1)
	go p.ingestLoop(ctx)

	if p.Rate > 0 {
		p.wg.Add(1)
		go p.asyncLoop(ctx)
	}

	return nil
}

// Stop requests cooperative cancellation of the ingest goroutine (and the
// periodic emit goroutine, if running), waits for both to exit, then runs
// PATH_STOP hooks, per spec §5's cancellation sequence.
func (p *Path) Stop(ctx context.Context) error {
	if p.state != StateRunning {
		return fmt.Errorf("path: Stop called in state %s", p.state)
	}
	p.stopping.Store(true)
	p.wg.Wait()
	p.state = StateStopped

	if _, err := p.Hooks.Run(hook.PhasePathStop, nil); err != nil {
		return errs.New(errs.Config, "path.Stop: PATH_STOP hook", err)
	}
	return nil
}

// Destroy runs DEINIT hooks to release hook-owned memory. It does not
// attempt to reclaim samples still resident in the queue for readers that
// never advanced past them (nothing decrefs samples a registered reader
// never pulls); callers that need a guaranteed-empty pool at teardown must
// ensure every reader has drained the queue before calling Destroy.
func (p *Path) Destroy() error {
	if _, err := p.Hooks.Run(hook.PhaseDeinit, nil); err != nil {
		return errs.New(errs.Config, "path.Destroy: DEINIT hook", err)
	}
	return nil
}

// UsesNode reports whether n is this path's input or one of its outputs.
func (p *Path) UsesNode(n node.Node) bool {
	if p.In == n {
		return true
	}
	for _, out := range p.Out {
		if out == n {
			return true
		}
	}
	return false
}

func (p *Path) ingestLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		if p.stopping.Load() {
			return
		}

		drawn := p.pool.AllocMany(p.Vectorize)
		if len(drawn) < p.Vectorize {
			p.log.Warnf("pool underrun for path %s: got %d want %d", p.Name(), len(drawn), p.Vectorize)
		}
		if len(drawn) == 0 {
			continue
		}

		recv, err := p.In.Read(ctx, drawn)
		if recv < 0 {
			recv = 0
		}
		if recv < len(drawn) {
			sample.DecRefMany(drawn[recv:])
		}
		if err != nil {
			sample.DecRefMany(drawn[:recv])
			terr := errs.New(errs.Transport, "path.ingestLoop: node Read", err)
			p.log.Errorf("read failed for path %s: %v", p.Name(), terr)
			p.recordErr(terr)
			return
		}

		accepted, herr := p.Hooks.Run(hook.PhaseRead, drawn[:recv])
		if herr != nil {
			classified, ok := herr.(*errs.Error)
			if !ok {
				classified = errs.New(errs.Codec, "path.ingestLoop: READ hook", herr)
			}
			sample.DecRefMany(drawn[:recv])
			if errs.IsFatal(classified) {
				p.log.Errorf("READ hook hit a fatal invariant for path %s: %v", p.Name(), classified)
				p.recordErr(classified)
				return
			}
			// A codec failure on a single vector is dropped, not fatal: the
			// path keeps running on the next vector.
			p.log.Warnf("READ hook failed for path %s: %v", p.Name(), classified)
			continue
		}
		if accepted < recv {
			p.skipped.Add(uint64(recv - accepted))
			sample.DecRefMany(drawn[accepted:recv])
		}

		pushed := p.queue.PushMany(drawn[:accepted], accepted)
		if pushed < accepted {
			p.log.Warnf("queue overrun for path %s: dropped %d", p.Name(), accepted-pushed)
			sample.DecRefMany(drawn[pushed:accepted])
		}

		p.advanceHookCursors()

		if p.Rate == 0 {
			if err := p.emit(ctx, false); err != nil {
				p.log.Errorf("write failed for path %s: %v", p.Name(), err)
				p.recordErr(err)
				return
			}
		}
	}
}

// advanceHookCursors advances every history-carrying hook's queue cursor
// so it lags the producer by exactly its History window, releasing
// samples that become globally unreachable back to the pool.
func (p *Path) advanceHookCursors() {
	producer := p.queue.Producer().Load()
	for _, h := range p.Hooks.Hooks() {
		if h.History <= 0 || h.Cursor == nil {
			continue
		}
		pull := int64(producer) - int64(h.Cursor.Load()) - int64(h.History)
		if pull <= 0 {
			continue
		}
		buf := make([]*sample.Sample, pull)
		cursor := h.Cursor.(*mrqueue.Cursor)
		release := p.queue.PullMany(buf, int(pull), cursor)
		if release > 0 {
			sample.DecRefMany(buf[:release])
		}
	}
}

func (p *Path) asyncLoop(ctx context.Context) {
	defer p.wg.Done()

	period := time.Duration(float64(time.Second) / p.Rate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		if p.stopping.Load() {
			return
		}
		now := <-ticker.C
		if p.stopping.Load() {
			return
		}

		elapsed := now.Sub(last)
		last = now
		if missed := int64(elapsed/period) - 1; missed > 0 {
			p.overrun.Add(uint64(missed))
			p.log.Warnf("overrun detected for path %s: missed=%d", p.Name(), missed)
		}

		if _, err := p.Hooks.Run(hook.PhasePeriodic, nil); err != nil {
			p.log.Warnf("PERIODIC hook failed for path %s: %v", p.Name(), errs.New(errs.Codec, "path.asyncLoop: PERIODIC hook", err))
		}

		if p.queue.Producer().Load() == 0 {
			continue
		}

		if _, err := p.Hooks.Run(hook.PhaseAsync, nil); err != nil {
			continue
		}

		if err := p.emit(ctx, true); err != nil {
			p.log.Errorf("write failed for path %s: %v", p.Name(), err)
			p.recordErr(err)
			return
		}
	}
}

// emit runs the WRITE-phase pipeline and delivers samples to every
// destination, per spec §4.G's "write(resend)" procedure. When resend is
// true it re-sends the most recently ingested vector without advancing
// any destination cursor or releasing samples, since the periodic timer
// may fire independently of new data arriving.
func (p *Path) emit(ctx context.Context, resend bool) error {
	buf := make([]*sample.Sample, p.Vectorize)

	for _, d := range p.dests {
		var base uint64
		if resend {
			producer := p.queue.Producer().Load()
			if producer >= uint64(p.Vectorize) {
				base = producer - uint64(p.Vectorize)
			}
		} else {
			base = d.cursor.Load()
		}

		available := p.queue.GetMany(buf, p.Vectorize, base)
		if available == 0 {
			continue
		}
		if available < p.Vectorize {
			p.log.Warnf("queue underrun for path %s: available=%d expected=%d", p.Name(), available, p.Vectorize)
		}

		tosend, err := p.Hooks.Run(hook.PhaseWrite, buf[:available])
		if err != nil {
			classified, ok := err.(*errs.Error)
			if !ok {
				classified = errs.New(errs.Codec, "path.emit: WRITE hook", err)
			}
			if errs.IsFatal(classified) {
				return classified
			}
			// A codec failure writing to one destination is dropped, not
			// fatal: the other destinations still get their turn.
			p.log.Warnf("WRITE hook failed for path %s destination %s: %v", p.Name(), d.node.Name(), classified)
			continue
		}
		if tosend == 0 {
			continue
		}

		sent, err := d.node.Write(ctx, buf[:tosend])
		if err != nil {
			return errs.New(errs.Transport, "path.emit: node Write", err)
		}
		if sent < tosend {
			p.log.Warnf("partial write to node %s for path %s", d.node.Name(), p.Name())
		}

		if resend {
			continue
		}

		release := p.queue.PullMany(buf, sent, d.cursor)
		if release > 0 {
			sample.DecRefMany(buf[:release])
		}
	}
	return nil
}
