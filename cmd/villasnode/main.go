// Command villasnode wires one demonstration path end-to-end: a mock
// input node feeding a mock output node through a hook pipeline whose
// PERIODIC hook records stats snapshots to a SQLite sink, after
// populating a node registry and a mapping registry, mirroring the reference project's phased main.go (bootstrap, then
// run until signaled, then shut down cleanly) and its os/signal +
// syscall graceful-shutdown idiom.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/villas-go/villasnode/hook"
	"github.com/villas-go/villasnode/internal/logging"
	"github.com/villas-go/villasnode/internal/pathcfg"
	"github.com/villas-go/villasnode/internal/sqlitesink"
	"github.com/villas-go/villasnode/internal/statsjson"
	"github.com/villas-go/villasnode/mapping"
	"github.com/villas-go/villasnode/mocknode"
	"github.com/villas-go/villasnode/node"
	"github.com/villas-go/villasnode/path"
	"github.com/villas-go/villasnode/sample"
)

var log = logging.New("main")

func main() {
	// PHASE 1: Bootstrap the demonstration path from a config surface.
	cfg := pathcfg.Config{
		In:        "demo-in",
		Out:       []string{"demo-out"},
		Rate:      1,
		QueueLen:  1024,
		SampleLen: 4,
	}
	cfg.Normalize()

	in := mocknode.New(cfg.In)
	out := mocknode.New(cfg.Out[0])

	nodes := node.NewRegistry()
	nodes.Register(in)
	nodes.Register(out)

	// Parsing and registering a mapping token here is what actually
	// exercises idcodec.MappingKey, the same way registering the two
	// nodes above exercises idcodec.NodeKey.
	mappings := mapping.NewRegistry()
	seqTok, err := mapping.Parse("hdr.sequence", nil, nodes.Names())
	if err != nil {
		log.Errorf("failed to parse demo mapping token: %v", err)
		os.Exit(1)
	}
	mappings.Register("hdr.sequence", seqTok)
	if _, ok := mappings.Lookup("hdr.sequence"); !ok {
		log.Errorf("demo mapping token not found after registration")
		os.Exit(1)
	}

	sink, err := sqlitesink.Open("villasnode-stats.db")
	if err != nil {
		log.Errorf("failed to open stats sink: %v", err)
		os.Exit(1)
	}
	defer sink.Close()

	// Keep the observability database bounded over a long-running
	// gateway process by pruning rows the retention window has aged out.
	const statsRetention = 24 * time.Hour
	pruneDone := make(chan struct{})
	pruneStop := make(chan struct{})
	go func() {
		defer close(pruneDone)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sink.PruneOlderThan(statsRetention); err != nil {
					log.Warnf("failed to prune stats sink: %v", err)
				}
			case <-pruneStop:
				return
			}
		}
	}()

	// p is assigned below, after the hook pipeline is built; the PERIODIC
	// hook's closure captures the variable, not a value snapshot, so it
	// sees the live path once Prepare/Start populate its stat accessors.
	var p *path.Path
	statsHook := &hook.Hook{
		Name:     "stats-sink",
		Priority: 0,
		Phases:   hook.PhasePeriodic,
		Run: func(phase hook.Phase, smps []*sample.Sample) (int, error) {
			snap := statsjson.Snapshot{
				Path:         p.Name(),
				Timestamp:    time.Now(),
				QueueDepth:   p.QueueDepth(),
				QueueUsed:    p.QueueUsed(),
				PoolCapacity: p.PoolCapacity(),
				PoolFree:     p.PoolFree(),
				PoolInFlight: p.PoolInFlight(),
				Skipped:      p.Skipped(),
				Overrun:      p.Overrun(),
			}
			if err := sink.Record(snap); err != nil {
				return len(smps), err
			}
			return len(smps), nil
		},
	}

	p = path.New(in, []node.Node{out}, hook.New([]*hook.Hook{statsHook}), 4, cfg.QueueLen, cfg.SampleLen, cfg.Rate)

	log.Infof("preparing path %s", p.Name())
	if err := p.Prepare(); err != nil {
		log.Errorf("failed to prepare path: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		log.Errorf("failed to start path: %v", err)
		os.Exit(1)
	}
	log.Infof("path %s running", p.Name())

	// PHASE 2: Run until signaled.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Infof("received interrupt, stopping path %s", p.Name())

	// PHASE 3: Cooperative shutdown.
	close(pruneStop)
	<-pruneDone

	if err := p.Stop(ctx); err != nil {
		log.Errorf("failed to stop path cleanly: %v", err)
		os.Exit(1)
	}
	if err := p.Destroy(); err != nil {
		log.Errorf("failed to destroy path: %v", err)
		os.Exit(1)
	}

	log.Infof("path %s stopped, skipped=%d overrun=%d", p.Name(), p.Skipped(), p.Overrun())
	os.Exit(0)
}
