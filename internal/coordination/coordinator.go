// Package coordination implements the distributed coordination machine:
// the work-stealing protocol, the two-color token-ring termination
// detector, best-bound diffusion, and the message dispatcher that ties
// them to the local DFS engine. Everything here is single-threaded per
// rank; all concurrency is between ranks via the transport.
package coordination

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/wilx/mincut/internal/bitset"
	"github.com/wilx/mincut/internal/graph"
	"github.com/wilx/mincut/internal/logging"
	"github.com/wilx/mincut/internal/metrics"
	"github.com/wilx/mincut/internal/search"
	"github.com/wilx/mincut/internal/transport"
	"github.com/wilx/mincut/internal/wire"
)

// Result is the final answer assembled at rank 0 once end-of-computation
// fires: the winning weight and the partition it came from.
type Result struct {
	Weight int32
	Sigma  []bool // Sigma[i] true means vertex i (0-based) is in Y
}

// errEOC unwinds every nested call (seek, donor handshake, work
// request, dispatch) back up to Run once end-of-computation has been
// observed, without needing a stop-flag threaded through every return.
var errEOC = errors.New("coordination: end of computation")

// Coordinator bundles the per-rank state the spec keeps as process-wide
// globals in the original design: rank identity, the local stack, the
// engine, the best-bound trackers, and the termination-detector state.
type Coordinator struct {
	rank int
	size int

	engine *search.Engine
	stack  *search.Stack
	t      transport.Transport

	log logging.Logger
	met *metrics.Counters

	// best is the protocol-accurate global bound: a locally refreshed
	// element replaces it only under the 0 < weight < best.weight guard,
	// and each such replacement is broadcast. An incoming BEST (rank 0)
	// or BWEIGHT (other ranks) lowers it without a rebroadcast. trueBest
	// tracks the same comparison without the positivity guard, for
	// final-answer correctness (see DESIGN.md, Open Question 2).
	best     *search.Element
	trueBest *search.Element

	// donor is rank 0's rotating donor-index counter.
	donor int

	mycolor wire.Color

	// tokenHeld/token model the token ∈ {white,black,none} state of
	// spec.md §3: tokenHeld is false when token == none.
	tokenHeld bool
	token     wire.Color

	wouldGive bool

	result *Result
}

// New builds a Coordinator for one rank. The initial stack holds only
// the DFS root; rank 0 starts holding a white token, every other rank
// starts tokenless.
func New(rank, size int, eng *search.Engine, t transport.Transport, log logging.Logger, met *metrics.Counters) *Coordinator {
	n := uint32(eng.G.N)
	stack := search.NewStack()
	stack.PushFront(search.NewRoot(n))

	c := &Coordinator{
		rank:      rank,
		size:      size,
		engine:    eng,
		stack:     stack,
		t:         t,
		log:       log,
		met:       met,
		best:      initialBest(n),
		trueBest:  initialBest(n),
		donor:     0,
		mycolor:   wire.ColorWhite,
		wouldGive: true,
	}
	if rank == 0 {
		c.tokenHeld = true
		c.token = wire.ColorWhite
	}

	return c
}

func initialBest(n uint32) *search.Element {
	return &search.Element{
		Sigma:  bitset.New(n),
		Weight: math.MaxInt32,
		Next:   0,
		Fresh:  true,
	}
}

// Run drives the dispatcher loop (spec.md §4.5) until this rank
// observes end-of-computation. It returns a non-nil Result only at
// rank 0.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	for {
		if err := c.drain(ctx); err != nil {
			if errors.Is(err, errEOC) {
				c.reportMetrics()
				return c.result, nil
			}
			return nil, err
		}

		if c.best.Weight == 1 && c.rank != 0 {
			runtime.Gosched()
			continue
		}

		if c.stack.Len() == 0 {
			if err := c.seekOnce(ctx); err != nil {
				if errors.Is(err, errEOC) {
					c.reportMetrics()
					return c.result, nil
				}
				return nil, err
			}
			continue
		}

		if err := c.dfsStep(); err != nil {
			if errors.Is(err, errEOC) {
				c.reportMetrics()
				return c.result, nil
			}
			return nil, err
		}
	}
}

// reportMetrics logs this rank's final counters once it observes
// end-of-computation, the way go_dfs surfaces its FileMetrics at the
// end of a traversal rather than leaving counters write-only.
func (c *Coordinator) reportMetrics() {
	s := c.met.Snapshot()
	c.log.Info("rank finished: steals=%d donations=%d bound_updates=%d token_rounds=%d expansions=%d pops=%d denials_sent=%d denials_recv=%d",
		s.Steals, s.Donations, s.BoundUpdates, s.TokenRounds, s.Expansions, s.Pops, s.DenialsSent, s.DenialsRecv)
}

// drain non-blockingly receives and dispatches every message currently
// queued on either priority channel, never starving one class for the
// other (spec.md §4.5 step 1).
func (c *Coordinator) drain(ctx context.Context) error {
	for {
		env, ok := c.t.TryRecv()
		if !ok {
			return nil
		}
		if err := c.handle(ctx, env); err != nil {
			return err
		}
	}
}

// dfsStep implements spec.md §4.5 step 4.
func (c *Coordinator) dfsStep() error {
	front := c.stack.Front()
	if front == nil {
		return nil
	}

	if !front.Fresh {
		return c.refreshAndHandle(front)
	}

	if c.engine.Expand(c.stack) {
		c.met.AddExpansion()
		return c.refreshAndHandle(c.stack.Front())
	}

	c.stack.PopFront()
	c.met.AddPop()
	return nil
}

// refreshAndHandle refreshes e, applies the best-bound update rule, and
// reacts to a weight-1 leaf per spec.md §4.1/§4.5.
func (c *Coordinator) refreshAndHandle(e *search.Element) error {
	leaf, err := c.engine.Refresh(e)
	if err != nil {
		return errors.Wrap(err, "coordination: refresh")
	}
	c.applyBestUpdate(e)

	if leaf && c.rank == 0 {
		return c.endOfComputation()
	}
	return nil
}

// applyBestUpdate is spec.md §4.1's "Pruning / best update" rule, split
// per DESIGN.md's Open Question 2 resolution into the protocol-accurate
// best (guarded) and the local-only trueBest (unguarded).
func (c *Coordinator) applyBestUpdate(e *search.Element) {
	c.considerTrueBest(e)

	if e.Weight > 0 && e.Weight < c.best.Weight {
		c.best = e.Clone()
		c.met.AddBoundUpdate()

		if c.rank != 0 {
			_ = c.t.Send(0, wire.Best(c.best))
		}
		// Rank 0 learns the bound only via BEST, never BWEIGHT (mrg.c:539
		// loops from 1, not 0, for exactly this reason: handleBWeight
		// treats a BWEIGHT arriving at rank 0 as a protocol violation).
		for i := 1; i < c.size; i++ {
			if i == c.rank {
				continue
			}
			_ = c.t.Send(i, wire.BWeight(c.best.Weight))
		}
	}
}

func (c *Coordinator) considerTrueBest(e *search.Element) {
	if e.Weight < c.trueBest.Weight {
		c.trueBest = e.Clone()
	}
}

// endOfComputation is spec.md §4.7. Only rank 0 may call it.
func (c *Coordinator) endOfComputation() error {
	if c.rank != 0 {
		return errors.New("coordination: end-of-computation invoked by a non-root rank")
	}

	for i := 1; i < c.size; i++ {
		_ = c.t.Send(i, wire.Simple(wire.MsgEOC))
	}

	final := c.best
	if c.trueBest.Weight < final.Weight {
		final = c.trueBest
	}

	n := c.engine.G.N
	sigma := make([]bool, n)
	for i := 0; i < n; i++ {
		sigma[i] = final.Sigma.Get(uint32(i))
	}
	c.result = &Result{Weight: final.Weight, Sigma: sigma}

	return errEOC
}

// RunCluster spawns one Coordinator goroutine per rank over an
// in-process transport cluster and runs the distributed search to
// completion. It returns rank 0's Result; every other rank's Run
// terminates with a nil Result, which RunCluster discards.
func RunCluster(ctx context.Context, g *graph.Graph, size int, log logging.Logger) (*Result, error) {
	ts := transport.NewCluster(size, 256)

	results := make([]*Result, size)
	errs := make([]error, size)

	var wg sync.WaitGroup
	for r := 0; r < size; r++ {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng := search.NewEngine(g)
			c := New(r, size, eng, ts[r], log.WithField("rank", r), &metrics.Counters{})
			res, err := c.Run(ctx)
			results[r] = res
			errs[r] = err
		}()
	}
	wg.Wait()

	for r, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "coordination: rank %d", r)
		}
	}

	if results[0] == nil {
		return nil, errors.New("coordination: rank 0 produced no result")
	}
	return results[0], nil
}
