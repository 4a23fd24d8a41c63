package saturation

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/elgo/ontology"
	"golang.org/x/sync/errgroup"
)

// checkInterval is the number of conclusions a worker processes between two
// interruption checks while draining a context.
const checkInterval = 128

// Slots limits the number of workers that process contexts at the same time.
type Slots interface {
	AcquireWorker(ctx context.Context) error
	ReleaseWorker()
}

// RunConfig configures a saturation run.
type RunConfig struct {
	// Workers is the number of worker goroutines. Defaults to GOMAXPROCS.
	Workers int
	// Slots optionally bounds concurrency across runs and reasoners.
	Slots Slots
	// Progress is called after a context has been saturated, with the number of
	// contexts processed in this run and the current backlog. It is called from
	// worker goroutines and should throttle itself.
	Progress func(processed int64, backlog int)
}

// RunResult summarizes a saturation run.
type RunResult struct {
	// Complete is true when the state reached quiescence.
	Complete bool
	// Processed is the number of context activations drained to empty.
	Processed int64
	// Conclusions is the number of conclusions processed.
	Conclusions int64
	// Rules holds the rule applications of this run.
	Rules    RuleCounts
	Duration time.Duration
}

// Run saturates all queued contexts until quiescence or until ctx is canceled.
// An interrupted run leaves the unprocessed contexts queued; calling Run again
// resumes from there.
//
// An *InvariantViolation aborts the run and is returned as the error.
func (s *State) Run(ctx context.Context, cfg RunConfig) (RunResult, error) {
	start := time.Now()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s.idx.PrepareRoles()
	exprs := s.idx.Exprs()

	q := s.ready
	gen := q.start()
	g, gctx := errgroup.WithContext(ctx)
	// Wait cancels gctx, so the callback may still fire after Run returns.
	stop := context.AfterFunc(gctx, func() { q.stop(gen) })
	defer stop()

	var processed atomic.Int64
	pool := make([]*worker, workers)
	for i := range pool {
		w := &worker{
			s:         s,
			idx:       s.idx,
			exprs:     exprs,
			slots:     cfg.Slots,
			progress:  cfg.Progress,
			processed: &processed,
		}
		pool[i] = w
		g.Go(func() error { return w.run(gctx) })
	}
	err := g.Wait()

	res := RunResult{Processed: processed.Load(), Duration: time.Since(start)}
	for _, w := range pool {
		res.Rules.Add(&w.counts)
		res.Conclusions += w.conclusions
	}
	s.counts.add(&res.Rules)

	if err != nil {
		s.logger.Error("saturation aborted", "error", err)
		return res, err
	}
	res.Complete = s.ready.quiescent()
	s.logger.Debug("saturation run finished",
		"complete", res.Complete,
		"processed", res.Processed,
		"conclusions", res.Conclusions,
		"backlog", s.ready.backlog(),
		"duration", res.Duration,
	)
	return res, nil
}

type worker struct {
	s        *State
	idx      *ontology.Index
	exprs    []ontology.Expr
	slots    Slots
	progress func(int64, int)

	processed   *atomic.Int64
	counts      RuleCounts
	conclusions int64
}

func (w *worker) run(ctx context.Context) error {
	if w.slots != nil {
		if err := w.slots.AcquireWorker(ctx); err != nil {
			// Canceled while waiting for a slot; the queue is left as is.
			return nil
		}
		defer w.slots.ReleaseWorker()
	}

	for {
		c := w.s.ready.take()
		if c == nil {
			return nil
		}
		if ctx.Err() != nil {
			w.s.ready.pushBack(c)
			return nil
		}
		if !c.state.CompareAndSwap(int32(Queued), int32(Processing)) {
			return &InvariantViolation{
				Context: c.root,
				Reason:  fmt.Sprintf("claimed context in state %s", c.Activation()),
			}
		}

		interrupted, err := w.drain(ctx, c)
		if err != nil {
			return err
		}
		if interrupted {
			c.suspend()
			w.s.ready.pushBack(c)
			return nil
		}
		w.s.ready.done()

		n := w.processed.Add(1)
		if w.progress != nil {
			w.progress(n, w.s.ready.backlog())
		}
	}
}

// drain processes the pending conclusions of a claimed context until its
// queue is empty. It reports whether it stopped early because ctx was canceled.
func (w *worker) drain(ctx context.Context, c *Context) (bool, error) {
	for n := 1; ; n++ {
		if n%checkInterval == 0 && ctx.Err() != nil {
			return true, nil
		}
		concl, ok := c.next()
		if !ok {
			return false, nil
		}
		w.conclusions++
		if err := w.apply(c, concl); err != nil {
			return false, err
		}
	}
}
