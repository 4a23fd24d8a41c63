package elgo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/elgo/internal/incremental"
	"github.com/hupe1980/elgo/internal/saturation"
	"github.com/hupe1980/elgo/ontology"
	"github.com/hupe1980/elgo/resource"
	"github.com/hupe1980/elgo/taxonomy"
	"golang.org/x/sync/singleflight"
)

// Reasoner classifies an indexed ontology and answers subsumption queries.
//
// Axioms applied to the index before New are static. Axioms added through
// AddAxioms can later be retracted with RemoveAxioms; the next Classify applies
// the net change incrementally.
//
// A Reasoner is safe for concurrent use. Runs are serialized; queries on an
// up-to-date state proceed in parallel.
type Reasoner struct {
	mu      sync.RWMutex
	idx     *ontology.Index
	state   *saturation.State
	tracker *incremental.Tracker

	opts       options
	logger     *Logger
	metrics    MetricsObserver
	controller *resource.Controller

	// upToDate is true when the last run reached the fixpoint and no changes
	// are pending.
	upToDate bool
	tax      *taxonomy.Taxonomy
	taxGroup singleflight.Group

	cancelMu sync.Mutex
	cancel   context.CancelCauseFunc
	closed   atomic.Bool
}

// New creates a Reasoner over idx.
func New(idx *ontology.Index, optFns ...Option) *Reasoner {
	opts := applyOptions(optFns)
	return &Reasoner{
		idx:        idx,
		state:      saturation.NewState(idx, opts.logger.Logger),
		tracker:    incremental.NewTracker(),
		opts:       opts,
		logger:     opts.logger.WithWorkers(opts.workers),
		metrics:    opts.metricsObserver,
		controller: opts.controller,
	}
}

// Index returns the indexed ontology.
func (r *Reasoner) Index() *ontology.Index { return r.idx }

// AddAxioms asserts changing axioms. The axioms are validated immediately;
// if any is malformed none is added and the *ontology.IndexFault is returned.
// The change takes effect with the next run.
func (r *Reasoner) AddAxioms(axioms ...ontology.Axiom) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ax := range axioms {
		if err := r.idx.Validate(ax); err != nil {
			return err
		}
	}
	for _, ax := range axioms {
		if r.tracker.Add(ax) {
			r.upToDate = false
		}
	}
	return nil
}

// RemoveAxioms retracts axioms previously added with AddAxioms. Axioms that
// are not currently asserted through AddAxioms yield ontology.ErrNotAsserted
// and nothing is removed. The change takes effect with the next run.
func (r *Reasoner) RemoveAxioms(axioms ...ontology.Axiom) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ax := range axioms {
		if err := r.idx.Validate(ax); err != nil {
			return err
		}
		if !r.tracker.Contains(ax) {
			return fmt.Errorf("remove %s: %w", r.idx.FormatAxiom(ax), ontology.ErrNotAsserted)
		}
	}
	for _, ax := range axioms {
		if r.tracker.Remove(ax) {
			r.upToDate = false
		}
	}
	return nil
}

// Axioms returns the changing axioms currently asserted, in the order they
// were first added.
func (r *Reasoner) Axioms() []ontology.Axiom {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tracker.Active()
}

// Classify saturates the ontology, applying pending axiom changes first.
//
// If ctx is canceled or Interrupt is called, Classify returns a result with
// Complete set to false and a nil error. The next call resumes the run.
func (r *Reasoner) Classify(ctx context.Context) (SaturationResult, error) {
	if r.closed.Load() {
		return SaturationResult{}, ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classify(ctx)
}

// classify must be called with r.mu held for writing.
func (r *Reasoner) classify(ctx context.Context) (SaturationResult, error) {
	start := time.Now()
	res := SaturationResult{RunID: uuid.NewString()}
	log := r.logger.WithRun(res.RunID)

	ctx, cancel := context.WithCancelCause(ctx)
	r.setCancel(cancel)
	defer func() {
		r.setCancel(nil)
		cancel(nil)
	}()

	finish := func(err error) (SaturationResult, error) {
		err = translateError(err)
		res.Duration = time.Since(start)
		res.Contexts = r.state.NumContexts()
		res.Consistent = r.state.IsConsistent()
		r.upToDate = err == nil && res.Complete && !r.tracker.Pending()
		r.metrics.OnClassify(res.Duration, res.Contexts, res.Complete, err)
		r.metrics.OnRuleApplications(res.Rules)
		if err == nil && !res.Complete {
			log.LogInterrupted(ctx, r.state.Backlog(), context.Cause(ctx))
		}
		log.LogClassify(ctx, res, err)
		return res, err
	}

	r.tax = nil

	// An interrupted run is finished under the axioms it started with, since
	// invalidation requires a quiescent state.
	if !r.state.IsQuiescent() {
		if err := r.run(ctx, &res); err != nil || !res.Complete {
			return finish(err)
		}
	}

	if r.tracker.Pending() {
		st, err := r.applyChanges()
		if err != nil {
			return finish(err)
		}
		res.Incremental = &st
		r.metrics.OnIncremental(st.Seeds, st.Invalidated, st.FullReset)
		log.LogIncremental(ctx, st.Added, st.Removed, st)
	}

	r.state.EnsureAll()
	return finish(r.run(ctx, &res))
}

func (r *Reasoner) run(ctx context.Context, res *SaturationResult) error {
	rr, err := r.state.Run(ctx, saturation.RunConfig{
		Workers: r.opts.workers,
		Slots:   r.controller,
		Progress: func(processed int64, backlog int) {
			if r.controller.AllowProgress() {
				r.metrics.OnProgress(processed, backlog)
			}
		},
	})
	res.Complete = rr.Complete
	res.Processed += rr.Processed
	res.Conclusions += rr.Conclusions
	res.Rules.Add(&rr.Rules)
	return err
}

// applyChanges applies the net ledger delta to the index and prepares the
// saturation state for it. It must be called on a quiescent state.
func (r *Reasoner) applyChanges() (IncrementalStats, error) {
	delta := r.tracker.Delta()
	st := IncrementalStats{Added: len(delta.Added), Removed: len(delta.Removed)}

	if r.state.NumContexts() == 0 || delta.HasRoleChanges() {
		st.FullReset = true
		st.Invalidated = r.state.NumContexts()
		r.state.Reset()
	} else {
		removed, added := delta.Premises(r.idx)
		inv, err := r.state.Invalidate(removed, added)
		if err != nil {
			return st, err
		}
		st.Seeds, st.Invalidated = inv.Seeds, inv.Invalidated
	}

	for _, ax := range delta.Removed {
		if err := r.idx.Apply(ax, -1); err != nil {
			return st, err
		}
	}
	for _, ax := range delta.Added {
		if err := r.idx.Apply(ax, 1); err != nil {
			return st, err
		}
	}
	r.tracker.Commit()
	return st, nil
}

// Interrupt stops the current run, if any. The interrupted Classify or query
// returns an incomplete result.
func (r *Reasoner) Interrupt() {
	r.cancelMu.Lock()
	defer r.cancelMu.Unlock()
	if r.cancel != nil {
		r.cancel(ErrInterrupted)
	}
}

func (r *Reasoner) setCancel(cancel context.CancelCauseFunc) {
	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()
}

// Stats returns a snapshot of the reasoner state.
func (r *Reasoner) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Expressions: r.idx.Len(),
		Roles:       r.idx.NumRoles(),
		Axioms:      r.idx.NumAxioms(),
		Changing:    r.tracker.Len(),
		Contexts:    r.state.NumContexts(),
		Backlog:     r.state.Backlog(),
		UpToDate:    r.upToDate,
		Rules:       r.state.RuleCounts(),
	}
}

// Taxonomy returns the class taxonomy, classifying first if needed.
//
// An interrupted classification yields an incomplete taxonomy built from the
// partial state; it is still a DAG. ErrInconsistentOntology is returned if the
// ontology is inconsistent.
func (r *Reasoner) Taxonomy(ctx context.Context) (Result[*taxonomy.Taxonomy], error) {
	if r.closed.Load() {
		return Result[*taxonomy.Taxonomy]{}, ErrClosed
	}

	r.mu.RLock()
	if r.upToDate {
		defer r.mu.RUnlock()
		if !r.state.IsConsistent() {
			return Result[*taxonomy.Taxonomy]{}, ErrInconsistentOntology
		}
		v, err, _ := r.taxGroup.Do("taxonomy", func() (any, error) {
			if r.tax == nil {
				r.tax = r.buildTaxonomy(ctx, true)
			}
			return r.tax, nil
		})
		if err != nil {
			return Result[*taxonomy.Taxonomy]{}, err
		}
		return newResult(v.(*taxonomy.Taxonomy), true), nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.classify(ctx)
	if err != nil {
		return Result[*taxonomy.Taxonomy]{}, err
	}
	if res.Complete && !res.Consistent {
		return Result[*taxonomy.Taxonomy]{}, ErrInconsistentOntology
	}
	tax := r.buildTaxonomy(ctx, res.Complete)
	if r.upToDate {
		r.tax = tax
	}
	return newResult(tax, res.Complete), nil
}

func (r *Reasoner) buildTaxonomy(ctx context.Context, complete bool) *taxonomy.Taxonomy {
	start := time.Now()
	tax := taxonomy.Build(r.idx.Classes(), r.subsumerSet)
	r.logger.LogTaxonomy(ctx, tax.Len(), complete, time.Since(start))
	return tax
}

// IsConsistent reports whether owl:Thing is satisfiable.
func (r *Reasoner) IsConsistent(ctx context.Context) (Result[bool], error) {
	return r.IsSatisfiable(ctx, ontology.Thing)
}
