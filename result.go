package elgo

import "time"

// Result is a query answer together with its completeness flag.
//
// An incomplete result was computed from a partially saturated state after an
// interruption. Its subsumer sets are subsets of the complete answer.
type Result[T any] struct {
	value    T
	complete bool
}

func newResult[T any](v T, complete bool) Result[T] {
	return Result[T]{value: v, complete: complete}
}

// Value returns the answer.
func (r Result[T]) Value() T { return r.value }

// Complete reports whether the answer was computed from a fully saturated state.
func (r Result[T]) Complete() bool { return r.complete }

// IncrementalStats describes how pending axiom changes were applied.
type IncrementalStats struct {
	Added   int
	Removed int
	// FullReset is true when the saturation state was discarded, which happens
	// on the first run and whenever role axioms change.
	FullReset bool
	// Seeds is the number of contexts that derived a premise of a retracted axiom.
	Seeds int
	// Invalidated is the number of contexts reset for re-saturation.
	Invalidated int
}

// SaturationResult summarizes a classification run.
type SaturationResult struct {
	RunID string
	// Complete is false if the run was interrupted before the fixpoint.
	Complete bool
	// Consistent is false if owl:Thing is unsatisfiable. Only meaningful when
	// Complete is true.
	Consistent  bool
	Contexts    int
	Processed   int64
	Conclusions int64
	Rules       RuleCounts
	Duration    time.Duration
	// Incremental is set when pending axiom changes were applied by this run.
	Incremental *IncrementalStats
}

// Stats describes the current reasoner state.
type Stats struct {
	Expressions int
	Roles       int
	// Axioms is the number of distinct axioms asserted in the index.
	Axioms int
	// Changing is the number of axioms managed through AddAxioms.
	Changing int
	Contexts int
	Backlog  int
	// UpToDate is true when the last run completed and no changes are pending.
	UpToDate bool
	Rules    RuleCounts
}
