package repair

import (
	"context"
	"errors"
	"slices"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
)

// ErrIncomplete is returned when a goal cannot be decided because the
// classification was interrupted.
var ErrIncomplete = errors.New("repair: classification incomplete")

// Goal decides whether a property holds for the current axioms of r.
// Goals must be monotone: removing axioms never turns a holding goal false.
type Goal func(ctx context.Context, r *elgo.Reasoner) (bool, error)

func complete[T any](res elgo.Result[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	if !res.Complete() {
		var zero T
		return zero, ErrIncomplete
	}
	return res.Value(), nil
}

// Consistent holds when owl:Thing is satisfiable.
func Consistent() Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		return complete(r.IsConsistent(ctx))
	}
}

// Satisfiable holds when expr is satisfiable.
func Satisfiable(expr ontology.ID) Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		return complete(r.IsSatisfiable(ctx, expr))
	}
}

// AllSatisfiable holds when the ontology is consistent and every named class
// is satisfiable.
func AllSatisfiable() Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		ok, err := complete(r.IsConsistent(ctx))
		if err != nil || !ok {
			return false, err
		}
		tax, err := complete(r.Taxonomy(ctx))
		if err != nil {
			return false, err
		}
		return len(tax.Bottom().Members()) == 1, nil
	}
}

// NotSubsumedBy holds when sub ⊑ sup is not entailed.
func NotSubsumedBy(sub, sup ontology.ID) Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		subs, err := complete(r.Subsumers(ctx, sub))
		if err != nil {
			return false, err
		}
		return !slices.Contains(subs, sup), nil
	}
}

// NotEquivalent holds when a and b are not equivalent.
func NotEquivalent(a, b ontology.ID) Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		eq, err := complete(r.Equivalents(ctx, a))
		if err != nil {
			return false, err
		}
		return !slices.Contains(eq, b), nil
	}
}

// Acyclic holds when no two of the given named classes subsume each other,
// so each of them keeps a taxonomy node of its own.
func Acyclic(classes ...ontology.ID) Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		for i, a := range classes {
			eq, err := complete(r.Equivalents(ctx, a))
			if err != nil {
				return false, err
			}
			for _, b := range classes[i+1:] {
				if slices.Contains(eq, b) {
					return false, nil
				}
			}
		}
		return true, nil
	}
}

// All holds when every goal holds.
func All(goals ...Goal) Goal {
	return func(ctx context.Context, r *elgo.Reasoner) (bool, error) {
		for _, g := range goals {
			ok, err := g(ctx, r)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
