package repair

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
)

// Repair is a minimal removal set, as ascending indexes into the candidates.
type Repair []int

// Options configures Enumerate.
type Options struct {
	// Limit stops enumeration after this many repairs. Zero means no limit.
	Limit int
	// Logger receives debug output about seeds and conflicts.
	Logger *slog.Logger
}

// Enumerate returns all minimal repairs of goal over candidates, sorted
// lexicographically.
//
// Every candidate must have been asserted through r.AddAxioms. The candidates
// are removed and re-added while exploring; on return all of them are
// asserted again. If the goal already holds, the only repair is the empty set.
// If it cannot be reached even by removing every candidate, there is none.
func Enumerate(ctx context.Context, r *elgo.Reasoner, candidates []ontology.Axiom, goal Goal, optFns ...func(o *Options)) ([]Repair, error) {
	opts := Options{Logger: slog.New(slog.DiscardHandler)}
	for _, fn := range optFns {
		fn(&opts)
	}

	asserted := make(map[string]bool)
	for _, ax := range r.Axioms() {
		asserted[ax.Key()] = true
	}
	for i, ax := range candidates {
		if !asserted[ax.Key()] {
			return nil, fmt.Errorf("repair: candidate %d: %w", i, ontology.ErrNotAsserted)
		}
	}

	e := &explorer{
		r:          r,
		candidates: candidates,
		goal:       goal,
		removed:    roaring.New(),
		cache:      make(map[string]bool),
		logger:     opts.Logger,
	}
	defer e.restore()

	repairs, err := e.run(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(repairs, func(a, b Repair) int { return slices.Compare(a, b) })
	return repairs, nil
}

type explorer struct {
	r          *elgo.Reasoner
	candidates []ontology.Axiom
	goal       Goal
	logger     *slog.Logger

	// removed holds the candidates currently retracted from r.
	removed *roaring.Bitmap
	cache   map[string]bool
	checks  int
}

func lit(i int) z.Var { return z.Var(i + 1) }

func (e *explorer) run(ctx context.Context, limit int) ([]Repair, error) {
	n := len(e.candidates)
	g := gini.New()
	var repairs []Repair

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Solve() != 1 {
			break
		}

		seed := roaring.New()
		for i := 0; i < n; i++ {
			v := lit(i)
			if v <= g.MaxVar() && g.Value(v.Pos()) {
				seed.Add(uint32(i))
			}
		}

		ok, err := e.check(ctx, seed)
		if err != nil {
			return nil, err
		}

		if ok {
			m, err := e.shrink(ctx, seed)
			if err != nil {
				return nil, err
			}
			repair := toRepair(m)
			e.logger.Debug("minimal repair", "axioms", repair)
			repairs = append(repairs, repair)
			if m.IsEmpty() || (limit > 0 && len(repairs) >= limit) {
				break
			}
			// Block every superset of m.
			for _, i := range repair {
				g.Add(lit(i).Neg())
			}
			g.Add(0)
			continue
		}

		s, err := e.grow(ctx, seed, n)
		if err != nil {
			return nil, err
		}
		conflict := roaring.Flip(s, 0, uint64(n))
		e.logger.Debug("minimal conflict", "axioms", toRepair(conflict))
		if conflict.IsEmpty() {
			break
		}
		// Block every subset of s: at least one conflict axiom must go.
		it := conflict.Iterator()
		for it.HasNext() {
			g.Add(lit(int(it.Next())).Pos())
		}
		g.Add(0)
	}

	e.logger.Debug("repair enumeration finished", "repairs", len(repairs), "checks", e.checks)
	return repairs, nil
}

// shrink removes axioms from a holding removal set while the goal still holds.
func (e *explorer) shrink(ctx context.Context, set *roaring.Bitmap) (*roaring.Bitmap, error) {
	m := set.Clone()
	for _, i := range set.ToArray() {
		m.Remove(i)
		ok, err := e.check(ctx, m)
		if err != nil {
			return nil, err
		}
		if !ok {
			m.Add(i)
		}
	}
	return m, nil
}

// grow adds axioms to a failing removal set while the goal still fails.
func (e *explorer) grow(ctx context.Context, set *roaring.Bitmap, n int) (*roaring.Bitmap, error) {
	s := set.Clone()
	for i := 0; i < n; i++ {
		if s.Contains(uint32(i)) {
			continue
		}
		s.Add(uint32(i))
		ok, err := e.check(ctx, s)
		if err != nil {
			return nil, err
		}
		if ok {
			s.Remove(uint32(i))
		}
	}
	return s, nil
}

// check evaluates the goal with exactly the candidates in set removed.
func (e *explorer) check(ctx context.Context, set *roaring.Bitmap) (bool, error) {
	key := set.String()
	if ok, hit := e.cache[key]; hit {
		return ok, nil
	}
	if err := e.apply(set); err != nil {
		return false, err
	}
	e.checks++
	ok, err := e.goal(ctx, e.r)
	if err != nil {
		return false, err
	}
	e.cache[key] = ok
	return ok, nil
}

// apply retracts and re-asserts candidates so that exactly set is removed.
func (e *explorer) apply(set *roaring.Bitmap) error {
	if err := e.r.AddAxioms(e.pick(roaring.AndNot(e.removed, set))...); err != nil {
		return err
	}
	if err := e.r.RemoveAxioms(e.pick(roaring.AndNot(set, e.removed))...); err != nil {
		return fmt.Errorf("repair: candidate not asserted: %w", err)
	}
	e.removed = set.Clone()
	return nil
}

func (e *explorer) restore() {
	if err := e.apply(roaring.New()); err != nil {
		e.logger.Warn("restoring candidates failed", "error", err)
	}
}

func (e *explorer) pick(set *roaring.Bitmap) []ontology.Axiom {
	out := make([]ontology.Axiom, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, e.candidates[it.Next()])
	}
	return out
}

func toRepair(set *roaring.Bitmap) Repair {
	out := make(Repair, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
