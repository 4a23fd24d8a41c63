package elgo

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/elgo/internal/saturation"
	"github.com/hupe1980/elgo/ontology"
	"github.com/hupe1980/elgo/taxonomy"
)

// Subsumers returns the named classes subsuming expr, including expr itself if
// it is named and owl:Thing. For an unsatisfiable expression every named class
// is returned. expr may be any indexed expression; compound expressions get a
// context of their own on first use.
func (r *Reasoner) Subsumers(ctx context.Context, expr ontology.ID) (Result[[]ontology.ID], error) {
	var out []ontology.ID
	complete, err := r.withContext(ctx, expr, func(c *saturation.Context) error {
		if c.IsInconsistent() {
			out = r.allNamed()
			return nil
		}
		out = r.named(c.Subsumers())
		return nil
	})
	if err != nil {
		return Result[[]ontology.ID]{}, err
	}
	return newResult(out, complete), nil
}

// Equivalents returns the named classes equivalent to expr. An unsatisfiable
// expression is equivalent to owl:Nothing and every unsatisfiable class.
//
// ErrUnsupportedTask is returned if expr contains an existential restriction
// that does not occur on the left-hand side of any axiom, since subsumption by
// such an expression is not derived.
func (r *Reasoner) Equivalents(ctx context.Context, expr ontology.ID) (Result[[]ontology.ID], error) {
	var out []ontology.ID
	complete, err := r.withContext(ctx, expr, func(c *saturation.Context) error {
		if c.IsInconsistent() {
			out = append(out, ontology.Nothing)
			for _, id := range r.idx.Classes() {
				if d := r.state.Context(id); d != nil && d.IsInconsistent() {
					out = append(out, id)
				}
			}
			return nil
		}
		for _, d := range r.named(c.Subsumers()) {
			ok, err := r.subsumes(d, expr)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, d)
			}
		}
		return nil
	})
	if err != nil {
		return Result[[]ontology.ID]{}, err
	}
	return newResult(out, complete), nil
}

// subsumes reports whether expr is a derived subsumer of the named class d.
func (r *Reasoner) subsumes(d, expr ontology.ID) (bool, error) {
	c := r.state.Context(d)
	if c == nil {
		return false, nil
	}
	if c.Subsumers().Contains(expr) || expr == ontology.Thing {
		return true, nil
	}
	e, _ := r.idx.Expr(expr)
	switch e.Kind {
	case ontology.KindConjunction:
		left, err := r.subsumes(d, e.Left)
		if err != nil || !left {
			return false, err
		}
		return r.subsumes(d, e.Right)
	case ontology.KindExistential:
		if !r.idx.OccursNegatively(expr) {
			return false, fmt.Errorf("equivalents of %s: %w", r.idx.Format(expr), ErrUnsupportedTask)
		}
	}
	return false, nil
}

// IsSatisfiable reports whether expr can have instances.
func (r *Reasoner) IsSatisfiable(ctx context.Context, expr ontology.ID) (Result[bool], error) {
	var sat bool
	complete, err := r.withContext(ctx, expr, func(c *saturation.Context) error {
		sat = !c.IsInconsistent()
		return nil
	})
	if err != nil {
		return Result[bool]{}, err
	}
	return newResult(sat, complete), nil
}

// DirectSuperClasses returns the parent nodes of a named class in the taxonomy.
func (r *Reasoner) DirectSuperClasses(ctx context.Context, class ontology.ID) (Result[[]*taxonomy.Node], error) {
	return r.neighbours(ctx, class, (*taxonomy.Node).Parents)
}

// DirectSubClasses returns the child nodes of a named class in the taxonomy.
func (r *Reasoner) DirectSubClasses(ctx context.Context, class ontology.ID) (Result[[]*taxonomy.Node], error) {
	return r.neighbours(ctx, class, (*taxonomy.Node).Children)
}

func (r *Reasoner) neighbours(ctx context.Context, class ontology.ID, fn func(*taxonomy.Node) []*taxonomy.Node) (Result[[]*taxonomy.Node], error) {
	e, ok := r.idx.Expr(class)
	if !ok {
		return Result[[]*taxonomy.Node]{}, fmt.Errorf("query #%d: %w", class, ontology.ErrUnknownExpression)
	}
	if !e.IsNamed() {
		return Result[[]*taxonomy.Node]{}, fmt.Errorf("taxonomy node of %s: %w", r.idx.Format(class), ErrUnsupportedTask)
	}
	tax, err := r.Taxonomy(ctx)
	if err != nil {
		return Result[[]*taxonomy.Node]{}, err
	}
	node, ok := tax.Value().Node(class)
	if !ok {
		return Result[[]*taxonomy.Node]{}, fmt.Errorf("taxonomy node of %s: %w", r.idx.Format(class), ErrUnsupportedTask)
	}
	return newResult(fn(node), tax.Complete()), nil
}

// withContext calls fn with the saturated context of expr, classifying first
// if the state is not up to date. It reports whether the answer is complete.
func (r *Reasoner) withContext(ctx context.Context, expr ontology.ID, fn func(c *saturation.Context) error) (bool, error) {
	if r.closed.Load() {
		return false, ErrClosed
	}
	if _, ok := r.idx.Expr(expr); !ok {
		return false, fmt.Errorf("query #%d: %w", expr, ontology.ErrUnknownExpression)
	}

	r.mu.RLock()
	if r.upToDate {
		if c := r.state.Context(expr); c != nil && c.IsSaturated() {
			defer r.mu.RUnlock()
			return true, fn(c)
		}
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	complete := true
	if !r.upToDate {
		res, err := r.classify(ctx)
		if err != nil {
			return false, err
		}
		complete = res.Complete
	}
	c := r.state.Ensure(expr)
	if complete && !c.IsSaturated() {
		res, err := r.classify(ctx)
		if err != nil {
			return false, err
		}
		complete = res.Complete
	}
	return complete, fn(c)
}

func (r *Reasoner) subsumerSet(id ontology.ID) *roaring.Bitmap {
	c := r.state.Context(id)
	if c == nil {
		return nil
	}
	return c.Subsumers()
}

// named filters a subsumer set down to named classes and owl:Thing.
func (r *Reasoner) named(subs *roaring.Bitmap) []ontology.ID {
	exprs := r.idx.Exprs()
	out := make([]ontology.ID, 0, subs.GetCardinality())
	it := subs.Iterator()
	for it.HasNext() {
		id := it.Next()
		if int(id) < len(exprs) && exprs[id].IsNamed() {
			out = append(out, id)
		}
	}
	return out
}

func (r *Reasoner) allNamed() []ontology.ID {
	return append([]ontology.ID{ontology.Thing, ontology.Nothing}, r.idx.Classes()...)
}
