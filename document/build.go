package document

import (
	"fmt"

	"github.com/hupe1980/elgo/ontology"
)

// Ontology is a document interned into an index.
type Ontology struct {
	Index *ontology.Index
	// Static axioms are meant to be applied to the index directly.
	Static []ontology.Axiom
	// Changing axioms are meant to be asserted through the reasoner.
	Changing []ontology.Axiom
}

// Build interns the document into idx. A nil idx creates a fresh index. Axioms
// are validated but not applied.
func (d *Document) Build(idx *ontology.Index) (*Ontology, error) {
	if idx == nil {
		idx = ontology.NewIndex()
	}
	for _, name := range d.Classes {
		idx.Class(name)
	}
	for _, name := range d.Roles {
		idx.Role(name)
	}

	o := &Ontology{Index: idx}
	var err error
	if o.Static, err = buildAxioms(idx, d.Axioms); err != nil {
		return nil, err
	}
	if o.Changing, err = buildAxioms(idx, d.Changing); err != nil {
		return nil, err
	}
	return o, nil
}

// ApplyStatic asserts the static axioms on the index.
func (o *Ontology) ApplyStatic() error {
	for _, ax := range o.Static {
		if err := o.Index.Apply(ax, 1); err != nil {
			return err
		}
	}
	return nil
}

func buildAxioms(idx *ontology.Index, axioms []Axiom) ([]ontology.Axiom, error) {
	out := make([]ontology.Axiom, 0, len(axioms))
	for _, a := range axioms {
		ax, err := a.Build(idx)
		if err != nil {
			if a.Line > 0 {
				return nil, fmt.Errorf("axiom at line %d: %w", a.Line, err)
			}
			return nil, err
		}
		if err := idx.Validate(ax); err != nil {
			return nil, err
		}
		out = append(out, ax)
	}
	return out, nil
}

// Build interns the axiom's expressions and roles into idx.
func (a Axiom) Build(idx *ontology.Index) (ontology.Axiom, error) {
	switch {
	case a.SubClassOf != nil:
		sub, err := a.SubClassOf.Sub.Build(idx)
		if err != nil {
			return ontology.Axiom{}, err
		}
		sup, err := a.SubClassOf.Super.Build(idx)
		if err != nil {
			return ontology.Axiom{}, err
		}
		return ontology.SubClassOf(sub, sup), nil
	case a.EquivalentClasses != nil:
		ids, err := buildExprs(idx, a.EquivalentClasses)
		if err != nil {
			return ontology.Axiom{}, err
		}
		return ontology.EquivalentClasses(ids...), nil
	case a.DisjointClasses != nil:
		ids, err := buildExprs(idx, a.DisjointClasses)
		if err != nil {
			return ontology.Axiom{}, err
		}
		return ontology.DisjointClasses(ids...), nil
	case a.SubPropertyOf != nil:
		sp := a.SubPropertyOf
		sup := idx.Role(sp.Super)
		if sp.Sub != "" {
			return ontology.SubObjectPropertyOf(idx.Role(sp.Sub), sup), nil
		}
		chain := make([]ontology.RoleID, len(sp.Chain))
		for i, r := range sp.Chain {
			chain[i] = idx.Role(r)
		}
		return ontology.SubPropertyChainOf(chain, sup), nil
	case a.Transitive != "":
		return ontology.TransitiveObjectProperty(idx.Role(a.Transitive)), nil
	case a.Domain != nil:
		class, err := a.Domain.Class.Build(idx)
		if err != nil {
			return ontology.Axiom{}, err
		}
		return ontology.ObjectPropertyDomain(idx.Role(a.Domain.Role), class), nil
	}
	return ontology.Axiom{}, fmt.Errorf("empty axiom: %w", ontology.ErrMalformedAxiom)
}

// Build interns the expression into idx.
func (e Expr) Build(idx *ontology.Index) (ontology.ID, error) {
	switch {
	case e.Some != nil:
		filler, err := e.Some.Filler.Build(idx)
		if err != nil {
			return 0, err
		}
		return idx.Some(idx.Role(e.Some.Role), filler), nil
	case len(e.And) > 0:
		ids, err := buildExprs(idx, e.And)
		if err != nil {
			return 0, err
		}
		return idx.And(ids...), nil
	case e.Name != "":
		return idx.Class(e.Name), nil
	}
	return 0, fmt.Errorf("empty class expression: %w", ontology.ErrMalformedAxiom)
}

func buildExprs(idx *ontology.Index, exprs []Expr) ([]ontology.ID, error) {
	ids := make([]ontology.ID, len(exprs))
	for i, e := range exprs {
		id, err := e.Build(idx)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Diff returns the axioms of next that are not in prev and the axioms of prev
// that are not in next, compared by structural key. Both slices must be built
// on the same index.
func Diff(prev, next []ontology.Axiom) (added, removed []ontology.Axiom) {
	prevKeys := make(map[string]bool, len(prev))
	for _, ax := range prev {
		prevKeys[ax.Key()] = true
	}
	nextKeys := make(map[string]bool, len(next))
	for _, ax := range next {
		k := ax.Key()
		if !prevKeys[k] && !nextKeys[k] {
			added = append(added, ax)
		}
		nextKeys[k] = true
	}
	seen := make(map[string]bool, len(prev))
	for _, ax := range prev {
		k := ax.Key()
		if !nextKeys[k] && !seen[k] {
			removed = append(removed, ax)
		}
		seen[k] = true
	}
	return added, removed
}
