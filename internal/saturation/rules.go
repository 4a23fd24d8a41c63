package saturation

import (
	"fmt"

	"github.com/hupe1980/elgo/ontology"
)

type ruleFunc func(w *worker, c *Context, concl Conclusion) error

// dispatch maps each conclusion kind to the rules triggered by it.
var dispatch = [numKinds]ruleFunc{
	ContextInit:      (*worker).applyInit,
	Subsumer:         (*worker).applySubsumer,
	BackwardLink:     (*worker).applyBackwardLink,
	ForwardLink:      (*worker).applyForwardLink,
	Propagation:      (*worker).applyPropagation,
	DisjointSubsumer: (*worker).applyDisjointSubsumer,
}

func (w *worker) apply(c *Context, concl Conclusion) error {
	if concl.Kind >= numKinds {
		return &InvariantViolation{Context: c.root, Reason: fmt.Sprintf("unknown conclusion kind %s", concl.Kind)}
	}
	return dispatch[concl.Kind](w, c, concl)
}

func (w *worker) expr(c *Context, id ontology.ID) (ontology.Expr, error) {
	if int(id) >= len(w.exprs) {
		return ontology.Expr{}, &InvariantViolation{Context: c.root, Reason: fmt.Sprintf("unknown expression #%d", id)}
	}
	return w.exprs[id], nil
}

// local produces a conclusion into the context being processed.
func (w *worker) local(c *Context, concl Conclusion) {
	c.push(concl)
}

// produce sends a conclusion to the context of target, creating it if needed.
func (w *worker) produce(target ontology.ID, concl Conclusion) {
	w.s.produce(w.s.Ensure(target), concl)
}

// link derives src ⊑ ∃role.dst.
func (w *worker) link(src ontology.ID, role ontology.RoleID, dst ontology.ID) {
	w.produce(dst, Conclusion{Kind: BackwardLink, Role: role, Peer: src})
	if w.idx.NeedsForwardLinks(role) {
		w.produce(src, Conclusion{Kind: ForwardLink, Role: role, Peer: dst})
	}
}

func (w *worker) applyInit(c *Context, _ Conclusion) error {
	if c.initialized {
		return nil
	}
	c.initialized = true
	w.counts[RuleInit]++
	w.local(c, Conclusion{Kind: Subsumer, Expr: c.root})
	w.local(c, Conclusion{Kind: Subsumer, Expr: ontology.Thing})
	return nil
}

func (w *worker) applySubsumer(c *Context, concl Conclusion) error {
	id := concl.Expr
	e, err := w.expr(c, id)
	if err != nil {
		return err
	}
	if !c.subsumers.CheckedAdd(id) {
		return nil
	}

	if e.Kind == ontology.KindClass && id != c.root && w.isNamedRoot(c) {
		w.counts[RuleEquivalenceMergeTrigger]++
		w.s.Ensure(id)
	}

	for _, sup := range w.idx.ToldSuperClasses(id) {
		w.counts[RuleSubsumerPropagation]++
		w.local(c, Conclusion{Kind: Subsumer, Expr: sup})
	}

	switch e.Kind {
	case ontology.KindConjunction:
		w.counts[RuleConjunctionDecomposition]++
		w.local(c, Conclusion{Kind: Subsumer, Expr: e.Left})
		w.local(c, Conclusion{Kind: Subsumer, Expr: e.Right})
	case ontology.KindExistential:
		w.counts[RuleExistentialDecomposition]++
		w.link(c.root, e.Role, e.Filler)
	case ontology.KindNothing:
		c.Predecessors(func(src ontology.ID) {
			w.counts[RuleBottomPropagation]++
			w.produce(src, Conclusion{Kind: Subsumer, Expr: ontology.Nothing})
		})
	}

	for _, conj := range w.idx.NegativeConjunctions(id) {
		ce, err := w.expr(c, conj)
		if err != nil {
			return err
		}
		if c.subsumers.Contains(ce.Partner(id)) {
			w.counts[RuleConjunctionComposition]++
			w.local(c, Conclusion{Kind: Subsumer, Expr: conj})
		}
	}

	for _, ex := range w.idx.NegativeExistentials(id) {
		w.counts[RulePropagationGeneration]++
		w.local(c, Conclusion{Kind: Propagation, Expr: ex})
	}

	for _, d := range w.idx.Disjointness(id) {
		w.counts[RuleDisjointnessCheck]++
		if d.HasDuplicate(id) {
			w.local(c, Conclusion{Kind: Subsumer, Expr: ontology.Nothing})
			continue
		}
		w.local(c, Conclusion{Kind: DisjointSubsumer, Axiom: d.ID, Expr: id})
	}
	return nil
}

func (w *worker) isNamedRoot(c *Context) bool {
	return int(c.root) < len(w.exprs) && w.exprs[c.root].IsNamed()
}

func (w *worker) applyBackwardLink(c *Context, concl Conclusion) error {
	if !c.addBackward(concl.Role, concl.Peer) {
		return nil
	}
	src := concl.Peer

	if c.subsumers.Contains(ontology.Nothing) {
		w.counts[RuleBottomPropagation]++
		w.produce(src, Conclusion{Kind: Subsumer, Expr: ontology.Nothing})
	}

	it := c.propagations.Iterator()
	for it.HasNext() {
		p := it.Next()
		pe, err := w.expr(c, p)
		if err != nil {
			return err
		}
		if w.idx.IsSubRole(concl.Role, pe.Role) {
			w.counts[RuleExistentialComposition]++
			w.produce(src, Conclusion{Kind: Subsumer, Expr: p})
		}
	}

	if w.idx.HasChains() {
		for role, dsts := range c.forward {
			w.idx.ComposeChains(concl.Role, role, func(super ontology.RoleID) {
				dit := dsts.Iterator()
				for dit.HasNext() {
					w.counts[RuleChainComposition]++
					w.link(src, super, dit.Next())
				}
			})
		}
	}
	return nil
}

func (w *worker) applyForwardLink(c *Context, concl Conclusion) error {
	if !c.addForward(concl.Role, concl.Peer) {
		return nil
	}
	for role, srcs := range c.backward {
		w.idx.ComposeChains(role, concl.Role, func(super ontology.RoleID) {
			it := srcs.Iterator()
			for it.HasNext() {
				w.counts[RuleChainComposition]++
				w.link(it.Next(), super, concl.Peer)
			}
		})
	}
	return nil
}

func (w *worker) applyPropagation(c *Context, concl Conclusion) error {
	if !c.propagations.CheckedAdd(concl.Expr) {
		return nil
	}
	pe, err := w.expr(c, concl.Expr)
	if err != nil {
		return err
	}
	for role, srcs := range c.backward {
		if !w.idx.IsSubRole(role, pe.Role) {
			continue
		}
		it := srcs.Iterator()
		for it.HasNext() {
			w.counts[RuleExistentialComposition]++
			w.produce(it.Next(), Conclusion{Kind: Subsumer, Expr: concl.Expr})
		}
	}
	return nil
}

func (w *worker) applyDisjointSubsumer(c *Context, concl Conclusion) error {
	first, seen := c.disjoint[concl.Axiom]
	if !seen {
		c.disjoint[concl.Axiom] = concl.Expr
		return nil
	}
	if first != concl.Expr {
		w.local(c, Conclusion{Kind: Subsumer, Expr: ontology.Nothing})
	}
	return nil
}
