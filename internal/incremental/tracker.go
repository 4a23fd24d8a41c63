package incremental

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/elgo/ontology"
)

// Delta is the net change between the applied axioms and the ledger.
type Delta struct {
	Added   []ontology.Axiom
	Removed []ontology.Axiom
}

// IsEmpty reports whether the delta changes nothing.
func (d Delta) IsEmpty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

// HasRoleChanges reports whether any role axiom is added or removed.
func (d Delta) HasRoleChanges() bool {
	for _, ax := range d.Added {
		if ax.IsRoleAxiom() {
			return true
		}
	}
	for _, ax := range d.Removed {
		if ax.IsRoleAxiom() {
			return true
		}
	}
	return false
}

// Premises returns the expressions whose presence in a context can trigger a
// rule of a removed or added axiom.
func (d Delta) Premises(idx *ontology.Index) (removed, added []ontology.ID) {
	return premises(idx, d.Removed), premises(idx, d.Added)
}

func premises(idx *ontology.Index, axioms []ontology.Axiom) []ontology.ID {
	var out []ontology.ID
	for _, ax := range axioms {
		switch ax.Kind {
		case ontology.SubClassOfAxiom:
			out = append(out, idx.Premises(ax.Classes[0])...)
		case ontology.EquivalentClassesAxiom, ontology.DisjointClassesAxiom:
			for _, c := range ax.Classes {
				out = append(out, idx.Premises(c)...)
			}
		case ontology.ObjectPropertyDomainAxiom:
			out = append(out, idx.Premises(idx.Some(ax.Roles[0], ontology.Thing))...)
		}
	}
	return out
}

// Tracker records asserted and retracted axioms between runs.
type Tracker struct {
	ledger  *OnOffVector[ontology.Axiom]
	applied *roaring.Bitmap
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ledger:  NewOnOffVector[ontology.Axiom](),
		applied: roaring.New(),
	}
}

// Add switches an axiom on. It reports whether the axiom was off before.
func (t *Tracker) Add(ax ontology.Axiom) bool {
	_, changed := t.ledger.Set(ax.Key(), ax, true)
	return changed
}

// Remove switches an axiom off. It reports whether the axiom was on before.
func (t *Tracker) Remove(ax ontology.Axiom) bool {
	_, changed := t.ledger.Set(ax.Key(), ax, false)
	return changed
}

// Contains reports whether an axiom is currently on.
func (t *Tracker) Contains(ax ontology.Axiom) bool {
	pos, ok := t.ledger.Position(ax.Key())
	return ok && t.ledger.IsOn(pos)
}

// Pending reports whether the ledger differs from the applied set.
func (t *Tracker) Pending() bool {
	return !t.ledger.on.Equals(t.applied)
}

// Delta returns the axioms switched on but not yet applied and the axioms
// applied but switched off since, both in ledger order.
func (t *Tracker) Delta() Delta {
	var d Delta
	added := roaring.AndNot(t.ledger.on, t.applied)
	it := added.Iterator()
	for it.HasNext() {
		d.Added = append(d.Added, t.ledger.At(it.Next()))
	}
	removed := roaring.AndNot(t.applied, t.ledger.on)
	it = removed.Iterator()
	for it.HasNext() {
		d.Removed = append(d.Removed, t.ledger.At(it.Next()))
	}
	return d
}

// Commit marks the current ledger as applied.
func (t *Tracker) Commit() {
	t.applied = t.ledger.On()
}

// Active returns the axioms currently on, in ledger order.
func (t *Tracker) Active() []ontology.Axiom {
	out := make([]ontology.Axiom, 0, t.ledger.Count())
	t.ledger.Each(func(_ uint32, ax ontology.Axiom) { out = append(out, ax) })
	return out
}

// Len returns the number of axioms currently on.
func (t *Tracker) Len() int { return t.ledger.Count() }
