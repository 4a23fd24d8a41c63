// Package ontology provides the indexed ontology model consumed by the reasoner.
//
// Class expressions and object properties are interned into an arena owned by an
// Index. Structurally equal expressions share one ID, so identity comparisons are
// plain integer comparisons and set membership can be tracked in compressed bitmaps.
//
// # Expressions
//
//	idx := ontology.NewIndex()
//	a := idx.Class("A")
//	r := idx.Role("hasPart")
//	c := idx.And(a, idx.Some(r, idx.Class("B")))
//
// Conjunctions are normalized to binary, commutative form: And(a, b) and And(b, a)
// intern to the same ID, and And(a, b, c) becomes And(a, And(b, c)) with operands
// ordered by ID.
//
// # Axioms
//
// Axioms are plain values built with SubClassOf, EquivalentClasses, DisjointClasses,
// SubObjectPropertyOf, SubPropertyChainOf, TransitiveObjectProperty and
// ObjectPropertyDomain. They become visible to inference rules only after Apply
// has been called with a positive delta; a negative delta retracts them again.
// The occurrence tables built by Apply are reference counted, so the same axiom
// content may be asserted more than once.
//
// # Concurrency
//
// Interning (Class, Role, And, Some) is safe for concurrent use. Apply and
// PrepareRoles mutate the rule tables and must not run concurrently with
// readers of those tables; the reasoner only calls them between saturation runs.
package ontology
