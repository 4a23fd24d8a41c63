// Package elgo provides a concurrent, incremental EL++ classifier for Go.
//
// Elgo computes, for every class of an ontology, the complete set of its
// subsumers by forward-chaining saturation, and derives the taxonomy: the
// direct subsumption DAG with equivalent classes merged into single nodes.
//
// # Quick Start
//
//	idx := ontology.NewIndex()
//	partOf := idx.Role("partOf")
//	hand, arm, body := idx.Class("Hand"), idx.Class("Arm"), idx.Class("Body")
//
//	r := elgo.New(idx, elgo.WithWorkers(4))
//	defer r.Close()
//
//	_ = r.AddAxioms(
//	    ontology.TransitiveObjectProperty(partOf),
//	    ontology.SubClassOf(hand, idx.Some(partOf, arm)),
//	    ontology.SubClassOf(arm, idx.Some(partOf, body)),
//	)
//
//	res, _ := r.Classify(ctx)
//	tax, _ := r.Taxonomy(ctx)
//
// # Supported Constructs
//
// Class expressions are named classes, owl:Thing, owl:Nothing, conjunctions
// and existential restrictions. Axioms are SubClassOf, EquivalentClasses,
// DisjointClasses, SubObjectPropertyOf including property chains,
// TransitiveObjectProperty and ObjectPropertyDomain.
//
// # Concurrency
//
// Every expression under classification owns a context. Workers claim
// contexts from a shared ready queue with an atomic state transition, so a
// context is processed by one worker at a time while different contexts are
// saturated in parallel. The result never depends on the number of workers.
//
// # Interruption
//
// Canceling the context passed to Classify, or calling Interrupt, stops the
// run at the next safe point. Results computed from the partial state are
// marked incomplete via Result.Complete and only contain subsumptions that
// also hold in the complete result. The next Classify resumes the run.
//
// # Incremental Classification
//
// Axioms added with AddAxioms can be retracted with RemoveAxioms. The next
// Classify applies the net change: only contexts that used a changed axiom,
// and those depending on them, are re-saturated. Changes to role axioms
// discard the whole state.
//
// # Telemetry
//
// A MetricsObserver receives per-run rule application counts, throttled
// progress reports and incremental statistics. See metrics/prometheus for a
// Prometheus implementation.
package elgo
