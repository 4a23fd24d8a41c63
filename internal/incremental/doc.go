// Package incremental tracks axiom changes between saturation runs.
//
// Changes are recorded in an append-only OnOffVector ledger: an axiom keeps
// its position forever and is only toggled on or off. The Tracker compares the
// ledger with the set of axioms applied to the index by the last run and
// yields the net Delta, which decides between an incremental invalidation and
// a full reset of the saturation state.
package incremental
