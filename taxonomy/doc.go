// Package taxonomy extracts the class hierarchy from derived subsumer sets.
//
// Named classes that subsume each other are merged into one Node. The
// remaining strict subsumption order is reduced to its direct edges, so the
// result is a DAG with owl:Thing in the top node and owl:Nothing together with
// all unsatisfiable classes in the bottom node. Builds over incomplete
// subsumer sets still yield a DAG.
package taxonomy
