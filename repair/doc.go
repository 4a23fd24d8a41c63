// Package repair enumerates minimal repairs of an ontology.
//
// A repair is a subset-minimal set of candidate axioms whose removal makes a
// goal hold, for example that a class becomes satisfiable or that two classes
// stop being equivalent. Enumeration follows the MARCO scheme: a SAT solver
// maps the explored removal sets, every unexplored seed is checked against the
// reasoner, and each answer is shrunk to a minimal repair or grown to a
// minimal conflict before it is blocked. All goals are monotone with respect
// to removal, so every minimal repair is found exactly once.
package repair
