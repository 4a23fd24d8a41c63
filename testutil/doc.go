// Package testutil provides testing utilities for elgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random number generator and a generator for random
// EL++ ontologies.
//
// # Random Ontologies
//
//	rng := testutil.NewRNG(seed)
//	ont := rng.Ontology(testutil.OntologyConfig{Classes: 200, Roles: 5, Axioms: 600})
//	for _, ax := range ont.Axioms {
//		_ = ont.Index.Apply(ax, 1)
//	}
//
// Class popularity follows a Zipf distribution, so a few hub classes appear
// in many axioms, as in real ontologies.
package testutil
