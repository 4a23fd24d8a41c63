package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/elgo/ontology"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// OntologyConfig controls the shape of a random ontology.
type OntologyConfig struct {
	Classes int
	Roles   int
	Axioms  int

	// ExistentialRate is the probability that a superclass is ∃r.C.
	ExistentialRate float64
	// ConjunctionRate is the probability that a subclass is a conjunction.
	ConjunctionRate float64
	// DisjointRate is the probability that an axiom is a DisjointClasses axiom.
	DisjointRate float64
	// EquivalenceRate is the probability that an axiom is an EquivalentClasses axiom.
	EquivalenceRate float64
	// RoleAxioms is the number of role inclusions, chains and transitivity axioms.
	RoleAxioms int
	// Skew is the Zipf exponent for class popularity. Zero means 1.1.
	Skew float64
}

func (c OntologyConfig) withDefaults() OntologyConfig {
	if c.Classes <= 0 {
		c.Classes = 50
	}
	if c.Roles <= 0 {
		c.Roles = 3
	}
	if c.Axioms <= 0 {
		c.Axioms = 2 * c.Classes
	}
	if c.Skew == 0 {
		c.Skew = 1.1
	}
	return c
}

// Ontology is a generated ontology. Axioms are not applied to Index.
type Ontology struct {
	Index   *ontology.Index
	Classes []ontology.ID
	Roles   []ontology.RoleID
	Axioms  []ontology.Axiom
}

// Ontology generates a random EL++ ontology. The same seed and config always
// produce the same axioms in the same order.
func (r *RNG) Ontology(cfg OntologyConfig) *Ontology {
	cfg = cfg.withDefaults()
	idx := ontology.NewIndex()
	o := &Ontology{Index: idx}
	for i := range cfg.Classes {
		o.Classes = append(o.Classes, idx.Class(fmt.Sprintf("C%d", i)))
	}
	for i := range cfg.Roles {
		o.Roles = append(o.Roles, idx.Role(fmt.Sprintf("r%d", i)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	class := func() ontology.ID { return o.Classes[r.zipfLocked(len(o.Classes), cfg.Skew)] }
	role := func() ontology.RoleID { return o.Roles[r.rand.Intn(len(o.Roles))] }

	for range cfg.RoleAxioms {
		switch r.rand.Intn(3) {
		case 0:
			sub, sup := role(), role()
			if sub != sup {
				o.Axioms = append(o.Axioms, ontology.SubObjectPropertyOf(sub, sup))
			}
		case 1:
			o.Axioms = append(o.Axioms, ontology.SubPropertyChainOf([]ontology.RoleID{role(), role()}, role()))
		default:
			o.Axioms = append(o.Axioms, ontology.TransitiveObjectProperty(role()))
		}
	}

	for range cfg.Axioms {
		p := r.rand.Float64()
		switch {
		case p < cfg.DisjointRate:
			o.Axioms = append(o.Axioms, ontology.DisjointClasses(class(), class()))
		case p < cfg.DisjointRate+cfg.EquivalenceRate:
			o.Axioms = append(o.Axioms, ontology.EquivalentClasses(class(), class()))
		default:
			sub := class()
			if r.rand.Float64() < cfg.ConjunctionRate {
				sub = idx.And(sub, class())
			}
			sup := class()
			if r.rand.Float64() < cfg.ExistentialRate {
				sup = idx.Some(role(), sup)
			}
			o.Axioms = append(o.Axioms, ontology.SubClassOf(sub, sup))
		}
	}
	return o
}

// Apply asserts axioms on the generated index.
func (o *Ontology) Apply(axioms ...ontology.Axiom) error {
	for _, ax := range axioms {
		if err := o.Index.Apply(ax, 1); err != nil {
			return err
		}
	}
	return nil
}
