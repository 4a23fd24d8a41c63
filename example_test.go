package elgo_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
)

// Example demonstrates classifying a small ontology with existential
// restrictions and a transitive role.
func Example() {
	idx := ontology.NewIndex()
	partOf := idx.Role("partOf")
	finger, hand, arm := idx.Class("Finger"), idx.Class("Hand"), idx.Class("Arm")
	armPart := idx.Class("ArmPart")

	for _, ax := range []ontology.Axiom{
		ontology.TransitiveObjectProperty(partOf),
		ontology.SubClassOf(finger, idx.Some(partOf, hand)),
		ontology.SubClassOf(hand, idx.Some(partOf, arm)),
		ontology.EquivalentClasses(armPart, idx.Some(partOf, arm)),
	} {
		if err := idx.Apply(ax, 1); err != nil {
			log.Fatal(err)
		}
	}

	r := elgo.New(idx, elgo.WithWorkers(2))
	defer r.Close()

	res, err := r.DirectSuperClasses(context.Background(), finger)
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range res.Value() {
		fmt.Println(idx.Format(n.Canonical()))
	}
	// Output: ArmPart
}

// Example_incremental demonstrates adding and retracting axioms between runs.
func Example_incremental() {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	if err := idx.Apply(ontology.SubClassOf(a, b), 1); err != nil {
		log.Fatal(err)
	}

	r := elgo.New(idx)
	defer r.Close()

	show := func() {
		res, err := r.Subsumers(ctx, a)
		if err != nil {
			log.Fatal(err)
		}
		var names []string
		for _, id := range res.Value() {
			names = append(names, idx.Format(id))
		}
		fmt.Println(strings.Join(names, " "))
	}

	show()
	if err := r.AddAxioms(ontology.SubClassOf(b, c)); err != nil {
		log.Fatal(err)
	}
	show()
	if err := r.RemoveAxioms(ontology.SubClassOf(b, c)); err != nil {
		log.Fatal(err)
	}
	show()
	// Output:
	// owl:Thing A B
	// owl:Thing A B C
	// owl:Thing A B
}

// Example_taxonomy prints the direct subsumption edges of a taxonomy.
func Example_taxonomy() {
	idx := ontology.NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	for _, ax := range []ontology.Axiom{
		ontology.SubClassOf(a, b),
		ontology.SubClassOf(b, a),
		ontology.SubClassOf(a, c),
	} {
		if err := idx.Apply(ax, 1); err != nil {
			log.Fatal(err)
		}
	}

	r := elgo.New(idx)
	defer r.Close()

	tax, err := r.Taxonomy(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range tax.Value().Edges() {
		fmt.Printf("%s ⊑ %s\n", idx.Format(e.Child), idx.Format(e.Parent))
	}
	// Output:
	// owl:Nothing ⊑ A
	// A ⊑ C
	// C ⊑ owl:Thing
}
