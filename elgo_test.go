package elgo_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
	"github.com/hupe1980/elgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, idx *ontology.Index, axioms ...ontology.Axiom) {
	t.Helper()
	for _, ax := range axioms {
		require.NoError(t, idx.Apply(ax, 1))
	}
}

func newReasoner(t *testing.T, idx *ontology.Index, opts ...elgo.Option) *elgo.Reasoner {
	t.Helper()
	r := elgo.New(idx, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// uniqueAxioms drops structural duplicates, which the reasoner tracks as one
// changing axiom.
func uniqueAxioms(axioms []ontology.Axiom) []ontology.Axiom {
	seen := make(map[string]bool, len(axioms))
	var out []ontology.Axiom
	for _, ax := range axioms {
		if k := ax.Key(); !seen[k] {
			seen[k] = true
			out = append(out, ax)
		}
	}
	return out
}

func subsumers(t *testing.T, r *elgo.Reasoner, id ontology.ID) []ontology.ID {
	t.Helper()
	res, err := r.Subsumers(context.Background(), id)
	require.NoError(t, err)
	require.True(t, res.Complete())
	return res.Value()
}

func TestClassify_SimpleCycle(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	mustApply(t, idx,
		ontology.SubClassOf(a, b),
		ontology.SubClassOf(b, a),
		ontology.SubClassOf(b, c),
	)
	r := newReasoner(t, idx)

	res, err := r.Classify(ctx)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, res.Consistent)
	assert.NotEmpty(t, res.RunID)

	tax, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	require.True(t, tax.Complete())
	require.NoError(t, tax.Value().Validate())

	node, ok := tax.Value().Node(a)
	require.True(t, ok)
	assert.Equal(t, []ontology.ID{a, b}, node.Members())
	assert.Equal(t, a, node.Canonical())

	parents := node.Parents()
	require.Len(t, parents, 1)
	assert.True(t, parents[0].Contains(c))
	for _, p := range parents {
		assert.NotSame(t, node, p)
	}

	children := node.Children()
	require.Len(t, children, 1)
	assert.Same(t, tax.Value().Bottom(), children[0])
}

func TestClassify_Idempotent(t *testing.T) {
	ctx := context.Background()
	o := testutil.NewRNG(42).Ontology(testutil.OntologyConfig{
		Classes:         60,
		Roles:           3,
		ExistentialRate: 0.4,
		ConjunctionRate: 0.2,
		RoleAxioms:      3,
	})
	require.NoError(t, o.Apply(o.Axioms...))
	r := newReasoner(t, o.Index, elgo.WithWorkers(4))

	first, err := r.Taxonomy(ctx)
	require.NoError(t, err)

	res, err := r.Classify(ctx)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Zero(t, res.Processed)
	assert.Nil(t, res.Incremental)

	second, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	assert.True(t, first.Value().Equal(second.Value()))
}

func TestClassify_WorkerCountDoesNotMatter(t *testing.T) {
	ctx := context.Background()
	cfg := testutil.OntologyConfig{
		Classes:         150,
		Roles:           4,
		ExistentialRate: 0.4,
		ConjunctionRate: 0.2,
		DisjointRate:    0.02,
		EquivalenceRate: 0.05,
		RoleAxioms:      5,
	}

	var want [][]ontology.ID
	for _, n := range []int{1, 2, 8} {
		o := testutil.NewRNG(7).Ontology(cfg)
		require.NoError(t, o.Apply(o.Axioms...))
		r := newReasoner(t, o.Index, elgo.WithWorkers(n))

		tax, err := r.Taxonomy(ctx)
		require.NoError(t, err)
		require.NoError(t, tax.Value().Validate())
		if want == nil {
			want = tax.Value().Groups()
			continue
		}
		assert.Equal(t, want, tax.Value().Groups(), "workers=%d", n)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	r0 := idx.Role("r")
	a, b, c, d := idx.Class("A"), idx.Class("B"), idx.Class("C"), idx.Class("D")
	mustApply(t, idx,
		ontology.SubClassOf(a, idx.Some(r0, b)),
		ontology.SubClassOf(idx.Some(r0, c), d),
	)
	r := newReasoner(t, idx)

	before := subsumers(t, r, a)
	require.NoError(t, r.AddAxioms(ontology.SubClassOf(b, c)))
	res, err := r.Classify(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Incremental)
	assert.False(t, res.Incremental.FullReset)
	assert.Equal(t, 1, res.Incremental.Added)

	after := subsumers(t, r, a)
	assert.Subset(t, after, before)
	assert.Contains(t, after, d)
	assert.NotContains(t, before, d)
}

func TestClassify_IncrementalMatchesFromScratch(t *testing.T) {
	ctx := context.Background()
	cfg := testutil.OntologyConfig{
		Classes:         80,
		Roles:           3,
		Axioms:          240,
		ExistentialRate: 0.4,
		ConjunctionRate: 0.25,
		DisjointRate:    0.03,
		EquivalenceRate: 0.05,
		RoleAxioms:      4,
	}

	inc := testutil.NewRNG(99).Ontology(cfg)
	// Role axioms come first and stay static.
	split := len(inc.Axioms) / 2
	require.NoError(t, inc.Apply(inc.Axioms[:split]...))
	changing := uniqueAxioms(inc.Axioms[split:])

	r := newReasoner(t, inc.Index, elgo.WithWorkers(4))
	require.NoError(t, r.AddAxioms(changing...))
	_, err := r.Classify(ctx)
	require.NoError(t, err)

	// Retract every third changing axiom and re-add one of them.
	var removed []ontology.Axiom
	for i := 0; i < len(changing); i += 3 {
		removed = append(removed, changing[i])
	}
	require.NoError(t, r.RemoveAxioms(removed...))
	res, err := r.Classify(ctx)
	require.NoError(t, err)
	require.True(t, res.Complete)
	require.NotNil(t, res.Incremental)
	assert.Equal(t, len(removed), res.Incremental.Removed)

	require.NoError(t, r.AddAxioms(removed[0]))
	_, err = r.Classify(ctx)
	require.NoError(t, err)

	ref := testutil.NewRNG(99).Ontology(cfg)
	require.NoError(t, ref.Apply(ref.Axioms[:split]...))
	for i, ax := range uniqueAxioms(ref.Axioms[split:]) {
		if i%3 == 0 && i != 0 {
			continue
		}
		require.NoError(t, ref.Apply(ax))
	}
	fresh := newReasoner(t, ref.Index, elgo.WithWorkers(1))

	for _, id := range inc.Classes {
		want := subsumers(t, fresh, id)
		got := subsumers(t, r, id)
		assert.Equal(t, want, got, "class %s", inc.Index.Format(id))
	}
}

func TestClassify_RoleChangeForcesReset(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	rr, s := idx.Role("r"), idx.Role("s")
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	mustApply(t, idx,
		ontology.SubClassOf(a, idx.Some(rr, b)),
		ontology.SubClassOf(idx.Some(s, b), c),
	)
	r := newReasoner(t, idx)
	assert.NotContains(t, subsumers(t, r, a), c)

	require.NoError(t, r.AddAxioms(ontology.SubObjectPropertyOf(rr, s)))
	res, err := r.Classify(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Incremental)
	assert.True(t, res.Incremental.FullReset)
	assert.Contains(t, subsumers(t, r, a), c)

	require.NoError(t, r.RemoveAxioms(ontology.SubObjectPropertyOf(rr, s)))
	assert.NotContains(t, subsumers(t, r, a), c)
}

func TestClassify_InterruptedIsSubset(t *testing.T) {
	o := testutil.NewRNG(3).Ontology(testutil.OntologyConfig{
		Classes:         300,
		Roles:           3,
		ExistentialRate: 0.5,
		RoleAxioms:      3,
	})
	require.NoError(t, o.Apply(o.Axioms...))
	r := newReasoner(t, o.Index, elgo.WithWorkers(2))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Classify(canceled)
	require.NoError(t, err)
	assert.False(t, res.Complete)

	target := o.Classes[len(o.Classes)-1]
	partial, err := r.Subsumers(canceled, target)
	require.NoError(t, err)
	assert.False(t, partial.Complete())

	tax, err := r.Taxonomy(canceled)
	require.NoError(t, err)
	assert.False(t, tax.Complete())
	assert.NoError(t, tax.Value().Validate())

	full := subsumers(t, r, target)
	assert.Subset(t, full, partial.Value())
	assert.True(t, r.Stats().UpToDate)
}

// interruptingObserver interrupts the reasoner once after a number of
// progress reports.
type interruptingObserver struct {
	elgo.NoopMetricsObserver
	r     *elgo.Reasoner
	after int64
	calls atomic.Int64
}

func (o *interruptingObserver) OnProgress(int64, int) {
	if o.calls.Add(1) == o.after {
		o.r.Interrupt()
	}
}

func TestClassify_InterruptedMidRunIsSubset(t *testing.T) {
	ctx := context.Background()
	o := testutil.NewRNG(5).Ontology(testutil.OntologyConfig{
		Classes:         400,
		Roles:           3,
		ExistentialRate: 0.5,
		ConjunctionRate: 0.2,
		RoleAxioms:      3,
	})
	require.NoError(t, o.Apply(o.Axioms...))

	obs := &interruptingObserver{after: 25}
	r := newReasoner(t, o.Index,
		elgo.WithWorkers(2),
		elgo.WithMetricsObserver(obs),
		elgo.WithProgressInterval(time.Nanosecond),
	)
	obs.r = r

	partial, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	require.False(t, partial.Complete())
	require.NoError(t, partial.Value().Validate())
	assert.False(t, r.Stats().UpToDate)

	full, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	require.True(t, full.Complete())

	for _, id := range o.Classes {
		n, ok := partial.Value().Node(id)
		require.True(t, ok)
		var derived []ontology.ID
		for _, a := range append(n.Ancestors(), n) {
			derived = append(derived, a.Members()...)
		}
		assert.Subset(t, subsumers(t, r, id), derived, o.Index.Format(id))
	}
}

func TestClassify_RoleResetsStayComplete(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		idx := ontology.NewIndex()
		rr, s := idx.Role("r"), idx.Role("s")
		a, b := idx.Class("A"), idx.Class("B")
		r := elgo.New(idx, elgo.WithWorkers(2))

		require.NoError(t, r.AddAxioms(ontology.SubClassOf(a, idx.Some(rr, b))))
		res, err := r.Classify(ctx)
		require.NoError(t, err)
		require.True(t, res.Complete, "iteration %d", i)

		require.NoError(t, r.AddAxioms(ontology.SubObjectPropertyOf(rr, s)))
		res, err = r.Classify(ctx)
		require.NoError(t, err)
		require.True(t, res.Complete, "iteration %d", i)
		require.NoError(t, r.Close())
	}
}

func TestReasoner_Interrupt(t *testing.T) {
	idx := ontology.NewIndex()
	a := idx.Class("A")
	r := newReasoner(t, idx)

	r.Interrupt()
	res, err := r.IsSatisfiable(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.True(t, res.Value())
}

func TestQuery_Equivalents(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	rr := idx.Role("r")
	a, b, c, d := idx.Class("A"), idx.Class("B"), idx.Class("C"), idx.Class("D")
	ab := idx.And(a, b)
	mustApply(t, idx,
		ontology.EquivalentClasses(c, ab),
		ontology.EquivalentClasses(a, d),
		ontology.SubClassOf(c, idx.Some(rr, a)),
	)
	r := newReasoner(t, idx)

	res, err := r.Equivalents(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []ontology.ID{a, d}, res.Value())

	res, err = r.Equivalents(ctx, ab)
	require.NoError(t, err)
	assert.Equal(t, []ontology.ID{c}, res.Value())

	_, err = r.Equivalents(ctx, idx.Some(rr, a))
	assert.ErrorIs(t, err, elgo.ErrUnsupportedTask)
}

func TestQuery_Unsatisfiable(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	mustApply(t, idx,
		ontology.DisjointClasses(a, b),
		ontology.SubClassOf(c, a),
		ontology.SubClassOf(c, b),
	)
	r := newReasoner(t, idx)

	sat, err := r.IsSatisfiable(ctx, c)
	require.NoError(t, err)
	assert.False(t, sat.Value())

	sat, err = r.IsSatisfiable(ctx, idx.And(a, b))
	require.NoError(t, err)
	assert.False(t, sat.Value(), "compound expressions get their own context")

	eq, err := r.Equivalents(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []ontology.ID{ontology.Nothing, c}, eq.Value())

	assert.ElementsMatch(t, []ontology.ID{ontology.Thing, ontology.Nothing, a, b, c}, subsumers(t, r, c))

	tax, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	assert.True(t, tax.Value().Bottom().Contains(c))

	consistent, err := r.IsConsistent(ctx)
	require.NoError(t, err)
	assert.True(t, consistent.Value())
}

func TestQuery_DirectNeighbours(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a, b, c, d := idx.Class("A"), idx.Class("B"), idx.Class("C"), idx.Class("D")
	mustApply(t, idx,
		ontology.SubClassOf(a, b),
		ontology.SubClassOf(b, c),
		ontology.SubClassOf(a, c),
		ontology.SubClassOf(d, b),
	)
	r := newReasoner(t, idx)

	sup, err := r.DirectSuperClasses(ctx, a)
	require.NoError(t, err)
	require.Len(t, sup.Value(), 1)
	assert.Equal(t, b, sup.Value()[0].Canonical())

	sub, err := r.DirectSubClasses(ctx, b)
	require.NoError(t, err)
	var got []ontology.ID
	for _, n := range sub.Value() {
		got = append(got, n.Canonical())
	}
	assert.Equal(t, []ontology.ID{a, d}, got)

	_, err = r.DirectSuperClasses(ctx, idx.And(a, d))
	assert.ErrorIs(t, err, elgo.ErrUnsupportedTask)

	_, err = r.DirectSuperClasses(ctx, 9999)
	assert.ErrorIs(t, err, ontology.ErrUnknownExpression)
}

func TestTaxonomy_Inconsistent(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a := idx.Class("A")
	mustApply(t, idx, ontology.SubClassOf(ontology.Thing, a))
	r := newReasoner(t, idx)
	require.NoError(t, r.AddAxioms(ontology.SubClassOf(a, ontology.Nothing)))

	_, err := r.Taxonomy(ctx)
	assert.ErrorIs(t, err, elgo.ErrInconsistentOntology)

	consistent, err := r.IsConsistent(ctx)
	require.NoError(t, err)
	assert.False(t, consistent.Value())

	// Fast path on an up-to-date state.
	_, err = r.Taxonomy(ctx)
	assert.ErrorIs(t, err, elgo.ErrInconsistentOntology)

	require.NoError(t, r.RemoveAxioms(ontology.SubClassOf(a, ontology.Nothing)))
	tax, err := r.Taxonomy(ctx)
	require.NoError(t, err)
	top := tax.Value().Top()
	assert.True(t, top.Contains(a), "A is equivalent to owl:Thing")
}

func TestAxioms_Validation(t *testing.T) {
	idx := ontology.NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	r := newReasoner(t, idx)

	err := r.AddAxioms(ontology.SubClassOf(a, b), ontology.SubClassOf(a, 500))
	var fault *ontology.IndexFault
	require.ErrorAs(t, err, &fault)
	assert.Empty(t, r.Axioms(), "a malformed batch adds nothing")

	require.NoError(t, r.AddAxioms(ontology.SubClassOf(a, b)))
	assert.Len(t, r.Axioms(), 1)

	err = r.RemoveAxioms(ontology.SubClassOf(b, a))
	assert.ErrorIs(t, err, ontology.ErrNotAsserted)
	assert.Len(t, r.Axioms(), 1)

	require.NoError(t, r.RemoveAxioms(ontology.SubClassOf(a, b)))
	assert.Empty(t, r.Axioms())
}

func TestStats(t *testing.T) {
	idx := ontology.NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	mustApply(t, idx, ontology.SubClassOf(a, b))
	r := newReasoner(t, idx)

	st := r.Stats()
	assert.False(t, st.UpToDate)
	assert.Equal(t, 1, st.Axioms)

	_, err := r.Classify(context.Background())
	require.NoError(t, err)
	st = r.Stats()
	assert.True(t, st.UpToDate)
	assert.Equal(t, 3, st.Contexts)
	assert.Zero(t, st.Backlog)
	assert.Positive(t, st.Rules.Total())
}

func TestMetrics_BasicObserver(t *testing.T) {
	ctx := context.Background()
	idx := ontology.NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	metrics := &elgo.BasicMetricsObserver{}
	r := newReasoner(t, idx, elgo.WithMetricsObserver(metrics))

	require.NoError(t, r.AddAxioms(ontology.SubClassOf(a, b)))
	_, err := r.Classify(ctx)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ClassifyCount)
	assert.Zero(t, stats.ClassifyErrors)
	assert.Equal(t, int64(1), stats.IncrementalCount)
	assert.Equal(t, int64(1), stats.FullResets)
	assert.Equal(t, int64(3), stats.Contexts)
	assert.Equal(t, uint64(3), stats.Rules[0], "one init per context")

	names := map[string]uint64{}
	stats.Rules.Each(func(name string, n uint64) { names[name] = n })
	assert.Equal(t, uint64(1), names["subsumer_propagation"])
}

func TestReasoner_ConcurrentQueries(t *testing.T) {
	ctx := context.Background()
	o := testutil.NewRNG(5).Ontology(testutil.OntologyConfig{Classes: 100, ExistentialRate: 0.3})
	require.NoError(t, o.Apply(o.Axioms...))
	r := newReasoner(t, o.Index)
	_, err := r.Classify(ctx)
	require.NoError(t, err)

	errs := make(chan error, len(o.Classes))
	for _, id := range o.Classes {
		go func() {
			res, err := r.Subsumers(ctx, id)
			if err == nil && !res.Complete() {
				err = fmt.Errorf("incomplete answer for %d", id)
			}
			errs <- err
		}()
	}
	for range o.Classes {
		assert.NoError(t, <-errs)
	}
}
