package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Interning(t *testing.T) {
	idx := NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	r := idx.Role("r")

	assert.Equal(t, a, idx.Class("A"))
	assert.Equal(t, Thing, idx.Class("owl:Thing"))
	assert.Equal(t, Nothing, idx.Class("owl:Nothing"))
	assert.Equal(t, r, idx.Role("r"))

	assert.Equal(t, idx.And(a, b), idx.And(b, a))
	assert.Equal(t, idx.And(a, b, c), idx.And(c, b, a))
	assert.Equal(t, a, idx.And(a))
	assert.Equal(t, a, idx.And(a, a))
	assert.Equal(t, Thing, idx.And())
	assert.Equal(t, idx.Some(r, a), idx.Some(r, a))
	assert.NotEqual(t, idx.Some(r, a), idx.Some(r, b))

	assert.Equal(t, []ID{a, b, c}, idx.Classes())

	id, ok := idx.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, b, id)
	_, ok = idx.Lookup("Z")
	assert.False(t, ok)
	id, ok = idx.Lookup("⊤")
	require.True(t, ok)
	assert.Equal(t, Thing, id)
}

func TestIndex_Format(t *testing.T) {
	idx := NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	r := idx.Role("r")

	assert.Equal(t, "ObjectSomeValuesFrom(r A)", idx.Format(idx.Some(r, a)))
	assert.Equal(t, "ObjectIntersectionOf(A B)", idx.Format(idx.And(b, a)))
	assert.Equal(t, "SubClassOf(A B)", idx.FormatAxiom(SubClassOf(a, b)))

	s, u := idx.Role("s"), idx.Role("u")
	assert.Equal(t, "SubObjectPropertyOf(ObjectPropertyChain(r s) u)",
		idx.FormatAxiom(SubPropertyChainOf([]RoleID{r, s}, u)))
}

func TestIndex_Validate(t *testing.T) {
	idx := NewIndex()
	a := idx.Class("A")
	r := idx.Role("r")

	tests := []struct {
		name string
		ax   Axiom
		want error
	}{
		{"unknown class", SubClassOf(a, 99), ErrUnknownExpression},
		{"unknown role", TransitiveObjectProperty(42), ErrUnknownRole},
		{"unary equivalence", EquivalentClasses(a), ErrMalformedAxiom},
		{"subclass arity", Axiom{Kind: SubClassOfAxiom, Classes: []ID{a}}, ErrMalformedAxiom},
		{"role inclusion arity", Axiom{Kind: SubObjectPropertyOfAxiom, Roles: []RoleID{r}}, ErrMalformedAxiom},
		{"unknown kind", Axiom{Kind: AxiomKind(200)}, ErrUnsupportedConstruct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := idx.Validate(tt.ax)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var fault *IndexFault
			assert.ErrorAs(t, err, &fault)
		})
	}
	assert.NoError(t, idx.Validate(ObjectPropertyDomain(r, a)))
}

func TestIndex_ApplyReferenceCounts(t *testing.T) {
	idx := NewIndex()
	a, b := idx.Class("A"), idx.Class("B")
	ax := SubClassOf(a, b)

	require.NoError(t, idx.Apply(ax, 1))
	require.NoError(t, idx.Apply(ax, 1))
	assert.Equal(t, []ID{b}, idx.ToldSuperClasses(a))
	assert.Equal(t, 1, idx.NumAxioms())

	require.NoError(t, idx.Apply(ax, -1))
	assert.True(t, idx.IsAsserted(ax))
	assert.Equal(t, []ID{b}, idx.ToldSuperClasses(a))

	require.NoError(t, idx.Apply(ax, -1))
	assert.False(t, idx.IsAsserted(ax))
	assert.Empty(t, idx.ToldSuperClasses(a))

	err := idx.Apply(ax, -1)
	assert.ErrorIs(t, err, ErrNotAsserted)
}

func TestIndex_EquivalenceKeyIsSetBased(t *testing.T) {
	idx := NewIndex()
	a, b := idx.Class("A"), idx.Class("B")

	assert.Equal(t, EquivalentClasses(a, b).Key(), EquivalentClasses(b, a, b).Key())
	assert.NotEqual(t, SubClassOf(a, b).Key(), SubClassOf(b, a).Key())
}

func TestIndex_NegativeOccurrences(t *testing.T) {
	idx := NewIndex()
	r := idx.Role("r")
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	conj := idx.And(a, idx.Some(r, b))
	ax := SubClassOf(conj, c)

	require.NoError(t, idx.Apply(ax, 1))
	ex := idx.Some(r, b)
	assert.True(t, idx.OccursNegatively(conj))
	assert.True(t, idx.OccursNegatively(ex))
	assert.Equal(t, []ID{conj}, idx.NegativeConjunctions(a))
	assert.Equal(t, []ID{ex}, idx.NegativeExistentials(b))

	require.NoError(t, idx.Apply(ax, -1))
	assert.False(t, idx.OccursNegatively(conj))
	assert.False(t, idx.OccursNegatively(ex))
	assert.Empty(t, idx.NegativeExistentials(b))
}

func TestIndex_Disjointness(t *testing.T) {
	idx := NewIndex()
	a, b := idx.Class("A"), idx.Class("B")

	require.NoError(t, idx.Apply(DisjointClasses(a, b, a), 1))
	ds := idx.Disjointness(a)
	require.Len(t, ds, 1)
	assert.Equal(t, []ID{a, b}, ds[0].Members)
	assert.True(t, ds[0].HasDuplicate(a))
	assert.False(t, ds[0].HasDuplicate(b))

	require.NoError(t, idx.Apply(DisjointClasses(a, b, a), -1))
	assert.Empty(t, idx.Disjointness(a))
	assert.Empty(t, idx.Disjointness(b))
}

func TestIndex_RoleHierarchy(t *testing.T) {
	idx := NewIndex()
	r, s, u, v := idx.Role("r"), idx.Role("s"), idx.Role("u"), idx.Role("v")
	require.NoError(t, idx.Apply(SubObjectPropertyOf(r, s), 1))
	require.NoError(t, idx.Apply(SubObjectPropertyOf(s, u), 1))
	require.NoError(t, idx.Apply(SubPropertyChainOf([]RoleID{r, s, v}, u), 1))
	idx.PrepareRoles()

	assert.True(t, idx.IsSubRole(r, u))
	assert.True(t, idx.IsSubRole(v, v))
	assert.False(t, idx.IsSubRole(u, r))
	assert.True(t, idx.HasChains())

	// The three-role chain is split through one auxiliary role.
	aux, ok := idx.LookupRole("r∘s")
	require.True(t, ok)
	info, _ := idx.RoleInfo(aux)
	assert.True(t, info.Auxiliary)

	var supers []RoleID
	idx.ComposeChains(r, s, func(sup RoleID) { supers = append(supers, sup) })
	assert.Contains(t, supers, aux)
	assert.True(t, idx.NeedsForwardLinks(v))

	require.NoError(t, idx.Apply(SubObjectPropertyOf(s, u), -1))
	idx.PrepareRoles()
	assert.False(t, idx.IsSubRole(r, u))
}

func TestIndex_DomainRewrite(t *testing.T) {
	idx := NewIndex()
	r := idx.Role("r")
	p := idx.Class("P")
	require.NoError(t, idx.Apply(ObjectPropertyDomain(r, p), 1))

	ex := idx.Some(r, Thing)
	assert.Equal(t, []ID{p}, idx.ToldSuperClasses(ex))
	assert.Equal(t, []ID{ex}, idx.NegativeExistentials(Thing))
}

func TestIndex_Premises(t *testing.T) {
	idx := NewIndex()
	r := idx.Role("r")
	a, b := idx.Class("A"), idx.Class("B")
	ex := idx.Some(r, b)
	conj := idx.And(a, ex)

	assert.ElementsMatch(t, []ID{conj, a, ex, b}, idx.Premises(conj))
	assert.Equal(t, []ID{a}, idx.Premises(a))
}
