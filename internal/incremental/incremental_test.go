package incremental

import (
	"testing"

	"github.com/hupe1980/elgo/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnOffVector(t *testing.T) {
	v := NewOnOffVector[string]()

	pos, changed := v.Set("a", "A", true)
	assert.Equal(t, uint32(0), pos)
	assert.True(t, changed)

	_, changed = v.Set("a", "A", true)
	assert.False(t, changed)

	_, changed = v.Set("b", "B", false)
	assert.False(t, changed, "switching off an unknown item is a no-op")
	assert.Equal(t, 1, v.Len())

	pos, _ = v.Set("b", "B", true)
	assert.Equal(t, uint32(1), pos)

	_, changed = v.Set("a", "A", false)
	assert.True(t, changed)
	assert.Equal(t, 2, v.Len(), "items are never removed")
	assert.Equal(t, 1, v.Count())
	assert.False(t, v.IsOn(0))

	pos, _ = v.Set("a", "A", true)
	assert.Equal(t, uint32(0), pos, "toggling keeps the position")

	var got []string
	v.Each(func(_ uint32, s string) { got = append(got, s) })
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestTracker_Delta(t *testing.T) {
	idx := ontology.NewIndex()
	a, b, c := idx.Class("A"), idx.Class("B"), idx.Class("C")
	ab := ontology.SubClassOf(a, b)
	bc := ontology.SubClassOf(b, c)

	tr := NewTracker()
	assert.True(t, tr.Add(ab))
	assert.True(t, tr.Add(bc))
	assert.False(t, tr.Add(ontology.SubClassOf(a, b)), "same content")
	require.True(t, tr.Pending())

	d := tr.Delta()
	assert.Equal(t, []ontology.Axiom{ab, bc}, d.Added)
	assert.Empty(t, d.Removed)

	tr.Commit()
	assert.False(t, tr.Pending())
	assert.True(t, tr.Delta().IsEmpty())

	assert.True(t, tr.Remove(ab))
	assert.False(t, tr.Remove(ab))
	d = tr.Delta()
	assert.Empty(t, d.Added)
	assert.Equal(t, []ontology.Axiom{ab}, d.Removed)

	// Re-adding before the next commit cancels the change.
	tr.Add(ab)
	assert.False(t, tr.Pending())
	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.Contains(bc))
}

func TestDelta_RoleChangesAndPremises(t *testing.T) {
	idx := ontology.NewIndex()
	r, s := idx.Role("r"), idx.Role("s")
	a, b := idx.Class("A"), idx.Class("B")
	some := idx.Some(r, b)

	d := Delta{Added: []ontology.Axiom{ontology.SubClassOf(some, a)}}
	assert.False(t, d.HasRoleChanges())
	removed, added := d.Premises(idx)
	assert.Empty(t, removed)
	assert.ElementsMatch(t, []ontology.ID{some, b}, added)

	d = Delta{Removed: []ontology.Axiom{ontology.SubObjectPropertyOf(r, s)}}
	assert.True(t, d.HasRoleChanges())

	d = Delta{Removed: []ontology.Axiom{ontology.ObjectPropertyDomain(r, a)}}
	removed, _ = d.Premises(idx)
	assert.Contains(t, removed, ontology.Thing)
}
