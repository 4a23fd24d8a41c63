package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/elgo/ontology"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anatomy = "../../document/testdata/anatomy.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "elgo version test\n", out)
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "-w", "2", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "complete:     true")
	assert.Contains(t, out, "consistent:   true")
	assert.Contains(t, out, "(1 changing)")
}

func TestClassify_BadFlags(t *testing.T) {
	_, err := execute(t, "classify", "--log-level", "loud", anatomy)
	assert.ErrorContains(t, err, "unknown log level")

	_, err = execute(t, "classify", "does-not-exist/*.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTaxonomy(t *testing.T) {
	out, err := execute(t, "taxonomy", "--edges", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "Thumb ⊑ Finger\n")
	assert.Contains(t, out, "Finger ⊑ ArmPart\n")
	assert.Contains(t, out, "ArmPart ⊑ Part\n")

	out, err = execute(t, "taxonomy", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "owl:Thing\n")
	assert.Contains(t, out, "\n        Thumb\n")
	assert.NotContains(t, out, "owl:Nothing")
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"parents", []string{"-c", "Finger", "-k", "parents"}, []string{"ArmPart"}},
		{"children", []string{"-c", "Finger", "-k", "children"}, []string{"Thumb"}},
		{"satisfiable", []string{"-c", "Hand", "-k", "satisfiable"}, []string{"true"}},
		{"unsatisfiable", []string{"-c", "{and: [Hand, Arm]}", "-k", "satisfiable"}, []string{"false"}},
		{"expression", []string{"-c", "{some: {role: partOf, filler: Hand}}"}, []string{"ArmPart", "Part", "owl:Thing"}},
		{"equivalents", []string{"-c", "ArmPart", "-k", "equivalents"}, []string{"ArmPart"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(append([]string{"query"}, tt.args...), anatomy)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w+"\n")
			}
		})
	}
}

func TestQuery_Errors(t *testing.T) {
	_, err := execute(t, "query", "-c", "Wing", anatomy)
	assert.ErrorIs(t, err, ontology.ErrUnknownExpression)

	_, err = execute(t, "query", "-c", "{some: {role: flies, filler: Hand}}", anatomy)
	assert.ErrorIs(t, err, ontology.ErrUnknownRole)

	_, err = execute(t, "query", "-c", "{or: [Hand, Arm]}", anatomy)
	assert.ErrorIs(t, err, ontology.ErrUnsupportedConstruct)

	_, err = execute(t, "query", "-c", "Hand", "-k", "siblings", anatomy)
	assert.ErrorContains(t, err, "unknown query kind")
}

func TestRepairs(t *testing.T) {
	out, err := execute(t, "repairs", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "(goal already holds)")

	out, err = execute(t, "repairs", "-g", "not-subsumed=Thumb,Finger", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "no repair")

	out, err = execute(t, "repairs", "-g", "not-subsumed=Finger,ArmPart", "-g", "consistent", anatomy)
	require.NoError(t, err)
	assert.Contains(t, out, "repair 1:\n  - SubClassOf(Hand ")
	assert.NotContains(t, out, "repair 2:")
}

func TestParseGoal_Errors(t *testing.T) {
	idx := ontology.NewIndex()
	idx.Class("A")

	for _, spec := range []string{"satisfiable", "not-subsumed=A", "acyclic=A", "satisfiable=B", "happy"} {
		_, err := parseGoal(idx, spec)
		assert.Error(t, err, spec)
	}
	_, err := parseGoal(idx, "satisfiable=A")
	assert.NoError(t, err)
}

func TestIsDocument(t *testing.T) {
	assert.True(t, isDocument("a/b.yaml"))
	assert.True(t, isDocument("b.YML"))
	assert.True(t, isDocument("b.yaml.zst"))
	assert.True(t, isDocument("b.yml.lz4"))
	assert.False(t, isDocument("b.zst"))
	assert.False(t, isDocument("b.yaml~"))
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onto.yaml")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	write(`axioms:
  - subClassOf: {sub: A, super: B}
  - subClassOf: {sub: B, super: C}
`)

	g := &globalOptions{logLevel: "error"}
	cmd := &cobra.Command{}
	cmd.SetErr(io.Discard)
	s, err := g.open(cmd, []string{path}, true)
	require.NoError(t, err)
	defer s.Close()

	w := newWatcher(g, s, []string{path})
	var out bytes.Buffer
	ctx := context.Background()
	require.NoError(t, w.classify(ctx, &out, 0, 0))
	assert.Contains(t, out.String(), "(full)")

	write(`axioms:
  - subClassOf: {sub: A, super: B}
  - subClassOf: {sub: C, super: D}
`)
	out.Reset()
	require.NoError(t, w.reload(ctx, &out))
	assert.Contains(t, out.String(), "+1 -1 axioms (incremental")

	idx := s.ont.Index
	a, _ := idx.Lookup("A")
	c, _ := idx.Lookup("C")
	res, err := s.reasoner.Subsumers(ctx, a)
	require.NoError(t, err)
	assert.NotContains(t, res.Value(), c)

	write("axioms: [{subClassOf: {sub: A}}]\n")
	require.Error(t, w.reload(ctx, &out))
	assert.Len(t, s.reasoner.Axioms(), 2, "a failed reload keeps the previous axioms")
}
