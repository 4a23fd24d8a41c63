package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hupe1980/elgo"
	"github.com/hupe1980/elgo/ontology"
	"github.com/hupe1980/elgo/taxonomy"
	"github.com/spf13/cobra"
)

func newClassifyCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILES...",
		Short: "Classify documents and print run statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args, false)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := g.runContext(cmd.Context())
			defer cancel()
			res, err := s.reasoner.Classify(ctx)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, s.reasoner.Stats())
			return nil
		},
	}
}

func newTaxonomyCommand(g *globalOptions) *cobra.Command {
	var edges bool
	cmd := &cobra.Command{
		Use:   "taxonomy FILES...",
		Short: "Classify documents and print the class hierarchy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args, false)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := g.runContext(cmd.Context())
			defer cancel()
			tax, err := s.reasoner.Taxonomy(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !tax.Complete() {
				fmt.Fprintln(w, "# incomplete: classification was interrupted")
			}
			idx := s.ont.Index
			if edges {
				for _, e := range tax.Value().Edges() {
					fmt.Fprintf(w, "%s ⊑ %s\n", idx.Format(e.Child), idx.Format(e.Parent))
				}
				return nil
			}
			printTree(w, idx, tax.Value())
			return nil
		},
	}
	cmd.Flags().BoolVar(&edges, "edges", false, "Print direct edges instead of a tree")
	return cmd
}

func printResult(w io.Writer, res elgo.SaturationResult, st elgo.Stats) {
	fmt.Fprintf(w, "run:          %s\n", res.RunID)
	fmt.Fprintf(w, "complete:     %t\n", res.Complete)
	if res.Complete {
		fmt.Fprintf(w, "consistent:   %t\n", res.Consistent)
	}
	fmt.Fprintf(w, "axioms:       %d (%d changing)\n", st.Axioms, st.Changing)
	fmt.Fprintf(w, "contexts:     %d\n", res.Contexts)
	fmt.Fprintf(w, "conclusions:  %d\n", res.Conclusions)
	fmt.Fprintf(w, "duration:     %s\n", res.Duration)
	res.Rules.Each(func(name string, n uint64) {
		if n > 0 {
			fmt.Fprintf(w, "  %-28s %d\n", name, n)
		}
	})
}

// printTree prints the taxonomy depth first from the top node. Nodes with
// several parents appear under each of them. The bottom node is printed last,
// and only if it holds unsatisfiable classes.
func printTree(w io.Writer, idx *ontology.Index, tax *taxonomy.Taxonomy) {
	bottom := tax.Bottom()
	var walk func(n *taxonomy.Node, depth int)
	walk = func(n *taxonomy.Node, depth int) {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), nodeLabel(idx, n))
		for _, c := range n.Children() {
			if c != bottom {
				walk(c, depth+1)
			}
		}
	}
	walk(tax.Top(), 0)
	if bottom != tax.Top() && len(bottom.Members()) > 1 {
		fmt.Fprintf(w, "%s\n", nodeLabel(idx, bottom))
	}
}

func nodeLabel(idx *ontology.Index, n *taxonomy.Node) string {
	names := make([]string, 0, len(n.Members()))
	for _, id := range n.Members() {
		names = append(names, idx.Format(id))
	}
	return strings.Join(names, " ≡ ")
}

func formatIDs(idx *ontology.Index, ids []ontology.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Format(id)
	}
	slices.Sort(out)
	return out
}
