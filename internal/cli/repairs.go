package cli

import (
	"fmt"
	"strings"

	"github.com/hupe1980/elgo/ontology"
	"github.com/hupe1980/elgo/repair"
	"github.com/spf13/cobra"
)

func newRepairsCommand(g *globalOptions) *cobra.Command {
	var (
		goals []string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "repairs FILES...",
		Short: "Enumerate minimal sets of changing axioms to remove",
		Long: `Enumerate the minimal sets of changing axioms whose removal makes every
goal hold. Static axioms are never removed.

Goals:
  consistent               owl:Thing is satisfiable
  all-satisfiable          every named class is satisfiable
  satisfiable=A            class A is satisfiable
  not-subsumed=A,B         A ⊑ B is not entailed
  not-equivalent=A,B       A and B are not equivalent
  acyclic=A,B,...          no two of the classes are equivalent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args, false)
			if err != nil {
				return err
			}
			defer s.Close()

			idx := s.ont.Index
			goal, err := parseGoals(idx, goals)
			if err != nil {
				return err
			}

			ctx, cancel := g.runContext(cmd.Context())
			defer cancel()
			candidates := s.ont.Changing
			repairs, err := repair.Enumerate(ctx, s.reasoner, candidates, goal, func(o *repair.Options) {
				o.Limit = limit
				o.Logger = s.logger.Logger
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(repairs) == 0 {
				fmt.Fprintln(w, "no repair: the goal fails even without changing axioms")
				return nil
			}
			for i, rep := range repairs {
				fmt.Fprintf(w, "repair %d:\n", i+1)
				if len(rep) == 0 {
					fmt.Fprintln(w, "  (goal already holds)")
				}
				for _, c := range rep {
					fmt.Fprintf(w, "  - %s\n", idx.FormatAxiom(candidates[c]))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&goals, "goal", "g", []string{"consistent"}, "Goal to reach; repeat to combine")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many repairs (0: all)")
	return cmd
}

func parseGoals(idx *ontology.Index, specs []string) (repair.Goal, error) {
	goals := make([]repair.Goal, 0, len(specs))
	for _, spec := range specs {
		g, err := parseGoal(idx, spec)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if len(goals) == 1 {
		return goals[0], nil
	}
	return repair.All(goals...), nil
}

func parseGoal(idx *ontology.Index, spec string) (repair.Goal, error) {
	name, arg, _ := strings.Cut(spec, "=")
	var classes []ontology.ID
	if arg != "" {
		for _, c := range strings.Split(arg, ",") {
			id, ok := idx.Lookup(strings.TrimSpace(c))
			if !ok {
				return nil, fmt.Errorf("goal %q: class %q: %w", spec, c, ontology.ErrUnknownExpression)
			}
			classes = append(classes, id)
		}
	}

	want := func(n int) error {
		if len(classes) != n {
			return fmt.Errorf("goal %q: want %d classes, got %d", spec, n, len(classes))
		}
		return nil
	}

	switch name {
	case "consistent":
		return repair.Consistent(), want(0)
	case "all-satisfiable":
		return repair.AllSatisfiable(), want(0)
	case "satisfiable":
		if err := want(1); err != nil {
			return nil, err
		}
		return repair.Satisfiable(classes[0]), nil
	case "not-subsumed":
		if err := want(2); err != nil {
			return nil, err
		}
		return repair.NotSubsumedBy(classes[0], classes[1]), nil
	case "not-equivalent":
		if err := want(2); err != nil {
			return nil, err
		}
		return repair.NotEquivalent(classes[0], classes[1]), nil
	case "acyclic":
		if len(classes) < 2 {
			return nil, fmt.Errorf("goal %q: want at least 2 classes", spec)
		}
		return repair.Acyclic(classes...), nil
	}
	return nil, fmt.Errorf("unknown goal %q", spec)
}
