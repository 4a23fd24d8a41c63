package cli

import (
	"fmt"
	"strings"

	"github.com/hupe1980/elgo/document"
	"github.com/hupe1980/elgo/ontology"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newQueryCommand(g *globalOptions) *cobra.Command {
	var (
		expr string
		kind string
	)
	cmd := &cobra.Command{
		Use:   "query FILES...",
		Short: "Answer a subsumption query",
		Long: `Answer a query about a class expression. The expression is a class name or
a YAML expression such as '{and: [A, {some: {role: r, filler: B}}]}'.

Kinds: subsumers, equivalents, satisfiable, parents, children.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd, args, false)
			if err != nil {
				return err
			}
			defer s.Close()

			idx := s.ont.Index
			id, err := parseExpr(idx, expr)
			if err != nil {
				return err
			}

			ctx, cancel := g.runContext(cmd.Context())
			defer cancel()
			w := cmd.OutOrStdout()
			r := s.reasoner

			var (
				lines    []string
				complete bool
			)
			switch kind {
			case "subsumers":
				res, err := r.Subsumers(ctx, id)
				if err != nil {
					return err
				}
				lines, complete = formatIDs(idx, res.Value()), res.Complete()
			case "equivalents":
				res, err := r.Equivalents(ctx, id)
				if err != nil {
					return err
				}
				lines, complete = formatIDs(idx, res.Value()), res.Complete()
			case "satisfiable":
				res, err := r.IsSatisfiable(ctx, id)
				if err != nil {
					return err
				}
				lines, complete = []string{fmt.Sprint(res.Value())}, res.Complete()
			case "parents", "children":
				query := r.DirectSuperClasses
				if kind == "children" {
					query = r.DirectSubClasses
				}
				res, err := query(ctx, id)
				if err != nil {
					return err
				}
				for _, n := range res.Value() {
					lines = append(lines, nodeLabel(idx, n))
				}
				complete = res.Complete()
			default:
				return fmt.Errorf("unknown query kind %q", kind)
			}

			if !complete {
				fmt.Fprintln(w, "# incomplete: classification was interrupted")
			}
			for _, l := range lines {
				fmt.Fprintln(w, l)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "class", "c", "", "Class name or YAML class expression")
	cmd.Flags().StringVarP(&kind, "kind", "k", "subsumers", "Query kind")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

// parseExpr resolves a class name or YAML class expression. Every class name
// it mentions must already be declared or used by the loaded documents.
func parseExpr(idx *ontology.Index, s string) (ontology.ID, error) {
	var e document.Expr
	if err := yaml.Unmarshal([]byte(s), &e); err != nil {
		return 0, fmt.Errorf("parse class expression: %w", err)
	}
	if err := checkNames(idx, e); err != nil {
		return 0, err
	}
	return e.Build(idx)
}

func checkNames(idx *ontology.Index, e document.Expr) error {
	switch {
	case e.Some != nil:
		if _, ok := idx.LookupRole(e.Some.Role); !ok {
			return fmt.Errorf("role %q: %w", e.Some.Role, ontology.ErrUnknownRole)
		}
		return checkNames(idx, e.Some.Filler)
	case len(e.And) > 0:
		for _, op := range e.And {
			if err := checkNames(idx, op); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := idx.Lookup(strings.TrimSpace(e.Name)); !ok {
		return fmt.Errorf("class %q: %w", e.Name, ontology.ErrUnknownExpression)
	}
	return nil
}
