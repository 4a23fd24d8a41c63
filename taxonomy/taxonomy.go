package taxonomy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/elgo/ontology"
)

// ErrCycle is returned by Validate when the node graph is not acyclic.
var ErrCycle = errors.New("taxonomy: cycle between distinct nodes")

// Node is a set of pairwise equivalent classes.
type Node struct {
	members  []ontology.ID
	parents  []*Node
	children []*Node
}

// Canonical returns the lowest member ID, used as the node identity.
func (n *Node) Canonical() ontology.ID { return n.members[0] }

// Members returns the equivalent classes of the node in ascending ID order.
func (n *Node) Members() []ontology.ID { return slices.Clone(n.members) }

// Contains reports whether id is a member of the node.
func (n *Node) Contains(id ontology.ID) bool {
	_, ok := slices.BinarySearch(n.members, id)
	return ok
}

// Parents returns the direct super nodes.
func (n *Node) Parents() []*Node { return slices.Clone(n.parents) }

// Children returns the direct sub nodes.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Ancestors returns all strict super nodes ordered by canonical ID.
func (n *Node) Ancestors() []*Node { return closure(n, (*Node).directParents) }

// Descendants returns all strict sub nodes ordered by canonical ID.
func (n *Node) Descendants() []*Node { return closure(n, (*Node).directChildren) }

func (n *Node) directParents() []*Node  { return n.parents }
func (n *Node) directChildren() []*Node { return n.children }

func closure(start *Node, next func(*Node) []*Node) []*Node {
	seen := map[*Node]bool{start: true}
	stack := slices.Clone(next(start))
	var out []*Node
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		stack = append(stack, next(n)...)
	}
	sortNodes(out)
	return out
}

// Taxonomy is the reduced subsumption DAG over named classes.
type Taxonomy struct {
	nodes  []*Node
	byID   map[ontology.ID]*Node
	top    *Node
	bottom *Node
}

// Top returns the node containing owl:Thing.
func (t *Taxonomy) Top() *Node { return t.top }

// Bottom returns the node containing owl:Nothing and all unsatisfiable classes.
func (t *Taxonomy) Bottom() *Node { return t.bottom }

// Node returns the node containing the named class id.
func (t *Taxonomy) Node(id ontology.ID) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Nodes returns all nodes ordered by canonical ID.
func (t *Taxonomy) Nodes() []*Node { return slices.Clone(t.nodes) }

// Len returns the number of nodes including top and bottom.
func (t *Taxonomy) Len() int { return len(t.nodes) }

// Edge is a direct subsumption between two nodes, by canonical ID.
type Edge struct {
	Child  ontology.ID
	Parent ontology.ID
}

// Edges returns all direct edges sorted by child, then parent.
func (t *Taxonomy) Edges() []Edge {
	var out []Edge
	for _, n := range t.nodes {
		for _, p := range n.parents {
			out = append(out, Edge{Child: n.Canonical(), Parent: p.Canonical()})
		}
	}
	return out
}

// Groups returns the member lists of all nodes ordered by canonical ID.
func (t *Taxonomy) Groups() [][]ontology.ID {
	out := make([][]ontology.ID, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.Members()
	}
	return out
}

// Equal reports whether two taxonomies have the same groups and edges.
func (t *Taxonomy) Equal(other *Taxonomy) bool {
	if len(t.nodes) != len(other.nodes) {
		return false
	}
	for i, n := range t.nodes {
		if !slices.Equal(n.members, other.nodes[i].members) {
			return false
		}
	}
	return slices.Equal(t.Edges(), other.Edges())
}

// Validate checks that parent and child edges are symmetric, that no node is
// its own ancestor and that top and bottom are the extremes.
func (t *Taxonomy) Validate() error {
	for _, n := range t.nodes {
		for _, p := range n.parents {
			if !slices.Contains(p.children, n) {
				return fmt.Errorf("taxonomy: node #%d lists parent #%d without back edge", n.Canonical(), p.Canonical())
			}
		}
		for _, c := range n.children {
			if !slices.Contains(c.parents, n) {
				return fmt.Errorf("taxonomy: node #%d lists child #%d without back edge", n.Canonical(), c.Canonical())
			}
		}
		if n != t.top && len(n.parents) == 0 {
			return fmt.Errorf("taxonomy: node #%d has no parent", n.Canonical())
		}
		if n != t.bottom && len(n.children) == 0 {
			return fmt.Errorf("taxonomy: node #%d has no child", n.Canonical())
		}
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[*Node]int, len(t.nodes))
	var visit func(n *Node) error
	visit = func(n *Node) error {
		color[n] = grey
		for _, p := range n.parents {
			switch color[p] {
			case grey:
				return fmt.Errorf("%w: #%d -> #%d", ErrCycle, n.Canonical(), p.Canonical())
			case white:
				if err := visit(p); err != nil {
					return err
				}
			}
		}
		color[n] = black
		return nil
	}
	for _, n := range t.nodes {
		if color[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortNodes(nodes []*Node) {
	slices.SortFunc(nodes, func(a, b *Node) int { return int(a.Canonical()) - int(b.Canonical()) })
}
