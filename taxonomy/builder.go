package taxonomy

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/elgo/ontology"
)

// SubsumerFunc returns the derived subsumers of a named class, or nil if no
// subsumers were derived for it.
type SubsumerFunc func(id ontology.ID) *roaring.Bitmap

// Build extracts the taxonomy of owl:Thing and the given named classes.
//
// Each class is placed by its subsumer set: mutually subsuming classes form a
// node, classes with owl:Nothing among their subsumers go to the bottom node,
// and every remaining node is linked to its direct parents only. If owl:Thing
// itself is unsatisfiable, all classes collapse into a single node.
func Build(classes []ontology.ID, subsumers SubsumerFunc) *Taxonomy {
	b := newBuilder(classes, subsumers)
	if b.inconsistent {
		return b.collapsed()
	}
	b.components()
	return b.link()
}

type builder struct {
	subsumers SubsumerFunc

	vertices     []ontology.ID
	local        map[ontology.ID]int
	adj          [][]int
	unsat        []ontology.ID
	inconsistent bool

	comp  []int
	comps [][]int
}

func newBuilder(classes []ontology.ID, subsumers SubsumerFunc) *builder {
	b := &builder{subsumers: subsumers, local: make(map[ontology.ID]int)}

	candidates := append([]ontology.ID{ontology.Thing}, classes...)
	for _, id := range candidates {
		if id == ontology.Nothing {
			continue
		}
		if _, dup := b.local[id]; dup {
			continue
		}
		if subs := subsumers(id); subs != nil && subs.Contains(ontology.Nothing) {
			if id == ontology.Thing {
				b.inconsistent = true
			}
			b.unsat = append(b.unsat, id)
			b.local[id] = -1
			continue
		}
		b.local[id] = len(b.vertices)
		b.vertices = append(b.vertices, id)
	}
	if b.inconsistent {
		return b
	}

	b.adj = make([][]int, len(b.vertices))
	for v, id := range b.vertices {
		if id != ontology.Thing {
			b.adj[v] = append(b.adj[v], 0)
		}
		subs := subsumers(id)
		if subs == nil {
			continue
		}
		it := subs.Iterator()
		for it.HasNext() {
			d := it.Next()
			w, ok := b.local[d]
			if !ok || w < 0 || w == v || d == ontology.Thing {
				continue
			}
			b.adj[v] = append(b.adj[v], w)
		}
	}
	return b
}

// components runs an iterative Tarjan SCC over the satisfiable vertices. Edges
// point from a class to its subsumers, so components are emitted supers first.
func (b *builder) components() {
	n := len(b.vertices)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	b.comp = make([]int, n)
	var sccStack []int
	next := 0

	type frame struct {
		v    int
		edge int
	}

	for root := 0; root < n; root++ {
		if index[root] >= 0 {
			continue
		}
		callStack := []frame{{v: root}}
		index[root], low[root] = next, next
		next++
		sccStack = append(sccStack, root)
		onStack[root] = true

		for len(callStack) > 0 {
			f := &callStack[len(callStack)-1]
			if f.edge < len(b.adj[f.v]) {
				w := b.adj[f.v][f.edge]
				f.edge++
				switch {
				case index[w] < 0:
					index[w], low[w] = next, next
					next++
					sccStack = append(sccStack, w)
					onStack[w] = true
					callStack = append(callStack, frame{v: w})
				case onStack[w]:
					low[f.v] = min(low[f.v], index[w])
				}
				continue
			}

			v := f.v
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1].v
				low[parent] = min(low[parent], low[v])
			}
			if low[v] != index[v] {
				continue
			}
			var members []int
			for {
				w := sccStack[len(sccStack)-1]
				sccStack = sccStack[:len(sccStack)-1]
				onStack[w] = false
				b.comp[w] = len(b.comps)
				members = append(members, w)
				if w == v {
					break
				}
			}
			b.comps = append(b.comps, members)
		}
	}
}

// link computes direct parents by transitive reduction of the component DAG
// and assembles the nodes.
func (b *builder) link() *Taxonomy {
	t := &Taxonomy{byID: make(map[ontology.ID]*Node)}
	nodes := make([]*Node, len(b.comps))
	ancestors := make([]*roaring.Bitmap, len(b.comps))

	for k, members := range b.comps {
		node := &Node{}
		succ := roaring.New()
		for _, v := range members {
			node.members = append(node.members, b.vertices[v])
			for _, w := range b.adj[v] {
				if c := b.comp[w]; c != k {
					succ.Add(uint32(c))
				}
			}
		}
		slices.Sort(node.members)

		anc := succ.Clone()
		indirect := roaring.New()
		it := succ.Iterator()
		for it.HasNext() {
			j := it.Next()
			anc.Or(ancestors[j])
			indirect.Or(ancestors[j])
		}
		ancestors[k] = anc

		direct := roaring.AndNot(succ, indirect)
		dit := direct.Iterator()
		for dit.HasNext() {
			p := nodes[dit.Next()]
			node.parents = append(node.parents, p)
			p.children = append(p.children, node)
		}
		nodes[k] = node
		for _, id := range node.members {
			t.byID[id] = node
		}
	}

	t.top = t.byID[ontology.Thing]
	bottom := &Node{members: append([]ontology.ID{ontology.Nothing}, b.unsat...)}
	slices.Sort(bottom.members)
	for _, n := range nodes {
		if len(n.children) == 0 {
			bottom.parents = append(bottom.parents, n)
		}
	}
	for _, p := range bottom.parents {
		p.children = append(p.children, bottom)
	}
	for _, id := range bottom.members {
		t.byID[id] = bottom
	}
	t.bottom = bottom

	t.nodes = append(nodes, bottom)
	sortNodes(t.nodes)
	for _, n := range t.nodes {
		sortNodes(n.parents)
		sortNodes(n.children)
	}
	return t
}

// collapsed builds the single-node taxonomy of an inconsistent ontology.
func (b *builder) collapsed() *Taxonomy {
	node := &Node{members: append([]ontology.ID{ontology.Nothing}, b.unsat...)}
	node.members = append(node.members, b.vertices...)
	slices.Sort(node.members)
	t := &Taxonomy{byID: make(map[ontology.ID]*Node), nodes: []*Node{node}, top: node, bottom: node}
	for _, id := range node.members {
		t.byID[id] = node
	}
	return t
}
