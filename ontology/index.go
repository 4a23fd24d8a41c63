package ontology

import (
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Disjointness is an indexed DisjointClasses axiom.
type Disjointness struct {
	// ID is unique among the disjointness axioms currently asserted.
	ID int32
	// Members are the distinct member classes.
	Members []ID
	// Duplicates lists members that occur more than once in the axiom; such
	// members are unsatisfiable on their own.
	Duplicates []ID
}

// HasDuplicate reports whether member occurs more than once in the axiom.
func (d *Disjointness) HasDuplicate(member ID) bool {
	return slices.Contains(d.Duplicates, member)
}

// Chain is a binary role composition Left ∘ Right ⊑ Super.
type Chain struct {
	Left  RoleID
	Right RoleID
	Super RoleID
}

// Index is the interned, cross-referenced representation of an ontology.
type Index struct {
	mu         sync.RWMutex
	exprs      []Expr
	exprKeys   map[exprKey]ID
	classes    []ID
	roles      []Role
	roleKeys   map[string]RoleID
	rolesDirty bool

	// Rule tables. Mutated by Apply only.
	axioms           map[string]int
	told             map[ID]map[ID]int
	toldList         map[ID][]ID
	negCount         map[ID]int
	conjunctions     map[ID][]ID
	existentials     map[ID][]ID
	disjoint         map[string]*Disjointness
	disjointByMember map[ID][]*Disjointness
	nextDisjoint     int32
	roleTold         map[RoleID]map[RoleID]int
	chainCount       map[Chain]int

	// Role closure. Rebuilt by PrepareRoles.
	superRoles   []*roaring.Bitmap
	chainsByLeft map[RoleID][]Chain
	forwardRoles *roaring.Bitmap
}

// NewIndex creates an empty index containing owl:Thing and owl:Nothing.
func NewIndex() *Index {
	idx := &Index{
		exprKeys:         make(map[exprKey]ID),
		roleKeys:         make(map[string]RoleID),
		axioms:           make(map[string]int),
		told:             make(map[ID]map[ID]int),
		toldList:         make(map[ID][]ID),
		negCount:         make(map[ID]int),
		conjunctions:     make(map[ID][]ID),
		existentials:     make(map[ID][]ID),
		disjoint:         make(map[string]*Disjointness),
		disjointByMember: make(map[ID][]*Disjointness),
		roleTold:         make(map[RoleID]map[RoleID]int),
		chainCount:       make(map[Chain]int),
		chainsByLeft:     make(map[RoleID][]Chain),
		forwardRoles:     roaring.New(),
	}
	idx.exprs = append(idx.exprs, Expr{Kind: KindThing, Name: "owl:Thing"}, Expr{Kind: KindNothing, Name: "owl:Nothing"})
	idx.exprKeys[exprKey{kind: KindThing}] = Thing
	idx.exprKeys[exprKey{kind: KindNothing}] = Nothing
	return idx
}

// Validate checks that an axiom is well formed with respect to this index.
func (idx *Index) Validate(ax Axiom) error {
	n := idx.Len()
	nr := idx.NumRoles()
	for _, c := range ax.Classes {
		if int(c) >= n {
			return fault(ax, ErrUnknownExpression, "expression #%d", c)
		}
	}
	for _, r := range ax.Roles {
		if int(r) >= nr {
			return fault(ax, ErrUnknownRole, "role #%d", r)
		}
	}

	switch ax.Kind {
	case SubClassOfAxiom:
		if len(ax.Classes) != 2 || len(ax.Roles) != 0 {
			return fault(ax, ErrMalformedAxiom, "want 2 classes, got %d", len(ax.Classes))
		}
	case EquivalentClassesAxiom, DisjointClassesAxiom:
		if len(ax.Classes) < 2 || len(ax.Roles) != 0 {
			return fault(ax, ErrMalformedAxiom, "want at least 2 classes, got %d", len(ax.Classes))
		}
	case SubObjectPropertyOfAxiom:
		if len(ax.Roles) < 2 || len(ax.Classes) != 0 {
			return fault(ax, ErrMalformedAxiom, "want at least 2 roles, got %d", len(ax.Roles))
		}
	case TransitiveObjectPropertyAxiom:
		if len(ax.Roles) != 1 || len(ax.Classes) != 0 {
			return fault(ax, ErrMalformedAxiom, "want 1 role, got %d", len(ax.Roles))
		}
	case ObjectPropertyDomainAxiom:
		if len(ax.Roles) != 1 || len(ax.Classes) != 1 {
			return fault(ax, ErrMalformedAxiom, "want 1 role and 1 class")
		}
	default:
		return fault(ax, ErrUnsupportedConstruct, "axiom kind %d", ax.Kind)
	}
	return nil
}

// Apply asserts (delta > 0) or retracts (delta < 0) an axiom.
//
// Assertions are reference counted by structural key; the rule tables change
// only when the count moves between zero and one.
func (idx *Index) Apply(ax Axiom, delta int) error {
	if err := idx.Validate(ax); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}

	key := ax.Key()
	before := idx.axioms[key]
	after := before + delta
	if after < 0 {
		return fault(ax, ErrNotAsserted, "retracting %d of %d", -delta, before)
	}
	if after == 0 {
		delete(idx.axioms, key)
	} else {
		idx.axioms[key] = after
	}

	switch {
	case before == 0 && after > 0:
		idx.apply(ax, 1)
	case before > 0 && after == 0:
		idx.apply(ax, -1)
	}
	return nil
}

// IsAsserted reports whether an axiom with the same content is currently asserted.
func (idx *Index) IsAsserted(ax Axiom) bool {
	return idx.axioms[ax.Key()] > 0
}

// NumAxioms returns the number of distinct asserted axioms.
func (idx *Index) NumAxioms() int {
	return len(idx.axioms)
}

func (idx *Index) apply(ax Axiom, s int) {
	switch ax.Kind {
	case SubClassOfAxiom:
		idx.addTold(ax.Classes[0], ax.Classes[1], s)
		idx.addNeg(ax.Classes[0], s)
	case EquivalentClassesAxiom:
		members := slices.Clone(ax.Classes)
		slices.Sort(members)
		members = slices.Compact(members)
		if len(members) < 2 {
			return
		}
		for i, c := range members {
			idx.addTold(c, members[(i+1)%len(members)], s)
			idx.addNeg(c, s)
		}
	case DisjointClassesAxiom:
		idx.applyDisjoint(ax, s)
	case ObjectPropertyDomainAxiom:
		e := idx.Some(ax.Roles[0], Thing)
		idx.addTold(e, ax.Classes[0], s)
		idx.addNeg(e, s)
	case SubObjectPropertyOfAxiom:
		chain, sup := ax.Roles[:len(ax.Roles)-1], ax.Roles[len(ax.Roles)-1]
		if len(chain) == 1 {
			idx.addRoleTold(chain[0], sup, s)
			return
		}
		left := chain[0]
		for _, r := range chain[1 : len(chain)-1] {
			aux := idx.internRole(idx.roleName(left)+"∘"+idx.roleName(r), true)
			idx.addChain(Chain{Left: left, Right: r, Super: aux}, s)
			left = aux
		}
		idx.addChain(Chain{Left: left, Right: chain[len(chain)-1], Super: sup}, s)
	case TransitiveObjectPropertyAxiom:
		r := ax.Roles[0]
		idx.addChain(Chain{Left: r, Right: r, Super: r}, s)
	}
}

func (idx *Index) applyDisjoint(ax Axiom, s int) {
	sorted := slices.Clone(ax.Classes)
	slices.Sort(sorted)
	key := Axiom{Kind: DisjointClassesAxiom, Classes: sorted}.Key()

	if s > 0 {
		d := &Disjointness{ID: idx.nextDisjoint}
		idx.nextDisjoint++
		for i, c := range sorted {
			if i > 0 && sorted[i-1] == c {
				if !d.HasDuplicate(c) {
					d.Duplicates = append(d.Duplicates, c)
				}
				continue
			}
			d.Members = append(d.Members, c)
		}
		idx.disjoint[key] = d
		for _, m := range d.Members {
			idx.disjointByMember[m] = append(idx.disjointByMember[m], d)
			idx.addNeg(m, 1)
		}
		return
	}

	d, ok := idx.disjoint[key]
	if !ok {
		return
	}
	delete(idx.disjoint, key)
	for _, m := range d.Members {
		idx.disjointByMember[m] = slices.DeleteFunc(idx.disjointByMember[m], func(o *Disjointness) bool { return o == d })
		if len(idx.disjointByMember[m]) == 0 {
			delete(idx.disjointByMember, m)
		}
		idx.addNeg(m, -1)
	}
}

func (idx *Index) addTold(sub, sup ID, s int) {
	sups := idx.told[sub]
	if sups == nil {
		sups = make(map[ID]int)
		idx.told[sub] = sups
	}
	before := sups[sup]
	after := before + s
	if after <= 0 {
		delete(sups, sup)
		if len(sups) == 0 {
			delete(idx.told, sub)
		}
	} else {
		sups[sup] = after
	}
	switch {
	case before == 0 && after > 0:
		idx.toldList[sub] = append(idx.toldList[sub], sup)
	case before > 0 && after <= 0:
		idx.toldList[sub] = removeID(idx.toldList[sub], sup)
		if len(idx.toldList[sub]) == 0 {
			delete(idx.toldList, sub)
		}
	}
}

// addNeg records a negative (left-hand side) occurrence of a compound expression.
func (idx *Index) addNeg(id ID, s int) {
	e, ok := idx.Expr(id)
	if !ok || (e.Kind != KindConjunction && e.Kind != KindExistential) {
		return
	}
	before := idx.negCount[id]
	after := before + s
	if after <= 0 {
		delete(idx.negCount, id)
	} else {
		idx.negCount[id] = after
	}

	switch {
	case before == 0 && after > 0:
		if e.Kind == KindConjunction {
			idx.conjunctions[e.Left] = append(idx.conjunctions[e.Left], id)
			idx.conjunctions[e.Right] = append(idx.conjunctions[e.Right], id)
			idx.addNeg(e.Left, 1)
			idx.addNeg(e.Right, 1)
		} else {
			idx.existentials[e.Filler] = append(idx.existentials[e.Filler], id)
			idx.addNeg(e.Filler, 1)
		}
	case before > 0 && after <= 0:
		if e.Kind == KindConjunction {
			idx.conjunctions[e.Left] = removeID(idx.conjunctions[e.Left], id)
			idx.conjunctions[e.Right] = removeID(idx.conjunctions[e.Right], id)
			idx.addNeg(e.Left, -1)
			idx.addNeg(e.Right, -1)
		} else {
			idx.existentials[e.Filler] = removeID(idx.existentials[e.Filler], id)
			idx.addNeg(e.Filler, -1)
		}
	}
}

func (idx *Index) addRoleTold(sub, sup RoleID, s int) {
	sups := idx.roleTold[sub]
	if sups == nil {
		sups = make(map[RoleID]int)
		idx.roleTold[sub] = sups
	}
	if n := sups[sup] + s; n <= 0 {
		delete(sups, sup)
	} else {
		sups[sup] = n
	}
	idx.rolesDirty = true
}

func (idx *Index) addChain(c Chain, s int) {
	if n := idx.chainCount[c] + s; n <= 0 {
		delete(idx.chainCount, c)
	} else {
		idx.chainCount[c] = n
	}
	idx.rolesDirty = true
}

// PrepareRoles recomputes the reflexive-transitive role hierarchy and the chain
// tables if role axioms or roles changed since the last call.
func (idx *Index) PrepareRoles() {
	idx.mu.RLock()
	dirty := idx.rolesDirty
	n := len(idx.roles)
	idx.mu.RUnlock()
	if !dirty && len(idx.superRoles) == n {
		return
	}

	supers := make([]*roaring.Bitmap, n)
	for r := 0; r < n; r++ {
		bm := roaring.New()
		stack := []RoleID{RoleID(r)}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !bm.CheckedAdd(cur) {
				continue
			}
			for sup := range idx.roleTold[cur] {
				stack = append(stack, sup)
			}
		}
		supers[r] = bm
	}

	byLeft := make(map[RoleID][]Chain)
	forward := roaring.New()
	for c := range idx.chainCount {
		byLeft[c.Left] = append(byLeft[c.Left], c)
		for r := 0; r < n; r++ {
			if supers[r].Contains(c.Right) {
				forward.Add(uint32(r))
			}
		}
	}
	for l := range byLeft {
		slices.SortFunc(byLeft[l], func(a, b Chain) int {
			if a.Right != b.Right {
				return int(a.Right) - int(b.Right)
			}
			return int(a.Super) - int(b.Super)
		})
	}

	idx.superRoles = supers
	idx.chainsByLeft = byLeft
	idx.forwardRoles = forward
	idx.mu.Lock()
	idx.rolesDirty = false
	idx.mu.Unlock()
}

func removeID(ids []ID, id ID) []ID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
