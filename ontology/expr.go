package ontology

import (
	"fmt"
	"slices"
	"strings"
)

// ID identifies an interned class expression inside an Index.
type ID = uint32

// RoleID identifies an interned object property inside an Index.
type RoleID = uint32

const (
	// Thing is the ID of owl:Thing in every Index.
	Thing ID = 0
	// Nothing is the ID of owl:Nothing in every Index.
	Nothing ID = 1
)

// Kind tags the variant of a class expression.
type Kind uint8

const (
	// KindClass is a named (atomic) class.
	KindClass Kind = iota
	// KindThing is the top concept.
	KindThing
	// KindNothing is the bottom concept.
	KindNothing
	// KindConjunction is a binary intersection of two class expressions.
	KindConjunction
	// KindExistential is an existential restriction over an object property.
	KindExistential
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindThing:
		return "thing"
	case KindNothing:
		return "nothing"
	case KindConjunction:
		return "conjunction"
	case KindExistential:
		return "existential"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Expr is an interned class expression.
//
// Only the fields relevant to Kind are set:
//   - KindClass: Name
//   - KindConjunction: Left, Right (Left < Right)
//   - KindExistential: Role, Filler
type Expr struct {
	Kind   Kind
	Name   string
	Left   ID
	Right  ID
	Role   RoleID
	Filler ID
}

// IsNamed reports whether the expression is a named class, owl:Thing or owl:Nothing.
func (e Expr) IsNamed() bool {
	return e.Kind == KindClass || e.Kind == KindThing || e.Kind == KindNothing
}

// Partner returns the other operand of a conjunction given one of its operands.
func (e Expr) Partner(operand ID) ID {
	if e.Left == operand {
		return e.Right
	}
	return e.Left
}

// Role is an interned object property.
type Role struct {
	Name string
	// Auxiliary roles are introduced when binarizing property chains longer than two.
	Auxiliary bool
}

type exprKey struct {
	kind Kind
	name string
	a, b uint32
}

// Class interns the named class with the given name.
func (idx *Index) Class(name string) ID {
	switch name {
	case "owl:Thing":
		return Thing
	case "owl:Nothing":
		return Nothing
	}
	return idx.intern(exprKey{kind: KindClass, name: name}, Expr{Kind: KindClass, Name: name})
}

// Top returns owl:Thing.
func (idx *Index) Top() ID { return Thing }

// Bottom returns owl:Nothing.
func (idx *Index) Bottom() ID { return Nothing }

// And interns the conjunction of the given operands.
//
// A single operand is returned unchanged; And() with no operands is owl:Thing.
// Operands are deduplicated and sorted, then folded right-associatively.
func (idx *Index) And(operands ...ID) ID {
	ops := make([]ID, 0, len(operands))
	seen := make(map[ID]struct{}, len(operands))
	for _, op := range operands {
		if op == Thing {
			continue
		}
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return Thing
	}
	slices.Sort(ops)

	acc := ops[len(ops)-1]
	for i := len(ops) - 2; i >= 0; i-- {
		l, r := ops[i], acc
		if l > r {
			l, r = r, l
		}
		acc = idx.intern(exprKey{kind: KindConjunction, a: l, b: r}, Expr{Kind: KindConjunction, Left: l, Right: r})
	}
	return acc
}

// Some interns the existential restriction ∃role.filler.
func (idx *Index) Some(role RoleID, filler ID) ID {
	return idx.intern(exprKey{kind: KindExistential, a: role, b: filler}, Expr{Kind: KindExistential, Role: role, Filler: filler})
}

// Role interns the object property with the given name.
func (idx *Index) Role(name string) RoleID {
	return idx.internRole(name, false)
}

func (idx *Index) internRole(name string, aux bool) RoleID {
	idx.mu.RLock()
	id, ok := idx.roleKeys[name]
	idx.mu.RUnlock()
	if ok {
		return id
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if id, ok := idx.roleKeys[name]; ok {
		return id
	}
	id = RoleID(len(idx.roles))
	idx.roles = append(idx.roles, Role{Name: name, Auxiliary: aux})
	idx.roleKeys[name] = id
	idx.rolesDirty = true
	return id
}

func (idx *Index) intern(key exprKey, e Expr) ID {
	idx.mu.RLock()
	id, ok := idx.exprKeys[key]
	idx.mu.RUnlock()
	if ok {
		return id
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if id, ok := idx.exprKeys[key]; ok {
		return id
	}
	id = ID(len(idx.exprs))
	idx.exprs = append(idx.exprs, e)
	idx.exprKeys[key] = id
	if e.Kind == KindClass {
		idx.classes = append(idx.classes, id)
	}
	return id
}

// Expr returns the expression with the given ID.
func (idx *Index) Expr(id ID) (Expr, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if int(id) >= len(idx.exprs) {
		return Expr{}, false
	}
	return idx.exprs[id], true
}

// Exprs returns the current arena. Elements are never modified once interned, so
// the returned slice may be read without further locking; expressions interned
// afterwards are not visible through it.
func (idx *Index) Exprs() []Expr {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.exprs[:len(idx.exprs):len(idx.exprs)]
}

// Len returns the number of interned expressions.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.exprs)
}

// RoleInfo returns the role with the given ID.
func (idx *Index) RoleInfo(id RoleID) (Role, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if int(id) >= len(idx.roles) {
		return Role{}, false
	}
	return idx.roles[id], true
}

// NumRoles returns the number of interned roles.
func (idx *Index) NumRoles() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.roles)
}

// Classes returns the IDs of all named classes (excluding owl:Thing and owl:Nothing)
// in interning order.
func (idx *Index) Classes() []ID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]ID, len(idx.classes))
	copy(out, idx.classes)
	return out
}

// Lookup returns the ID of a named class if it has been interned.
func (idx *Index) Lookup(name string) (ID, bool) {
	switch name {
	case "owl:Thing", "Thing", "⊤":
		return Thing, true
	case "owl:Nothing", "Nothing", "⊥":
		return Nothing, true
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.exprKeys[exprKey{kind: KindClass, name: name}]
	return id, ok
}

// LookupRole returns the ID of a role if it has been interned.
func (idx *Index) LookupRole(name string) (RoleID, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.roleKeys[name]
	return id, ok
}

// Format renders an expression in a compact functional syntax.
func (idx *Index) Format(id ID) string {
	var sb strings.Builder
	idx.format(&sb, id)
	return sb.String()
}

func (idx *Index) format(sb *strings.Builder, id ID) {
	e, ok := idx.Expr(id)
	if !ok {
		fmt.Fprintf(sb, "#%d", id)
		return
	}
	switch e.Kind {
	case KindThing:
		sb.WriteString("owl:Thing")
	case KindNothing:
		sb.WriteString("owl:Nothing")
	case KindClass:
		sb.WriteString(e.Name)
	case KindConjunction:
		sb.WriteString("ObjectIntersectionOf(")
		idx.format(sb, e.Left)
		sb.WriteByte(' ')
		idx.format(sb, e.Right)
		sb.WriteByte(')')
	case KindExistential:
		sb.WriteString("ObjectSomeValuesFrom(")
		r, _ := idx.RoleInfo(e.Role)
		sb.WriteString(r.Name)
		sb.WriteByte(' ')
		idx.format(sb, e.Filler)
		sb.WriteByte(')')
	}
}

// Premises returns the expression together with every sub-expression whose
// presence in a subsumer set can enable a rule on a negative occurrence of it.
func (idx *Index) Premises(id ID) []ID {
	var out []ID
	var walk func(ID)
	walk = func(id ID) {
		out = append(out, id)
		e, ok := idx.Expr(id)
		if !ok {
			return
		}
		switch e.Kind {
		case KindConjunction:
			walk(e.Left)
			walk(e.Right)
		case KindExistential:
			walk(e.Filler)
		}
	}
	walk(id)
	return out
}
