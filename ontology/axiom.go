package ontology

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// AxiomKind tags the variant of an axiom.
type AxiomKind uint8

const (
	// SubClassOfAxiom states Classes[0] ⊑ Classes[1].
	SubClassOfAxiom AxiomKind = iota
	// EquivalentClassesAxiom states that all Classes are pairwise equivalent.
	EquivalentClassesAxiom
	// DisjointClassesAxiom states that Classes are pairwise disjoint.
	DisjointClassesAxiom
	// SubObjectPropertyOfAxiom states Roles[0] ∘ ... ∘ Roles[n-2] ⊑ Roles[n-1].
	SubObjectPropertyOfAxiom
	// TransitiveObjectPropertyAxiom states Roles[0] ∘ Roles[0] ⊑ Roles[0].
	TransitiveObjectPropertyAxiom
	// ObjectPropertyDomainAxiom states ∃Roles[0].⊤ ⊑ Classes[0].
	ObjectPropertyDomainAxiom
)

func (k AxiomKind) String() string {
	switch k {
	case SubClassOfAxiom:
		return "SubClassOf"
	case EquivalentClassesAxiom:
		return "EquivalentClasses"
	case DisjointClassesAxiom:
		return "DisjointClasses"
	case SubObjectPropertyOfAxiom:
		return "SubObjectPropertyOf"
	case TransitiveObjectPropertyAxiom:
		return "TransitiveObjectProperty"
	case ObjectPropertyDomainAxiom:
		return "ObjectPropertyDomain"
	default:
		return "Axiom(" + strconv.Itoa(int(k)) + ")"
	}
}

// Axiom is a logical axiom over interned expressions and roles.
type Axiom struct {
	Kind    AxiomKind
	Classes []ID
	Roles   []RoleID
}

// SubClassOf returns the axiom sub ⊑ sup.
func SubClassOf(sub, sup ID) Axiom {
	return Axiom{Kind: SubClassOfAxiom, Classes: []ID{sub, sup}}
}

// EquivalentClasses returns the axiom stating that all classes are equivalent.
func EquivalentClasses(classes ...ID) Axiom {
	return Axiom{Kind: EquivalentClassesAxiom, Classes: slices.Clone(classes)}
}

// DisjointClasses returns the axiom stating that the classes are pairwise disjoint.
func DisjointClasses(classes ...ID) Axiom {
	return Axiom{Kind: DisjointClassesAxiom, Classes: slices.Clone(classes)}
}

// SubObjectPropertyOf returns the role inclusion sub ⊑ sup.
func SubObjectPropertyOf(sub, sup RoleID) Axiom {
	return Axiom{Kind: SubObjectPropertyOfAxiom, Roles: []RoleID{sub, sup}}
}

// SubPropertyChainOf returns the role inclusion chain[0] ∘ ... ∘ chain[n-1] ⊑ sup.
func SubPropertyChainOf(chain []RoleID, sup RoleID) Axiom {
	roles := make([]RoleID, 0, len(chain)+1)
	roles = append(roles, chain...)
	roles = append(roles, sup)
	return Axiom{Kind: SubObjectPropertyOfAxiom, Roles: roles}
}

// TransitiveObjectProperty returns the axiom declaring role transitive.
func TransitiveObjectProperty(role RoleID) Axiom {
	return Axiom{Kind: TransitiveObjectPropertyAxiom, Roles: []RoleID{role}}
}

// ObjectPropertyDomain returns the axiom ∃role.⊤ ⊑ class.
func ObjectPropertyDomain(role RoleID, class ID) Axiom {
	return Axiom{Kind: ObjectPropertyDomainAxiom, Roles: []RoleID{role}, Classes: []ID{class}}
}

// IsRoleAxiom reports whether the axiom changes the role hierarchy.
// Changes to role axioms invalidate every derived link.
func (a Axiom) IsRoleAxiom() bool {
	return a.Kind == SubObjectPropertyOfAxiom || a.Kind == TransitiveObjectPropertyAxiom
}

// Key returns a canonical structural key. Two axioms with the same key have the
// same logical content; n-ary class axioms compare as sets.
func (a Axiom) Key() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(a.Kind)))
	classes := a.Classes
	if a.Kind == EquivalentClassesAxiom || a.Kind == DisjointClassesAxiom {
		classes = slices.Clone(classes)
		slices.Sort(classes)
		if a.Kind == EquivalentClassesAxiom {
			classes = slices.Compact(classes)
		}
	}
	sb.WriteByte('|')
	for i, c := range classes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	sb.WriteByte('|')
	for i, r := range a.Roles {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(r), 10))
	}
	return sb.String()
}

// FormatAxiom renders an axiom in a compact functional syntax.
func (idx *Index) FormatAxiom(a Axiom) string {
	var sb strings.Builder
	sb.WriteString(a.Kind.String())
	sb.WriteByte('(')
	first := true
	sep := func() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
	}
	if a.Kind == SubObjectPropertyOfAxiom && len(a.Roles) > 2 {
		sep()
		sb.WriteString("ObjectPropertyChain(")
		for i, r := range a.Roles[:len(a.Roles)-1] {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(idx.roleName(r))
		}
		sb.WriteByte(')')
		sep()
		sb.WriteString(idx.roleName(a.Roles[len(a.Roles)-1]))
	} else {
		for _, r := range a.Roles {
			sep()
			sb.WriteString(idx.roleName(r))
		}
	}
	for _, c := range a.Classes {
		sep()
		sb.WriteString(idx.Format(c))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (idx *Index) roleName(r RoleID) string {
	role, ok := idx.RoleInfo(r)
	if !ok {
		return fmt.Sprintf("#r%d", r)
	}
	return role.Name
}
