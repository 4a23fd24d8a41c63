package ontology

// The lookups below read the rule tables without locking. They are safe for
// concurrent use as long as no Apply or PrepareRoles call runs at the same time.

// ToldSuperClasses returns the told superclasses of an expression.
func (idx *Index) ToldSuperClasses(id ID) []ID {
	return idx.toldList[id]
}

// NegativeConjunctions returns the conjunctions occurring on the left-hand side of
// some axiom that have id as one of their operands.
func (idx *Index) NegativeConjunctions(id ID) []ID {
	return idx.conjunctions[id]
}

// NegativeExistentials returns the existential restrictions occurring on the
// left-hand side of some axiom whose filler is id.
func (idx *Index) NegativeExistentials(filler ID) []ID {
	return idx.existentials[filler]
}

// Disjointness returns the disjointness axioms in which id is a member.
func (idx *Index) Disjointness(id ID) []*Disjointness {
	return idx.disjointByMember[id]
}

// OccursNegatively reports whether a compound expression occurs on the left-hand
// side of some asserted axiom.
func (idx *Index) OccursNegatively(id ID) bool {
	return idx.negCount[id] > 0
}

// IsSubRole reports whether sub ⊑* sup holds in the told role hierarchy.
func (idx *Index) IsSubRole(sub, sup RoleID) bool {
	if sub == sup {
		return true
	}
	if int(sub) >= len(idx.superRoles) {
		return false
	}
	return idx.superRoles[sub].Contains(sup)
}

// SuperRoles calls fn for every role r with role ⊑* r, including role itself.
func (idx *Index) SuperRoles(role RoleID, fn func(RoleID)) {
	if int(role) >= len(idx.superRoles) {
		fn(role)
		return
	}
	it := idx.superRoles[role].Iterator()
	for it.HasNext() {
		fn(it.Next())
	}
}

// NeedsForwardLinks reports whether links over role can take part in a role
// chain as the right-hand component.
func (idx *Index) NeedsForwardLinks(role RoleID) bool {
	return idx.forwardRoles.Contains(role)
}

// HasChains reports whether any role chain or transitivity axiom is asserted.
func (idx *Index) HasChains() bool {
	return len(idx.chainCount) > 0
}

// ComposeChains calls fn with the super role of every chain L ∘ R ⊑ S such that
// left ⊑* L and right ⊑* R. A super role may be reported more than once.
func (idx *Index) ComposeChains(left, right RoleID, fn func(super RoleID)) {
	if len(idx.chainsByLeft) == 0 {
		return
	}
	idx.SuperRoles(left, func(l RoleID) {
		for _, c := range idx.chainsByLeft[l] {
			if idx.IsSubRole(right, c.Right) {
				fn(c.Super)
			}
		}
	})
}
