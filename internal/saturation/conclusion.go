package saturation

import (
	"fmt"

	"github.com/hupe1980/elgo/ontology"
)

// Kind tags the variant of a conclusion.
type Kind uint8

const (
	// ContextInit seeds a context with its root and owl:Thing.
	ContextInit Kind = iota
	// Subsumer states root ⊑ Expr.
	Subsumer
	// BackwardLink states Peer ⊑ ∃Role.root; stored in the target context.
	BackwardLink
	// ForwardLink states root ⊑ ∃Role.Peer; stored in the source context.
	ForwardLink
	// Propagation records that the negatively occurring existential Expr can be
	// derived by any context that links to root over a sub-role of its role.
	Propagation
	// DisjointSubsumer states that member Expr of disjointness Axiom is a subsumer.
	DisjointSubsumer

	numKinds
)

func (k Kind) String() string {
	switch k {
	case ContextInit:
		return "ContextInit"
	case Subsumer:
		return "Subsumer"
	case BackwardLink:
		return "BackwardLink"
	case ForwardLink:
		return "ForwardLink"
	case Propagation:
		return "Propagation"
	case DisjointSubsumer:
		return "DisjointSubsumer"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Conclusion is a derived fact waiting to be processed by its context.
type Conclusion struct {
	Kind  Kind
	Expr  ontology.ID
	Role  ontology.RoleID
	Peer  ontology.ID
	Axiom int32
}

func (c Conclusion) String() string {
	switch c.Kind {
	case Subsumer, Propagation:
		return fmt.Sprintf("%s(#%d)", c.Kind, c.Expr)
	case BackwardLink:
		return fmt.Sprintf("%s(#%d -r%d->)", c.Kind, c.Peer, c.Role)
	case ForwardLink:
		return fmt.Sprintf("%s(-r%d-> #%d)", c.Kind, c.Role, c.Peer)
	case DisjointSubsumer:
		return fmt.Sprintf("%s(d%d, #%d)", c.Kind, c.Axiom, c.Expr)
	default:
		return c.Kind.String()
	}
}
