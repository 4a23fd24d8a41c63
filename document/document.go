package document

import (
	"errors"
	"fmt"

	"github.com/hupe1980/elgo/ontology"
	"gopkg.in/yaml.v3"
)

// Document is a parsed ontology document.
type Document struct {
	Classes  []string `yaml:"classes,omitempty"`
	Roles    []string `yaml:"roles,omitempty"`
	Axioms   []Axiom  `yaml:"axioms,omitempty"`
	Changing []Axiom  `yaml:"changing,omitempty"`
}

// Merge appends the contents of other to d.
func (d *Document) Merge(other *Document) {
	d.Classes = append(d.Classes, other.Classes...)
	d.Roles = append(d.Roles, other.Roles...)
	d.Axioms = append(d.Axioms, other.Axioms...)
	d.Changing = append(d.Changing, other.Changing...)
}

// Expr is a class expression. Exactly one of Name, And or Some is set.
type Expr struct {
	Name string
	And  []Expr
	Some *Restriction
}

// Restriction is an existential restriction ∃Role.Filler.
type Restriction struct {
	Role   string `yaml:"role"`
	Filler Expr   `yaml:"filler"`
}

// Class returns the expression naming a class.
func Class(name string) Expr { return Expr{Name: name} }

// And returns the conjunction of operands.
func And(operands ...Expr) Expr { return Expr{And: operands} }

// Some returns the existential restriction ∃role.filler.
func Some(role string, filler Expr) Expr {
	return Expr{Some: &Restriction{Role: role, Filler: filler}}
}

// unsupportedExprs are OWL class constructors outside EL++.
var unsupportedExprs = map[string]bool{
	"or": true, "not": true, "only": true, "all": true, "oneOf": true,
	"min": true, "max": true, "exactly": true, "hasValue": true, "hasSelf": true,
}

func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nodeError(node, ontology.ErrMalformedAxiom, "empty class name")
		}
		e.Name = node.Value
		return nil
	case yaml.MappingNode:
	default:
		return nodeError(node, ontology.ErrMalformedAxiom, "class expression must be a name or a mapping")
	}

	key, value, err := singleKey(node)
	if err != nil {
		return err
	}
	switch key {
	case "and":
		if err := value.Decode(&e.And); err != nil {
			return err
		}
		if len(e.And) == 0 {
			return nodeError(value, ontology.ErrMalformedAxiom, "empty conjunction")
		}
	case "some":
		e.Some = new(Restriction)
		if err := value.Decode(e.Some); err != nil {
			return err
		}
		if e.Some.Role == "" {
			return nodeError(value, ontology.ErrMalformedAxiom, "restriction without role")
		}
	default:
		if unsupportedExprs[key] {
			return nodeError(node, ontology.ErrUnsupportedConstruct, "class constructor %q", key)
		}
		return nodeError(node, ontology.ErrMalformedAxiom, "unknown class constructor %q", key)
	}
	return nil
}

func (e Expr) MarshalYAML() (interface{}, error) {
	switch {
	case e.Some != nil:
		return map[string]*Restriction{"some": e.Some}, nil
	case len(e.And) > 0:
		return map[string][]Expr{"and": e.And}, nil
	default:
		return e.Name, nil
	}
}

// Axiom is one axiom of a document. Exactly one field is set.
type Axiom struct {
	SubClassOf        *SubClassOf
	EquivalentClasses []Expr
	DisjointClasses   []Expr
	SubPropertyOf     *SubPropertyOf
	Transitive        string
	Domain            *Domain

	// Line is the source line of the axiom, if it was decoded from YAML.
	Line int
}

// SubClassOf is the axiom Sub ⊑ Super.
type SubClassOf struct {
	Sub   Expr `yaml:"sub"`
	Super Expr `yaml:"super"`
}

// SubPropertyOf is a role inclusion. Either Sub or Chain is set.
type SubPropertyOf struct {
	Sub   string   `yaml:"sub,omitempty"`
	Chain []string `yaml:"chain,omitempty"`
	Super string   `yaml:"super"`
}

// Domain is the axiom ∃Role.⊤ ⊑ Class.
type Domain struct {
	Role  string `yaml:"role"`
	Class Expr   `yaml:"class"`
}

// unsupportedAxioms are OWL axiom kinds outside EL++.
var unsupportedAxioms = map[string]bool{
	"range": true, "inverse": true, "inverseOf": true, "functional": true,
	"inverseFunctional": true, "symmetric": true, "asymmetric": true,
	"reflexive": true, "irreflexive": true, "disjointUnion": true,
	"disjointProperties": true, "individual": true, "classAssertion": true,
	"propertyAssertion": true, "sameIndividual": true, "dataProperty": true,
}

func (a *Axiom) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, ontology.ErrMalformedAxiom, "axiom must be a mapping")
	}
	key, value, err := singleKey(node)
	if err != nil {
		return err
	}
	a.Line = node.Line

	switch key {
	case "subClassOf":
		a.SubClassOf = new(SubClassOf)
		return value.Decode(a.SubClassOf)
	case "equivalentClasses":
		return decodeList(value, &a.EquivalentClasses)
	case "disjointClasses":
		return decodeList(value, &a.DisjointClasses)
	case "subPropertyOf":
		a.SubPropertyOf = new(SubPropertyOf)
		if err := value.Decode(a.SubPropertyOf); err != nil {
			return err
		}
		if (a.SubPropertyOf.Sub == "") == (len(a.SubPropertyOf.Chain) == 0) || a.SubPropertyOf.Super == "" {
			return nodeError(value, ontology.ErrMalformedAxiom, "subPropertyOf needs super and exactly one of sub or chain")
		}
		return nil
	case "transitive":
		return value.Decode(&a.Transitive)
	case "domain":
		a.Domain = new(Domain)
		return value.Decode(a.Domain)
	}
	if unsupportedAxioms[key] {
		return nodeError(node, ontology.ErrUnsupportedConstruct, "axiom %q", key)
	}
	return nodeError(node, ontology.ErrMalformedAxiom, "unknown axiom %q", key)
}

func (a Axiom) MarshalYAML() (interface{}, error) {
	switch {
	case a.SubClassOf != nil:
		return map[string]*SubClassOf{"subClassOf": a.SubClassOf}, nil
	case a.EquivalentClasses != nil:
		return map[string][]Expr{"equivalentClasses": a.EquivalentClasses}, nil
	case a.DisjointClasses != nil:
		return map[string][]Expr{"disjointClasses": a.DisjointClasses}, nil
	case a.SubPropertyOf != nil:
		return map[string]*SubPropertyOf{"subPropertyOf": a.SubPropertyOf}, nil
	case a.Transitive != "":
		return map[string]string{"transitive": a.Transitive}, nil
	case a.Domain != nil:
		return map[string]*Domain{"domain": a.Domain}, nil
	}
	return nil, fmt.Errorf("marshal axiom: %w", ontology.ErrMalformedAxiom)
}

func decodeList(node *yaml.Node, out *[]Expr) error {
	if err := node.Decode(out); err != nil {
		return err
	}
	if len(*out) < 2 {
		return nodeError(node, ontology.ErrMalformedAxiom, "want at least 2 classes, got %d", len(*out))
	}
	return nil
}

func singleKey(node *yaml.Node) (string, *yaml.Node, error) {
	if len(node.Content) != 2 {
		return "", nil, nodeError(node, ontology.ErrMalformedAxiom, "want exactly one key, got %d", len(node.Content)/2)
	}
	return node.Content[0].Value, node.Content[1], nil
}

// SyntaxError describes an invalid construct in a document.
//
// The underlying ontology sentinel error can be matched with errors.Is.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Reason string
	cause  error
}

func (e *SyntaxError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %v", loc, e.Reason, e.cause)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

func nodeError(node *yaml.Node, cause error, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Line:   node.Line,
		Column: node.Column,
		Reason: fmt.Sprintf(format, args...),
		cause:  cause,
	}
}

// withFile sets the file name on a *SyntaxError in err.
func withFile(err error, file string) error {
	var se *SyntaxError
	if errors.As(err, &se) && se.File == "" {
		se.File = file
	}
	return err
}
