package ontology

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownExpression is returned when an axiom references an expression ID
	// that was not interned by the index.
	ErrUnknownExpression = errors.New("unknown class expression")

	// ErrUnknownRole is returned when an axiom references a role ID that was not
	// interned by the index.
	ErrUnknownRole = errors.New("unknown object property")

	// ErrMalformedAxiom is returned when an axiom has the wrong arity for its kind.
	ErrMalformedAxiom = errors.New("malformed axiom")

	// ErrUnsupportedConstruct is returned for constructs outside the EL++ fragment.
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrNotAsserted is returned when retracting an axiom that is not asserted.
	ErrNotAsserted = errors.New("axiom not asserted")
)

// IndexFault describes an axiom that cannot be indexed.
//
// The underlying sentinel error can be matched with errors.Is.
type IndexFault struct {
	Axiom  Axiom
	Reason string
	cause  error
}

func (e *IndexFault) Error() string {
	return fmt.Sprintf("index fault in %s axiom: %s: %v", e.Axiom.Kind, e.Reason, e.cause)
}

func (e *IndexFault) Unwrap() error { return e.cause }

func fault(ax Axiom, cause error, format string, args ...any) *IndexFault {
	return &IndexFault{Axiom: ax, Reason: fmt.Sprintf(format, args...), cause: cause}
}
